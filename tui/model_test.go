package tui

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"chordloop/clock"
	"chordloop/config"
	"chordloop/midi"
	"chordloop/sequencer"
	"chordloop/source"
	"chordloop/theme"
)

func newTestModel(t *testing.T) (Model, *clock.Fake) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := config.DefaultConfig()
	clk := clock.NewFakeClock()
	updates := NewUpdates()
	sched := sequencer.New(sequencer.Options{
		Source:   source.NewLocal(rand.New(rand.NewSource(7))),
		Renderer: updates,
		Clock:    clk,
		Playback: cfg.Playback,
		Params:   cfg.Source.Params(0, 0),
	})
	t.Cleanup(sched.Close)
	return NewModel(context.Background(), sched, updates, cfg, theme.New(nil)), clk
}

func press(m Model, key string) Model {
	next, _ := m.handleKey(key)
	return next.(Model)
}

func TestUpdatesKeepsLatest(t *testing.T) {
	u := NewUpdates()
	u.Render(sequencer.Snapshot{Index: 1})
	u.Render(sequencer.Snapshot{Index: 2})
	u.Render(sequencer.Snapshot{Index: 3})

	msg := ListenForUpdates(u)()
	if want, got := 3, msg.(SnapshotMsg).Index; want != got {
		t.Errorf("want index %d, got %d", want, got)
	}
}

func TestNextSwing(t *testing.T) {
	cases := map[int]int{50: 58, 58: 66, 66: 75, 75: 50, 100: 50, 60: 66}
	for in, want := range cases {
		if got := nextSwing(in); got != want {
			t.Errorf("nextSwing(%d): want %d, got %d", in, want, got)
		}
	}
}

func TestKeysConfigure(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, "+")
	m = press(m, "]")
	m = press(m, "3")
	m = press(m, "p")
	m = press(m, "c")
	m = press(m, "L")

	pb := m.Sched.Playback()
	if want, got := 125, pb.BPM; want != got {
		t.Errorf("bpm: want %d, got %d", want, got)
	}
	if want, got := 9, pb.LoopLength; want != got {
		t.Errorf("loop length: want %d, got %d", want, got)
	}
	if want, got := 3, pb.Rhythm.ChordsPerBar; want != got {
		t.Errorf("chords per bar: want %d, got %d", want, got)
	}
	if !pb.Practice || pb.CountIn {
		t.Errorf("practice/count-in: got %v/%v", pb.Practice, pb.CountIn)
	}
	if want, got := 5, pb.BeatsPerBar; want != got {
		t.Errorf("beats per bar: want %d, got %d", want, got)
	}

	m = press(m, "b")
	if want, got := 2, m.Sched.Playback().Rhythm.BarsPerChord; want != got {
		t.Errorf("bars per chord: want %d, got %d", want, got)
	}
}

func TestTempoClamped(t *testing.T) {
	m, _ := newTestModel(t)
	for i := 0; i < 30; i++ {
		m = press(m, "+")
	}
	if want, got := config.MaxBPM, m.Sched.Playback().BPM; want != got {
		t.Errorf("want %d, got %d", want, got)
	}
}

func TestToggleStartsAndStops(t *testing.T) {
	m, clk := newTestModel(t)

	next, cmd := m.handleKey(" ")
	m = next.(Model)
	if cmd == nil {
		t.Fatal("space while stopped should start")
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if m.started.IsZero() {
		t.Error("start time not set")
	}
	if want, got := sequencer.CountingIn, m.Sched.Snapshot().State; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if clk.Pending() != 1 {
		t.Errorf("want one armed tick, got %d", clk.Pending())
	}

	m = press(m, " ")
	if want, got := sequencer.Stopped, m.Sched.Snapshot().State; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestResumeWhenNotPaused(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "r")
	if !strings.Contains(m.status, "not paused") {
		t.Errorf("status: got %q", m.status)
	}
}

func TestPadCommand(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(CommandMsg(midi.Command{Action: midi.ActionLoopLength, Value: 16}))
	m = next.(Model)
	if want, got := 16, m.Sched.Playback().LoopLength; want != got {
		t.Errorf("want %d, got %d", want, got)
	}
}

func TestModeKey(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.handleKey("m")
	m = next.(Model)
	if want, got := "smooth", m.Config.Source.Mode; want != got {
		t.Errorf("want %s, got %s", want, got)
	}
	if cmd == nil {
		t.Fatal("no configure command")
	}
	msg, ok := cmd().(configuredMsg)
	if !ok {
		t.Fatal("want configuredMsg")
	}
	if msg.err != nil {
		t.Errorf("configure: %v", msg.err)
	}
}

func TestQuitSaves(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "+")

	next, cmd := m.handleKey("q")
	if cmd == nil {
		t.Fatal("no quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("want tea.QuitMsg")
	}
	if next.(Model).View() != "" {
		t.Error("view after quit should be empty")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 125, cfg.Playback.BPM; want != got {
		t.Errorf("saved bpm: want %d, got %d", want, got)
	}
}

func TestViewShowsState(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()
	for _, want := range []string{"STOPPED", "120bpm", "1st chord", "loop of 8"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestShortUnits(t *testing.T) {
	if want, got := "yrs", shortUnits.Year.Plural; want != got {
		t.Errorf("year plural: want %q, got %q", want, got)
	}
	if want, got := "m", shortUnits.Minute.Singular; want != got {
		t.Errorf("minute: want %q, got %q", want, got)
	}
}
