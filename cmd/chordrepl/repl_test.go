package main

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"chordloop/clock"
	"chordloop/config"
	"chordloop/rhythm"
	"chordloop/sequencer"
	"chordloop/source"
)

func newEnv(t *testing.T) (*env, *clock.Fake) {
	t.Helper()
	cfg := config.DefaultConfig()
	clk := clock.NewFakeClock()
	src := source.NewLocal(rand.New(rand.NewSource(3)))
	sched := sequencer.New(sequencer.Options{
		Source:   src,
		Clock:    clk,
		Playback: cfg.Playback,
		Params:   cfg.Source.Params(0, 0),
	})
	t.Cleanup(sched.Close)
	return &env{ctx: context.Background(), sched: sched, src: src, cfg: cfg}, clk
}

func TestEvalErrors(t *testing.T) {
	e, _ := newEnv(t)
	cases := map[string]string{
		"bogus":           "unknown command: bogus",
		"start now":       "start: wrong number of arguments: want 0, got 1",
		"set bpm":         "set: wrong number of arguments: need at least 2, got 1",
		"set bpm fast":    `set error: bpm: expected a number, got "fast"`,
		"set volume 3":    "set error: unknown property: volume",
		"source mode odd": "source error: mode must be raw or smooth",
		"resume":          "resume error: sequencer: not paused for practice",
	}
	for input, want := range cases {
		_, err := e.eval(input)
		if err == nil || err.Error() != want {
			t.Errorf("%q: want %q, got %v", input, want, err)
		}
	}
}

func TestSetCommands(t *testing.T) {
	e, _ := newEnv(t)
	for _, line := range []string{
		"set bpm 90",
		"set beats 3",
		"set loop 12",
		"set practice on",
		"set rhythm 1 0 2",
	} {
		if _, err := e.eval(line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}

	pb := e.sched.Playback()
	if pb.BPM != 90 || pb.BeatsPerBar != 3 || pb.LoopLength != 12 || !pb.Practice {
		t.Errorf("unexpected playback: %+v", pb)
	}
	if want, got := "1 0 2", pb.Rhythm.Script; want != got {
		t.Errorf("script: want %q, got %q", want, got)
	}
	if want, got := config.RhythmScript, pb.Rhythm.Mode; want != got {
		t.Errorf("mode: want %q, got %q", want, got)
	}

	if _, err := e.eval("set rhythm 0 0"); err == nil {
		t.Error("all-hold rhythm accepted")
	}
}

func TestSourceCommand(t *testing.T) {
	e, _ := newEnv(t)
	if _, err := e.eval("source key D"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.eval("source seed 0x2a"); err != nil {
		t.Fatal(err)
	}
	if want, got := "D", e.cfg.Source.Key; want != got {
		t.Errorf("key: want %s, got %s", want, got)
	}
	if e.cfg.Source.Seed == nil || *e.cfg.Source.Seed != 42 {
		t.Errorf("seed: got %v", e.cfg.Source.Seed)
	}
	if _, err := e.eval("source key H"); err == nil {
		t.Error("bad key accepted")
	}
	if _, err := e.eval("source scale nope"); err == nil {
		t.Error("bad scale accepted")
	}
}

func TestStartStatusStop(t *testing.T) {
	e, clk := newEnv(t)
	if _, err := e.eval("set countin off"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.eval("start"); err != nil {
		t.Fatal(err)
	}
	clk.Fire()

	status, err := e.eval("status")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"playing", "120 bpm", "1st chord", "bar 1 beat 1", "1 chord over 1 bar", "register "} {
		if !strings.Contains(status, want) {
			t.Errorf("status %q missing %q", status, want)
		}
	}

	chords, _ := e.eval("chords")
	if !strings.HasPrefix(chords, "now: ") || !strings.Contains(chords, "[") {
		t.Errorf("unexpected chords output:\n%s", chords)
	}

	e.eval("stop")
	if status, _ := e.eval("status"); !strings.HasPrefix(status, "stopped") {
		t.Errorf("want stopped, got %q", status)
	}
}

func TestSourceWhilePlaying(t *testing.T) {
	e, clk := newEnv(t)
	e.eval("set countin off")
	if _, err := e.eval("start"); err != nil {
		t.Fatal(err)
	}
	clk.Fire()

	src := e.src.(*source.Local)
	before, _ := src.RegisterState()
	out, err := e.eval("source scale dorian")
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("want the change applied now, got %q", out)
	}
	if after, _ := src.RegisterState(); before != after {
		t.Errorf("register reset: %04x -> %04x", before, after)
	}

	if out, _ := e.eval("source seed 7"); out != "applies from the next start" {
		t.Errorf("seed: got %q", out)
	}
}

func TestHelpListsCommands(t *testing.T) {
	e, _ := newEnv(t)
	out, err := e.eval("help")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range commands {
		if !strings.Contains(out, c.name) {
			t.Errorf("help missing %s", c.name)
		}
	}
}

func TestDescribeRhythm(t *testing.T) {
	cases := []struct {
		pattern     rhythm.Pattern
		beatsPerBar int
		want        string
	}{
		{rhythm.Pattern{1, 0, 2}, 4, "1 0 2 (8, 2, 2 beats)"},
		{rhythm.Pattern{2}, 3, "2 (1.5, 1.5 beats)"},
		{rhythm.Pattern{0, 1}, 4, "0 1"},
	}
	for _, c := range cases {
		if got := describeRhythm(c.pattern, c.beatsPerBar); got != c.want {
			t.Errorf("%v/%d: want %q, got %q", c.pattern, c.beatsPerBar, c.want, got)
		}
	}
}
