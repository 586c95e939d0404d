package midi

import (
	"context"
	"sync"
	"testing"
	"time"

	"chordloop/chord"
	"chordloop/config"
	"chordloop/sequencer"
	"chordloop/theme"
)

type fakeGrid struct {
	pads chan PadEvent

	mu      sync.Mutex
	batches [][]LEDUpdate
}

func newFakeGrid() *fakeGrid {
	return &fakeGrid{pads: make(chan PadEvent, 8)}
}

func (g *fakeGrid) Pads() <-chan PadEvent { return g.pads }

func (g *fakeGrid) SetLEDBatch(updates []LEDUpdate) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.batches = append(g.batches, updates)
	return nil
}

func (g *fakeGrid) Close() error { return nil }

func (g *fakeGrid) batchCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.batches)
}

func loopSnapshot(state sequencer.State) sequencer.Snapshot {
	pb := config.DefaultPlayback()
	return sequencer.Snapshot{
		State:       state,
		BeatsPerBar: 4,
		Beat:        1,
		Loop: []chord.Chord{
			{Symbol: "Cmaj7", Category: "major"},
			{Symbol: "Dm7", Category: "minor"},
			{},
		},
		LoopSlot: 1,
		Playback: pb,
	}
}

func TestCommandFor(t *testing.T) {
	cases := []struct {
		pad  PadEvent
		want Command
		ok   bool
	}{
		{PadEvent{Row: 8, Col: 0}, Command{Action: ActionToggle}, true},
		{PadEvent{Row: 8, Col: 1}, Command{Action: ActionResume}, true},
		{PadEvent{Row: 8, Col: 3}, Command{Action: ActionTempoUp}, true},
		{PadEvent{Row: 8, Col: 7}, Command{}, false},
		{PadEvent{Row: 7, Col: 0}, Command{Action: ActionLoopLength, Value: 1}, true},
		{PadEvent{Row: 7, Col: 7}, Command{Action: ActionLoopLength, Value: 8}, true},
		{PadEvent{Row: 6, Col: 0}, Command{Action: ActionLoopLength, Value: 9}, true},
		{PadEvent{Row: 0, Col: 7}, Command{Action: ActionLoopLength, Value: 64}, true},
		{PadEvent{Row: 3, Col: 8}, Command{}, false},
	}
	for _, c := range cases {
		got, ok := CommandFor(c.pad)
		if ok != c.ok || got != c.want {
			t.Errorf("%+v: want %+v %v, got %+v %v", c.pad, c.want, c.ok, got, ok)
		}
	}
}

func TestLayoutSlots(t *testing.T) {
	th := theme.New(nil)
	leds := Layout(loopSnapshot(sequencer.Playing), th)

	first := leds[[2]int{7, 0}]
	if want, got := [3]uint8(th.CategoryRGB("major")), first.Color; want != got {
		t.Errorf("slot 0: want %v, got %v", want, got)
	}
	if want, got := white, leds[[2]int{7, 1}].Color; want != got {
		t.Errorf("current slot: want %v, got %v", want, got)
	}
	if want, got := [3]uint8(th.RGB(theme.RoleSurface)), leds[[2]int{7, 2}].Color; want != got {
		t.Errorf("empty slot: want %v, got %v", want, got)
	}
	if _, ok := leds[[2]int{7, 3}]; ok {
		t.Error("pad past the loop should be dark")
	}
}

func TestLayoutBeatColumn(t *testing.T) {
	th := theme.New(nil)
	leds := Layout(loopSnapshot(sequencer.Playing), th)

	for b := 0; b < 4; b++ {
		if _, ok := leds[[2]int{7 - b, 8}]; !ok {
			t.Errorf("beat %d not lit", b)
		}
	}
	if _, ok := leds[[2]int{3, 8}]; ok {
		t.Error("beat column lit past beats per bar")
	}
	if want, got := [3]uint8(th.RGB(theme.RoleAccent)), leds[[2]int{6, 8}].Color; want != got {
		t.Errorf("clicked beat: want %v, got %v", want, got)
	}

	stopped := Layout(loopSnapshot(sequencer.Stopped), th)
	if _, ok := stopped[[2]int{7, 8}]; ok {
		t.Error("beat column lit while stopped")
	}
	if stopped[[2]int{7, 1}].Color == white {
		t.Error("current slot highlighted while stopped")
	}
}

func TestLayoutPaused(t *testing.T) {
	th := theme.New(nil)
	leds := Layout(loopSnapshot(sequencer.PracticePaused), th)

	resume, ok := leds[[2]int{8, colResume}]
	if !ok || resume.Channel != ChannelFlash {
		t.Errorf("resume button: want flashing, got %+v (lit %v)", resume, ok)
	}
	if want, got := ChannelPulse, leds[[2]int{7, 1}].Channel; want != got {
		t.Errorf("current slot channel: want %d, got %d", want, got)
	}
}

func TestSurfaceFlushDiffs(t *testing.T) {
	grid := newFakeGrid()
	s := NewSurface(grid, nil)

	snap := loopSnapshot(sequencer.Playing)
	s.flush(snap)
	if want, got := 1, grid.batchCount(); want != got {
		t.Fatalf("batches: want %d, got %d", want, got)
	}

	s.flush(snap)
	if want, got := 1, grid.batchCount(); want != got {
		t.Errorf("unchanged frame sent: want %d batches, got %d", want, got)
	}

	snap.Loop = snap.Loop[:2]
	s.flush(snap)
	grid.mu.Lock()
	last := grid.batches[len(grid.batches)-1]
	grid.mu.Unlock()
	if want, got := 1, len(last); want != got {
		t.Fatalf("want %d update, got %d: %+v", want, got, last)
	}
	if last[0].Row != 7 || last[0].Col != 2 || last[0].Color != ([3]uint8{}) {
		t.Errorf("want slot 2 cleared, got %+v", last[0])
	}
}

func TestSurfaceRunHandlesPads(t *testing.T) {
	grid := newFakeGrid()
	s := NewSurface(grid, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Command, 1)
	go s.Run(ctx, func(c Command) { got <- c })

	grid.pads <- PadEvent{Row: 8, Col: colPractice}
	select {
	case c := <-got:
		if want := (Command{Action: ActionPractice}); c != want {
			t.Errorf("want %+v, got %+v", want, c)
		}
	case <-time.After(time.Second):
		t.Fatal("no command")
	}

	s.Render(loopSnapshot(sequencer.Playing))
	deadline := time.Now().Add(time.Second)
	for grid.batchCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no LED frame after Render")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
