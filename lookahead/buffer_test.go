package lookahead

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"chordloop/chord"
)

// countingSource hands out chords named c1, c2, ... and records every call
type countingSource struct {
	n     int
	calls int
	fail  error
}

func (s *countingSource) Next(ctx context.Context) (chord.Chord, error) {
	s.calls++
	if s.fail != nil {
		return chord.Chord{}, s.fail
	}
	s.n++
	return chord.Chord{Symbol: fmt.Sprintf("c%d", s.n)}, nil
}

func initial(n int) []chord.Chord {
	var cs []chord.Chord
	for i := 1; i <= n; i++ {
		cs = append(cs, chord.Chord{Symbol: fmt.Sprintf("i%d", i)})
	}
	return cs
}

func TestAdvanceKeepsLookahead(t *testing.T) {
	b := New()
	b.Reset(initial(4), 8)
	src := &countingSource{}

	for i := 0; i < 50; i++ {
		if err := b.Advance(context.Background(), src); err != nil {
			t.Fatal(err)
		}
		if b.Ahead() < MinAhead {
			t.Fatalf("advance %d: lookahead %d below floor", i+1, b.Ahead())
		}
		if want, got := i+1, b.Position(); want != got {
			t.Fatalf("position: want %v, got %v", want, got)
		}
	}
	// one fetch per advance once the initial chords are used up
	if want, got := 50, src.calls; want != got {
		t.Errorf("fetches: want %v, got %v", want, got)
	}
}

func TestFillTopsUpShortInitial(t *testing.T) {
	b := New()
	b.Reset(initial(1), 8)
	src := &countingSource{}

	if err := b.Fill(context.Background(), src); err != nil {
		t.Fatal(err)
	}
	if want, got := MinAhead, b.Ahead(); want != got {
		t.Errorf("ahead: want %v, got %v", want, got)
	}
	if want, got := 3, src.calls; want != got {
		t.Errorf("fetches: want %v, got %v", want, got)
	}
}

func TestLoopMirrorSlots(t *testing.T) {
	b := New()
	b.Reset(initial(4), 4)
	src := &countingSource{}

	// chords 5 and 6 overwrite slots 0 and 1
	for i := 0; i < 2; i++ {
		if err := b.Advance(context.Background(), src); err != nil {
			t.Fatal(err)
		}
	}
	loop := b.Loop()
	want := []string{"c1", "c2", "i3", "i4"}
	for i, sym := range want {
		if loop[i].Symbol != sym {
			t.Errorf("slot %d: want %s, got %s", i, sym, loop[i].Symbol)
		}
	}
	if want, got := 2, b.LoopSlot(); want != got {
		t.Errorf("loop slot: want %v, got %v", want, got)
	}
	cur, _ := b.Current()
	if want, got := "i3", cur.Symbol; want != got {
		t.Errorf("current: want %v, got %v", want, got)
	}
}

func TestResizeRebuildsMirror(t *testing.T) {
	b := New()
	b.Reset(initial(6), 8)
	b.Resize(3)

	loop := b.Loop()
	want := []string{"i4", "i5", "i6"}
	if len(loop) != len(want) {
		t.Fatalf("mirror size: want %d, got %d", len(want), len(loop))
	}
	for i, sym := range want {
		if loop[i].Symbol != sym {
			t.Errorf("slot %d: want %s, got %s", i, sym, loop[i].Symbol)
		}
	}
}

func TestAdvanceError(t *testing.T) {
	b := New()
	b.Reset(initial(4), 8)
	boom := errors.New("unreachable")
	src := &countingSource{fail: boom}

	if err := b.Advance(context.Background(), src); !errors.Is(err, boom) {
		t.Fatalf("want %v, got %v", boom, err)
	}
	if want, got := 1, src.calls; want != got {
		t.Errorf("fetches after failure: want %v, got %v", want, got)
	}
}

func TestCompactionKeepsPositions(t *testing.T) {
	b := New()
	b.Reset(initial(4), 8)
	src := &countingSource{}

	for i := 0; i < 600; i++ {
		if err := b.Advance(context.Background(), src); err != nil {
			t.Fatal(err)
		}
	}
	if want, got := 600, b.Position(); want != got {
		t.Errorf("position: want %v, got %v", want, got)
	}
	if len(b.queue) > compactAt+MinAhead+1 {
		t.Errorf("queue not compacted: %d entries", len(b.queue))
	}
	if want, got := 600%8, b.LoopSlot(); want != got {
		t.Errorf("loop slot: want %v, got %v", want, got)
	}
	if want, got := 5, len(b.History(5)); want != got {
		t.Errorf("history: want %v, got %v", want, got)
	}
	if want, got := MinAhead, len(b.Window(MinAhead)); want != got {
		t.Errorf("window: want %v, got %v", want, got)
	}
}

func TestResizeBetweenFetches(t *testing.T) {
	b := New()
	b.Reset(initial(4), 8)
	src := &countingSource{}

	// the loop shrinks while the next chord is being fetched
	shrink := fetcherFunc(func(ctx context.Context) (chord.Chord, error) {
		b.Resize(4)
		return src.Next(ctx)
	})
	if err := b.Advance(context.Background(), shrink); err != nil {
		t.Fatal(err)
	}

	loop := b.Loop()
	want := []string{"c1", "i2", "i3", "i4"}
	if len(loop) != len(want) {
		t.Fatalf("mirror size: want %d, got %d", len(want), len(loop))
	}
	for i, sym := range want {
		if loop[i].Symbol != sym {
			t.Errorf("slot %d: want %s, got %s", i, sym, loop[i].Symbol)
		}
	}
	if want, got := 1, b.LoopSlot(); want != got {
		t.Errorf("loop slot: want %v, got %v", want, got)
	}
}

type fetcherFunc func(ctx context.Context) (chord.Chord, error)

func (f fetcherFunc) Next(ctx context.Context) (chord.Chord, error) { return f(ctx) }
