package sequencer

import (
	"reflect"
	"testing"

	"chordloop/rhythm"
)

// run plays n beats from the top and returns the tick numbers (1-based) at
// which a pending advance would be applied.
func run(pat rhythm.Pattern, beatsPerBar, n int) []int {
	var advances []int
	var p Position
	for tick := 1; tick <= n; tick++ {
		if p.PendingAdvance {
			p.PendingAdvance = false
			advances = append(advances, tick)
		}
		p, _ = Advance(p, pat, beatsPerBar)
	}
	return advances
}

func TestAdvanceBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		pat         rhythm.Pattern
		beatsPerBar int
		ticks       int
		want        []int
	}{
		{"one per bar", rhythm.Pattern{1}, 4, 12, []int{5, 9}},
		{"two per bar", rhythm.Pattern{2}, 4, 8, []int{3, 5, 7}},
		{"three in four", rhythm.Pattern{3}, 4, 8, []int{3, 4, 5, 7, 8}},
		{"hold", rhythm.Pattern{1, 0}, 4, 17, []int{9, 17}},
		{"three bar hold", rhythm.Pattern{1, 0, 0}, 3, 19, []int{10, 19}},
		{"mixed", rhythm.Pattern{1, 0, 1, 2}, 4, 17, []int{9, 13, 15, 17}},
		{"waltz two per bar", rhythm.Pattern{2}, 3, 6, []int{3, 4, 6}},
	}
	for _, tt := range tests {
		if got := run(tt.pat, tt.beatsPerBar, tt.ticks); !reflect.DeepEqual(tt.want, got) {
			t.Errorf("%s: want %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestAdvanceCue(t *testing.T) {
	var p Position
	var accents []bool
	for i := 0; i < 8; i++ {
		var cue Cue
		p, cue = Advance(p, rhythm.Pattern{1}, 4)
		accents = append(accents, cue.Accent)
	}
	want := []bool{true, false, false, false, true, false, false, false}
	if !reflect.DeepEqual(want, accents) {
		t.Errorf("want %v, got %v", want, accents)
	}
}

func TestAdvanceWrapsBar(t *testing.T) {
	p := Position{Bar: 1, Beat: 3, Chord: 1}
	next, _ := Advance(p, rhythm.Pattern{1, 2}, 4)
	want := Position{Bar: 0, Beat: 0, Chord: 0, PendingAdvance: true}
	if !reflect.DeepEqual(want, next) {
		t.Errorf("want %+v, got %+v", want, next)
	}
}

func TestAdvanceAfterMeterShrinks(t *testing.T) {
	// beat 5 of what used to be a 7/4 bar, now 4/4
	next, cue := Advance(Position{Beat: 5}, rhythm.Pattern{1}, 4)
	if cue.Accent {
		t.Error("mid-bar beat should not accent")
	}
	if want, got := 0, next.Beat; want != got {
		t.Errorf("beat: want %v, got %v", want, got)
	}
	if !next.PendingAdvance {
		t.Error("wrap should start a new chord")
	}
}

func TestAdvanceBarOutOfRange(t *testing.T) {
	// the pattern shrank under a position
	next, _ := Advance(Position{Bar: 5, Beat: 1}, rhythm.Pattern{1, 0}, 4)
	if want, got := 1, next.Bar; want != got {
		t.Errorf("bar: want %v, got %v", want, got)
	}
}

func TestCountInAndGate(t *testing.T) {
	var c countIn
	var accents []bool
	done := false
	for i := 0; !done; i++ {
		var cue Cue
		cue, done = c.tick(3)
		accents = append(accents, cue.Accent)
	}
	if want := []bool{true, false, false}; !reflect.DeepEqual(want, accents) {
		t.Errorf("count-in: want %v, got %v", want, accents)
	}

	var g gate
	for i := 0; i < 3; i++ {
		g.advanced()
	}
	if g.tripped(false, 3) {
		t.Error("gate tripped without practice mode")
	}
	if !g.tripped(true, 3) {
		t.Error("gate should trip after a full loop")
	}
	g.reset()
	if g.tripped(true, 3) {
		t.Error("gate tripped after reset")
	}
}
