package sequencer

import "chordloop/rhythm"

// Advance plays one beat from p: it returns the cue for the beat and the
// position for the next tick. Chord boundaries crossed on the way set
// PendingAdvance; applying them is up to the caller.
//
// A bar with n > 1 chords moves to its next chord when
// floor(beat*n/beatsPerBar) increases, so at most one chord change lands on
// each beat. When the bar wraps, the bar being entered decides: a non-zero
// entry starts a new chord, a 0 holds the current one. Keying the wrap off
// the bar just finished instead would turn [1 0] into a chord change every
// bar, so it must stay on the entered bar.
func Advance(p Position, pat rhythm.Pattern, beatsPerBar int) (Position, Cue) {
	if len(pat) == 0 {
		pat = rhythm.Default()
	}
	bar := p.Bar % len(pat)
	if bar < 0 {
		bar += len(pat)
	}

	cue := Cue{Beat: p.Beat, Accent: p.Beat == 0}
	next := p
	next.Bar = bar

	if chords := pat.At(bar); chords > 1 {
		nb := p.Beat + 1
		if nb < beatsPerBar && nb*chords/beatsPerBar > p.Beat*chords/beatsPerBar {
			next.Chord++
			next.PendingAdvance = true
		}
	}

	next.Beat = p.Beat + 1
	// >= so a meter shortened mid-bar still wraps
	if next.Beat >= beatsPerBar {
		next.Beat = 0
		next.Chord = 0
		next.Bar = (bar + 1) % len(pat)
		if pat.At(next.Bar) != 0 {
			next.PendingAdvance = true
		}
	}
	return next, cue
}
