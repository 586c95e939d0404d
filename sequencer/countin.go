package sequencer

// countIn runs one bar of clicks before the first chord
type countIn struct {
	done int
}

// tick clicks the next count-in beat and reports whether the bar is done.
// beatsPerBar is read per tick so a meter change during the count-in
// lengthens or shortens it.
func (c *countIn) tick(beatsPerBar int) (Cue, bool) {
	cue := Cue{Beat: c.done, Accent: c.done == 0}
	c.done++
	return cue, c.done >= beatsPerBar
}

func (c *countIn) reset() {
	c.done = 0
}
