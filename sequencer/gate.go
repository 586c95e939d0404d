package sequencer

// gate pauses practice sessions after one trip around the loop
type gate struct {
	count int // chords advanced since the last reset
}

func (g *gate) advanced() {
	g.count++
}

func (g *gate) tripped(practice bool, loopLength int) bool {
	return practice && g.count >= loopLength
}

func (g *gate) reset() {
	g.count = 0
}
