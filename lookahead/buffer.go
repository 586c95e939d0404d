package lookahead

import (
	"context"

	"chordloop/chord"
)

// MinAhead is the lookahead floor: chords materialised from the cursor on,
// the current one included.
const MinAhead = 4

const (
	compactAt   = 256 // compact once the cursor passes this many chords
	compactKeep = 32  // consumed chords kept for history after compaction
)

// Buffer is the chord queue with its cursor and the cyclic loop mirror.
// It is not safe for concurrent use; the scheduler owns it.
type Buffer struct {
	queue []chord.Chord
	pos   int // cursor into queue
	base  int // absolute index of queue[0]

	loop []chord.Chord
}

func New() *Buffer {
	return &Buffer{}
}

// Reset replaces the queue with the initial sequence and rebuilds the loop
// mirror for loopLength slots.
func (b *Buffer) Reset(initial []chord.Chord, loopLength int) {
	b.queue = append([]chord.Chord(nil), initial...)
	b.pos = 0
	b.base = 0
	b.loop = make([]chord.Chord, max(1, loopLength))
	for i, c := range b.queue {
		b.loop[i%len(b.loop)] = c
	}
}

// Fill fetches one chord at a time until the lookahead floor holds. New
// chords land in the mirror at its size when they arrive, so a Resize made
// while a fetch is out is honoured.
func (b *Buffer) Fill(ctx context.Context, f chord.Fetcher) error {
	for b.Ahead() < MinAhead {
		c, err := f.Next(ctx)
		if err != nil {
			return err
		}
		b.push(c)
	}
	return nil
}

// Advance moves the cursor to the next chord and restores the lookahead
// floor. On error the queue may be short of the floor; callers must not keep
// playing from it.
func (b *Buffer) Advance(ctx context.Context, f chord.Fetcher) error {
	b.pos++
	if err := b.Fill(ctx, f); err != nil {
		return err
	}
	b.compact()
	return nil
}

func (b *Buffer) push(c chord.Chord) {
	b.queue = append(b.queue, c)
	if len(b.loop) == 0 {
		b.loop = make([]chord.Chord, 1)
	}
	b.loop[(b.Total()-1)%len(b.loop)] = c
}

// Resize rebuilds the loop mirror from the queue when loopLength differs
// from the current mirror size.
func (b *Buffer) Resize(loopLength int) {
	loopLength = max(1, loopLength)
	if len(b.loop) == loopLength {
		return
	}
	b.loop = make([]chord.Chord, loopLength)
	start := max(0, len(b.queue)-loopLength)
	for i := start; i < len(b.queue); i++ {
		b.loop[(b.base+i)%loopLength] = b.queue[i]
	}
}

func (b *Buffer) compact() {
	if b.pos < compactAt {
		return
	}
	drop := b.pos - compactKeep
	b.queue = append([]chord.Chord(nil), b.queue[drop:]...)
	b.pos -= drop
	b.base += drop
}

// Ahead returns how many chords are materialised from the cursor on.
func (b *Buffer) Ahead() int {
	return len(b.queue) - b.pos
}

// Position returns the absolute index of the current chord.
func (b *Buffer) Position() int {
	return b.base + b.pos
}

// Total returns how many chords were materialised since the last Reset.
func (b *Buffer) Total() int {
	return b.base + len(b.queue)
}

// Current returns the chord under the cursor.
func (b *Buffer) Current() (chord.Chord, bool) {
	if b.pos < 0 || b.pos >= len(b.queue) {
		return chord.Chord{}, false
	}
	return b.queue[b.pos], true
}

// Window returns up to n chords from the cursor on.
func (b *Buffer) Window(n int) []chord.Chord {
	if b.pos >= len(b.queue) {
		return nil
	}
	end := min(len(b.queue), b.pos+n)
	return append([]chord.Chord(nil), b.queue[b.pos:end]...)
}

// History returns up to n chords played before the current one, oldest first.
func (b *Buffer) History(n int) []chord.Chord {
	start := max(0, b.pos-n)
	return append([]chord.Chord(nil), b.queue[start:b.pos]...)
}

// Loop returns a copy of the loop mirror.
func (b *Buffer) Loop() []chord.Chord {
	return append([]chord.Chord(nil), b.loop...)
}

// LoopSlot returns the mirror slot of the current chord.
func (b *Buffer) LoopSlot() int {
	if len(b.loop) == 0 {
		return 0
	}
	return b.Position() % len(b.loop)
}
