package sequencer

import (
	"errors"

	"chordloop/chord"
	"chordloop/config"
	"chordloop/rhythm"
)

var (
	// ErrInvariant stops a session whose internal state can no longer be
	// played from.
	ErrInvariant = errors.New("sequencer: state invariant violated")

	ErrNotPaused = errors.New("sequencer: not paused for practice")

	// ErrStopped is returned by Start when Stop or another Start superseded
	// it while the initial sequence was being fetched.
	ErrStopped = errors.New("sequencer: session stopped")

	ErrClosed = errors.New("sequencer: closed")
)

// State is the transport state
type State int

const (
	Stopped State = iota
	CountingIn
	Playing
	PracticePaused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case CountingIn:
		return "counting in"
	case Playing:
		return "playing"
	case PracticePaused:
		return "practice pause"
	}
	return "unknown"
}

// Position is where playback is within the pattern
type Position struct {
	Bar   int // index into the pattern
	Beat  int // beat of the next tick, [0, beatsPerBar)
	Chord int // chord within the bar

	// PendingAdvance is set when a tick crosses a chord boundary. The next
	// tick consumes it before it clicks.
	PendingAdvance bool
}

// Cue is the effect of one tick
type Cue struct {
	Beat   int
	Accent bool
}

// Snapshot is what renderers see after every tick and config change
type Snapshot struct {
	State    State
	Position Position

	Beat        int // beat that just clicked
	BeatsPerBar int
	Bar         int

	Index   int           // absolute index of the current chord
	Chords  []chord.Chord // current chord first, then the lookahead
	History []chord.Chord

	Loop     []chord.Chord
	LoopSlot int

	CountingIn int // count-in beat just clicked (1-based), 0 otherwise
	Cycle      int // chords advanced since the last start or resume

	Playback config.Playback
	Pattern  rhythm.Pattern

	Err error
}

// Current returns the chord under the cursor.
func (s Snapshot) Current() (chord.Chord, bool) {
	if len(s.Chords) == 0 {
		return chord.Chord{}, false
	}
	return s.Chords[0], true
}

// CueEmitter plays clicks. Click must not block.
type CueEmitter interface {
	Click(accent bool)
}

// Renderer receives snapshots. Render must not block.
type Renderer interface {
	Render(Snapshot)
}

// RenderFunc adapts a function to Renderer
type RenderFunc func(Snapshot)

func (f RenderFunc) Render(s Snapshot) { f(s) }

// ClickFunc adapts a function to CueEmitter
type ClickFunc func(accent bool)

func (f ClickFunc) Click(accent bool) { f(accent) }
