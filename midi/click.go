package midi

import (
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"chordloop/config"
	"chordloop/debug"
)

// Sender writes one message to an output port
type Sender func(gomidi.Message) error

// DefaultGate is how long a click note is held
const DefaultGate = 30 * time.Millisecond

// Click plays metronome clicks as short notes on one channel
type Click struct {
	mu   sync.Mutex
	send Sender

	channel  uint8
	note     uint8
	accent   uint8
	velocity uint8
	gate     time.Duration
}

func NewClick(send Sender, cfg config.ClickConfig) *Click {
	cfg.Normalize()
	return &Click{
		send:     send,
		channel:  uint8(cfg.Channel),
		note:     uint8(cfg.Note),
		accent:   uint8(cfg.AccentNote),
		velocity: uint8(cfg.Velocity),
		gate:     DefaultGate,
	}
}

// SetGate changes the note length
func (c *Click) SetGate(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = d
}

// Click sends the note-on now and the note-off after the gate. It never
// waits on the port beyond the note-on write.
func (c *Click) Click(accent bool) {
	c.mu.Lock()
	on := Event{Type: NoteOn, Channel: c.channel, Note: c.note, Velocity: c.velocity}
	if accent {
		on.Note = c.accent
		on.Velocity = 127
	}
	gate := c.gate
	err := c.send(on.Message())
	c.mu.Unlock()

	if err != nil {
		debug.LogEvery(time.Second, "midi", "click note-on: %v", err)
		return
	}

	off := Event{Type: NoteOff, Channel: on.Channel, Note: on.Note}
	time.AfterFunc(gate, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.send(off.Message()); err != nil {
			debug.LogEvery(time.Second, "midi", "click note-off: %v", err)
		}
	})
}
