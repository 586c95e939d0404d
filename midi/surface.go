package midi

import (
	"context"
	"sync"
	"time"

	"chordloop/debug"
	"chordloop/sequencer"
	"chordloop/theme"
)

const ledFPS = 30

// Action is a transport request from a pad
type Action int

const (
	ActionToggle Action = iota // start or stop
	ActionResume
	ActionTempoDown
	ActionTempoUp
	ActionPractice
	ActionCountIn
	ActionLoopLength // Value is the new loop length
)

// Command is what a pad press asks for
type Command struct {
	Action Action
	Value  int
}

// top row button columns
const (
	colToggle = iota
	colResume
	colTempoDown
	colTempoUp
	colPractice
	colCountIn
)

var white = [3]uint8{255, 255, 255}

// Surface shows the chord loop on a grid controller: one pad per loop slot,
// the beat on the scene column and transport buttons along the top.
type Surface struct {
	grid  Grid
	theme *theme.Theme

	mu    sync.Mutex
	snap  sequencer.Snapshot
	dirty bool

	prevLEDs map[[2]int]LEDUpdate
}

func NewSurface(grid Grid, th *theme.Theme) *Surface {
	if th == nil {
		th = theme.New(nil)
	}
	return &Surface{
		grid:     grid,
		theme:    th,
		prevLEDs: make(map[[2]int]LEDUpdate),
	}
}

// Render keeps the latest snapshot for the next LED frame. It never blocks
// on the device.
func (s *Surface) Render(snap sequencer.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.dirty = true
	s.mu.Unlock()
}

// Run flushes LED frames and turns pad presses into commands until ctx is
// done or the grid closes its pad channel.
func (s *Surface) Run(ctx context.Context, handle func(Command)) {
	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()

	pads := s.grid.Pads()
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-pads:
			if !ok {
				return
			}
			if cmd, ok := CommandFor(p); ok {
				handle(cmd)
			}
		case <-ticker.C:
			s.mu.Lock()
			dirty, snap := s.dirty, s.snap
			s.dirty = false
			s.mu.Unlock()

			if dirty {
				s.flush(snap)
			}
		}
	}
}

// flush sends only the pads that changed since the last frame
func (s *Surface) flush(snap sequencer.Snapshot) {
	next := Layout(snap, s.theme)

	var updates []LEDUpdate
	for key, led := range next {
		if prev, ok := s.prevLEDs[key]; !ok || prev != led {
			updates = append(updates, led)
		}
	}
	for key := range s.prevLEDs {
		if _, ok := next[key]; !ok {
			updates = append(updates, LEDUpdate{Row: key[0], Col: key[1]})
		}
	}

	if len(updates) > 0 {
		if err := s.grid.SetLEDBatch(updates); err != nil {
			debug.LogEvery(time.Second, "led", "flush %d pads: %v", len(updates), err)
		}
	}
	s.prevLEDs = next
}

// Layout computes every lit pad for a snapshot. Pads left out are dark.
func Layout(snap sequencer.Snapshot, th *theme.Theme) map[[2]int]LEDUpdate {
	leds := make(map[[2]int]LEDUpdate)
	set := func(row, col int, c [3]uint8, channel uint8) {
		leds[[2]int{row, col}] = LEDUpdate{Row: row, Col: col, Color: c, Channel: channel}
	}
	running := snap.State != sequencer.Stopped

	// loop slots, reading left to right from the top row down
	for i, c := range snap.Loop {
		if i >= 64 {
			break
		}
		row, col := 7-i/8, i%8
		switch {
		case running && i == snap.LoopSlot:
			ch := ChannelStatic
			if snap.State == sequencer.PracticePaused {
				ch = ChannelPulse
			}
			set(row, col, white, ch)
		case c.IsZero():
			set(row, col, th.RGB(theme.RoleSurface), ChannelStatic)
		default:
			set(row, col, th.CategoryRGB(c.Category), ChannelStatic)
		}
	}

	// beat column
	if snap.State == sequencer.Playing || snap.State == sequencer.CountingIn {
		for b := 0; b < min(8, snap.BeatsPerBar); b++ {
			color := th.RGB(theme.RoleMuted)
			if b == snap.Beat {
				color = th.RGB(theme.RoleAccent)
				if b == 0 {
					color = th.RGB(theme.RoleSuccess)
				}
			}
			set(7-b, 8, color, ChannelStatic)
		}
	}

	// transport
	if running {
		set(8, colToggle, th.RGB(theme.RoleSuccess), ChannelStatic)
	} else {
		set(8, colToggle, th.RGB(theme.RoleActive), ChannelStatic)
	}
	if snap.State == sequencer.PracticePaused {
		set(8, colResume, th.RGB(theme.RoleWarning), ChannelFlash)
	}
	set(8, colTempoDown, th.RGB(theme.RoleMuted), ChannelStatic)
	set(8, colTempoUp, th.RGB(theme.RoleMuted), ChannelStatic)
	set(8, colPractice, toggleColor(th, snap.Playback.Practice), ChannelStatic)
	set(8, colCountIn, toggleColor(th, snap.Playback.CountIn), ChannelStatic)

	return leds
}

func toggleColor(th *theme.Theme, on bool) [3]uint8 {
	if on {
		return th.RGB(theme.RoleAccent)
	}
	return th.RGB(theme.RoleSurface)
}

// CommandFor maps a pad press to a command. Grid pads pick the loop length
// in slot order; the scene column does nothing.
func CommandFor(p PadEvent) (Command, bool) {
	if p.Row == 8 {
		switch p.Col {
		case colToggle:
			return Command{Action: ActionToggle}, true
		case colResume:
			return Command{Action: ActionResume}, true
		case colTempoDown:
			return Command{Action: ActionTempoDown}, true
		case colTempoUp:
			return Command{Action: ActionTempoUp}, true
		case colPractice:
			return Command{Action: ActionPractice}, true
		case colCountIn:
			return Command{Action: ActionCountIn}, true
		}
		return Command{}, false
	}
	if p.Row < 0 || p.Row > 7 || p.Col < 0 || p.Col > 7 {
		return Command{}, false
	}
	return Command{Action: ActionLoopLength, Value: (7-p.Row)*8 + p.Col + 1}, true
}
