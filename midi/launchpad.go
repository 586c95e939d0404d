package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"chordloop/debug"
)

// Launchpad drives a Novation Launchpad X in programmer mode
type Launchpad struct {
	name string

	mu       sync.Mutex
	send     Sender
	stopFunc func()
	closed   bool

	pads chan PadEvent
}

// OpenLaunchpad switches the device to programmer mode and starts listening
// for presses. Either port may be nil.
func OpenLaunchpad(in drivers.In, out drivers.Out) (*Launchpad, error) {
	lp := &Launchpad{pads: make(chan PadEvent, 32)}

	if out != nil {
		lp.name = out.String()
		send, err := gomidi.SendTo(out)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send

		// programmer mode: F0 00 20 29 02 0C 00 7F F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))
		// full brightness: F0 00 20 29 02 0C 08 7F F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))
	}

	if in != nil {
		if lp.name == "" {
			lp.name = in.String()
		}
		stop, err := gomidi.ListenTo(in, lp.receive)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	debug.Log("launchpad", "opened %s", lp.name)
	return lp, nil
}

func (lp *Launchpad) receive(msg gomidi.Message, timestampms int32) {
	var channel, note, velocity uint8
	var cc, value uint8

	row, col := -1, -1
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
		row, col = noteToRowCol(note)
	case msg.GetControlChange(&channel, &cc, &value) && value > 0:
		row, col = ccToRowCol(cc)
		velocity = value
	}
	if row < 0 {
		return
	}

	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.closed {
		return
	}
	select {
	case lp.pads <- PadEvent{Row: row, Col: col, Velocity: velocity}:
	default:
	}
}

func (lp *Launchpad) Name() string {
	return lp.name
}

func (lp *Launchpad) Pads() <-chan PadEvent {
	return lp.pads
}

// SetLEDBatch sends one note-on per pad; the velocity picks the palette
// colour and the channel the flash/pulse mode.
func (lp *Launchpad) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		if err := lp.send(gomidi.NoteOn(u.Channel, rowColToNote(u.Row, u.Col), nearestColor(u.Color))); err != nil {
			return err
		}
	}
	return nil
}

// Close darkens every pad and stops listening.
func (lp *Launchpad) Close() error {
	var updates []LEDUpdate
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if row == 8 && col == 8 {
				continue // no LED at 8,8
			}
			updates = append(updates, LEDUpdate{Row: row, Col: col})
		}
	}
	err := lp.SetLEDBatch(updates)

	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if !lp.closed {
		lp.closed = true
		close(lp.pads)
	}
	return err
}

// launchpadPalette holds approximate RGB values for Launchpad X palette
// entries: {velocity, R, G, B}
var launchpadPalette = [][4]uint8{
	{0, 0, 0, 0},         // off
	{5, 255, 0, 0},       // red
	{6, 255, 80, 80},     // bright red
	{7, 180, 60, 60},     // dim red
	{9, 255, 100, 0},     // orange
	{11, 180, 80, 40},    // dim orange
	{13, 255, 200, 0},    // yellow
	{17, 0, 180, 0},      // green
	{19, 0, 100, 0},      // dim green
	{21, 0, 255, 0},      // bright green
	{37, 0, 200, 200},    // cyan
	{43, 40, 60, 120},    // dim blue
	{45, 0, 100, 255},    // blue
	{47, 80, 150, 255},   // bright blue
	{49, 150, 0, 200},    // purple
	{53, 255, 80, 180},   // pink
	{78, 100, 100, 255},  // light blue
	{84, 255, 150, 50},   // bright orange
	{87, 150, 255, 100},  // lime
	{97, 180, 180, 60},   // dim yellow
	{119, 255, 255, 255}, // white
}

// nearestColor picks the palette velocity closest to rgb
func nearestColor(rgb [3]uint8) uint8 {
	best := uint8(0)
	bestDist := 1 << 30
	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	for _, p := range launchpadPalette {
		dr, dg, db := r-int(p[1]), g-int(p[2]), b-int(p[3])
		if dist := dr*dr + dg*dg + db*db; dist < bestDist {
			bestDist = dist
			best = p[0]
		}
	}
	return best
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, ... 89
// Top row:   Row 8 = CC 91-98 in, notes 91-98 for LEDs

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
