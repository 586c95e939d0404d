package midi

// PadEvent is sent when a pad/button is pressed on a grid controller
type PadEvent struct {
	Row, Col int
	Velocity uint8
}

// LEDUpdate sets one pad. Row 8 is the top button row, column 8 the scene
// buttons on the right.
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8 // ChannelStatic, ChannelFlash or ChannelPulse
}

// Channel modes for LEDUpdate
const (
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)

// Grid is a pad controller: presses in, LED colours out
type Grid interface {
	Pads() <-chan PadEvent
	SetLEDBatch(updates []LEDUpdate) error
	Close() error
}
