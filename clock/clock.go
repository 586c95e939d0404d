package clock

import "time"

// Timer is an armed callback that can be cancelled
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// fired or was stopped.
	Stop() bool
}

// Driver arms one-shot callbacks. The scheduler re-arms itself through it
// after every tick, so swapping the driver swaps the notion of time.
type Driver interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real drives ticks from the runtime timer
type Real struct{}

func NewRealClock() Real {
	return Real{}
}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
