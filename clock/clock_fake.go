package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced clock. Callbacks only run from Fire or
// Advance, on the caller's goroutine.
type Fake struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	clock *Fake
	at    time.Duration
	seq   int
	f     func()
	done  bool
}

func NewFakeClock() *Fake {
	return &Fake{}
}

func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d < 0 {
		d = 0
	}
	c.seq++
	t := &fakeTimer{clock: c, at: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.clock.remove(t)
	return true
}

// Now returns the time elapsed on the fake clock.
func (c *Fake) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns the number of armed callbacks.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Next returns the delay until the earliest armed callback.
func (c *Fake) Next() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.earliest()
	if t == nil {
		return 0, false
	}
	return t.at - c.now, true
}

// Fire moves the clock to the earliest armed callback and runs it. It
// reports false when nothing is armed.
func (c *Fake) Fire() bool {
	c.mu.Lock()
	t := c.earliest()
	if t == nil {
		c.mu.Unlock()
		return false
	}
	if t.at > c.now {
		c.now = t.at
	}
	t.done = true
	c.remove(t)
	c.mu.Unlock()

	t.f()
	return true
}

// Advance moves the clock forward by d, running every callback that falls
// due on the way, including ones armed by earlier callbacks.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	until := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		t := c.earliest()
		if t == nil || t.at > until {
			c.now = until
			c.mu.Unlock()
			return
		}
		c.now = t.at
		t.done = true
		c.remove(t)
		c.mu.Unlock()

		t.f()
	}
}

func (c *Fake) earliest() *fakeTimer {
	if len(c.timers) == 0 {
		return nil
	}
	sort.Slice(c.timers, func(i, j int) bool {
		if c.timers[i].at == c.timers[j].at {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].at < c.timers[j].at
	})
	return c.timers[0]
}

func (c *Fake) remove(t *fakeTimer) {
	for i, x := range c.timers {
		if x == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}
