package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chordloop/chord"
	"chordloop/clock"
	"chordloop/config"
	"chordloop/debug"
	"chordloop/lookahead"
)

// errStale ends the continuation of a fetch that Stop or Start superseded
var errStale = errors.New("stale tick")

// Options wires a Scheduler to its collaborators
type Options struct {
	Source   chord.Source
	Cues     CueEmitter
	Renderer Renderer
	Clock    clock.Driver // clock.Real when nil

	Playback config.Playback
	Params   chord.Params // Length and Count are filled in by Start
}

// Scheduler owns one chord loop session: position, lookahead and transport
// state. Ticks arrive from the clock driver one at a time; the only point
// where a tick lets go of the lock is a chord fetch.
type Scheduler struct {
	mu      sync.Mutex
	fetchMu sync.Mutex // the source never sees two calls at once

	src    chord.Source
	cues   CueEmitter
	render Renderer
	clk    clock.Driver
	params chord.Params

	pb    config.Playback
	state State
	pos   Position
	beat  int
	count int // count-in beat just clicked, 1-based

	buf     *lookahead.Buffer
	countIn countIn
	gate    gate

	timer    clock.Timer
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	fetching int // fetches in flight with s.mu released

	err    error
	closed bool
}

func New(opts Options) *Scheduler {
	s := &Scheduler{
		src:    opts.Source,
		cues:   opts.Cues,
		render: opts.Renderer,
		clk:    opts.Clock,
		params: opts.Params,
		pb:     opts.Playback,
		buf:    lookahead.New(),
	}
	if s.clk == nil {
		s.clk = clock.NewRealClock()
	}
	if s.cues == nil {
		s.cues = ClickFunc(func(bool) {})
	}
	if s.render == nil {
		s.render = RenderFunc(func(Snapshot) {})
	}
	s.pb.Normalize()
	return s
}

// Start fetches a fresh sequence and begins playback, with a count-in bar
// when enabled. Any running session is cancelled first. It blocks for the
// initial fetch; Stop may be called meanwhile, in which case Start returns
// ErrStopped.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.halt()
	s.state = Stopped
	s.err = nil
	gen := s.gen
	sessCtx, cancel := context.WithCancel(ctx)
	s.ctx, s.cancel = sessCtx, cancel

	params := s.params
	params.Length = s.pb.LoopLength
	params.Count = max(s.pb.LoopLength, lookahead.MinAhead)
	s.mu.Unlock()

	debug.Log("sched", "start: fetching %d chords", params.Count)
	s.fetchMu.Lock()
	seq, err := s.src.Initial(sessCtx, params)
	s.fetchMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return ErrStopped
	}
	if err != nil {
		err = fmt.Errorf("fetch initial sequence: %w", err)
		s.fail(err)
		return err
	}

	s.buf.Reset(seq.Chords, s.pb.LoopLength)
	if err := s.buf.Fill(sessCtx, s.fetcher(gen)); err != nil {
		if errors.Is(err, errStale) {
			return ErrStopped
		}
		err = fmt.Errorf("fetch next chord: %w", err)
		s.fail(err)
		return err
	}
	s.buf.Resize(s.pb.LoopLength)

	s.pos = Position{}
	s.beat = 0
	s.count = 0
	s.gate.reset()
	s.countIn.reset()
	if s.pb.CountIn {
		s.state = CountingIn
	} else {
		s.state = Playing
	}
	debug.Log("sched", "start: %d chords ready, register %04x, %s", s.buf.Ahead(), seq.RegisterState, s.state)

	s.arm(0)
	s.publish()
	return nil
}

// Stop halts the transport. An armed tick is cancelled and a fetch in
// flight is abandoned; the position is kept.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.halt()
	s.state = Stopped
	debug.Log("sched", "stop at chord %d bar %d beat %d", s.buf.Position(), s.pos.Bar, s.pos.Beat)
	s.publish()
}

// Resume continues a practice pause from the top of the pattern, without a
// count-in.
func (s *Scheduler) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != PracticePaused {
		return ErrNotPaused
	}
	s.gate.reset()
	s.pos = Position{}
	s.state = Playing
	debug.Log("sched", "resume at chord %d", s.buf.Position())

	s.arm(0)
	s.publish()
	return nil
}

// Configure edits the playback settings. Ticks read them fresh, so changes
// land on the next tick.
func (s *Scheduler) Configure(fn func(*config.Playback)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.pb)
	s.pb.Normalize()
	if s.fetching > 0 {
		// the suspended tick resizes the mirror and publishes
		return
	}
	s.buf.Resize(s.pb.LoopLength)
	s.publish()
}

// Playback returns the current settings
func (s *Scheduler) Playback() config.Playback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pb
}

// SetParams changes the source settings. Every Start uses them; a source
// that is a chord.Configurer also applies them to the sequence in play,
// between fetches, keeping its register.
func (s *Scheduler) SetParams(ctx context.Context, p chord.Params) error {
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()

	c, ok := s.src.(chord.Configurer)
	if !ok {
		return nil
	}
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()
	if err := c.Configure(ctx, p); err != nil {
		return fmt.Errorf("configure source: %w", err)
	}
	debug.Log("sched", "source configured: %s %s %s", p.Key, p.Scale, p.Mode)
	return nil
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Err returns the error that stopped the last session, if any.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the scheduler for good.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.halt()
	s.state = Stopped
	s.closed = true
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.closed {
		return
	}
	s.timer = nil

	switch s.state {
	case CountingIn:
		s.countInTick()
	case Playing:
		s.playTick(gen)
	}
}

func (s *Scheduler) countInTick() {
	pb := s.pb
	cue, done := s.countIn.tick(pb.BeatsPerBar)
	s.cues.Click(cue.Accent)
	s.beat = cue.Beat
	s.count = cue.Beat + 1
	debug.LogEvery(time.Second, "tick", "count-in %d/%d", s.count, pb.BeatsPerBar)

	if done {
		s.pos = Position{}
		s.state = Playing
		s.countIn.reset()
	}
	s.arm(clock.Interval(pb.BPM, pb.Swing, cue.Beat))
	s.publish()
}

func (s *Scheduler) playTick(gen uint64) {
	if s.pos.PendingAdvance {
		s.pos.PendingAdvance = false
		if err := s.advance(gen); err != nil {
			if !errors.Is(err, errStale) {
				s.fail(err)
			}
			return
		}
		pb := s.pb
		if s.gate.tripped(pb.Practice, pb.LoopLength) {
			s.state = PracticePaused
			debug.Log("sched", "practice pause after %d chords", s.gate.count)
			s.publish()
			return
		}
	}

	// read again: the fetch above may have let a Configure in
	pb := s.pb
	pat := pb.Rhythm.Pattern()
	if err := pat.Validate(); err != nil {
		s.fail(fmt.Errorf("%w: %v", ErrInvariant, err))
		return
	}

	next, cue := Advance(s.pos, pat, pb.BeatsPerBar)
	s.cues.Click(cue.Accent)
	s.beat = cue.Beat
	s.count = 0
	s.pos = next
	debug.LogEvery(time.Second, "tick", "bar %d beat %d chord %d", next.Bar, cue.Beat, s.buf.Position())

	s.arm(clock.Interval(pb.BPM, pb.Swing, cue.Beat))
	s.publish()
}

// advance moves to the next chord and restores the lookahead floor,
// suspending for each fetch. The loop length is read again afterwards since
// a Configure may have landed during the fetch.
func (s *Scheduler) advance(gen uint64) error {
	if err := s.buf.Advance(s.ctx, s.fetcher(gen)); err != nil {
		if errors.Is(err, errStale) {
			return err
		}
		return fmt.Errorf("fetch next chord: %w", err)
	}
	s.buf.Resize(s.pb.LoopLength)
	if c, ok := s.buf.Current(); ok {
		debug.Log("sched", "chord %d: %s", s.buf.Position(), c.Symbol)
	}
	if ahead := s.buf.Ahead(); ahead < lookahead.MinAhead {
		return fmt.Errorf("%w: lookahead %d below %d", ErrInvariant, ahead, lookahead.MinAhead)
	}
	s.gate.advanced()
	return nil
}

// fail ends the session with err
func (s *Scheduler) fail(err error) {
	s.halt()
	s.state = Stopped
	s.err = err
	debug.Error("sched", err, "session stopped")
	s.publish()
}

// halt cancels the armed tick and the session context, and invalidates any
// continuation still in flight.
func (s *Scheduler) halt() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Scheduler) arm(d time.Duration) {
	gen := s.gen
	s.timer = s.clk.AfterFunc(d, func() { s.tick(gen) })
}

func (s *Scheduler) publish() {
	s.render.Render(s.snapshot())
}

func (s *Scheduler) snapshot() Snapshot {
	return Snapshot{
		State:       s.state,
		Position:    s.pos,
		Beat:        s.beat,
		BeatsPerBar: s.pb.BeatsPerBar,
		Bar:         s.pos.Bar,
		Index:       s.buf.Position(),
		Chords:      s.buf.Window(lookahead.MinAhead),
		History:     s.buf.History(lookahead.MinAhead),
		Loop:        s.buf.Loop(),
		LoopSlot:    s.buf.LoopSlot(),
		CountingIn:  s.count,
		Cycle:       s.gate.count,
		Playback:    s.pb,
		Pattern:     s.pb.Rhythm.Pattern(),
		Err:         s.err,
	}
}

// fetcher returns the chord.Fetcher used inside a tick of generation gen.
// It drops s.mu for the duration of each fetch.
func (s *Scheduler) fetcher(gen uint64) chord.Fetcher {
	return suspendingFetcher{s: s, gen: gen}
}

type suspendingFetcher struct {
	s   *Scheduler
	gen uint64
}

func (f suspendingFetcher) Next(ctx context.Context) (chord.Chord, error) {
	s := f.s
	s.fetching++
	s.mu.Unlock()

	s.fetchMu.Lock()
	c, err := s.src.Next(ctx)
	s.fetchMu.Unlock()

	s.mu.Lock()
	s.fetching--
	if s.gen != f.gen {
		return chord.Chord{}, errStale
	}
	return c, err
}
