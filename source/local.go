package source

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"chordloop/chord"
	"chordloop/debug"
	"chordloop/turing"
)

// Local generates chords in process
type Local struct {
	mu  sync.Mutex
	rng *rand.Rand
	gen *Generator
}

// NewLocal returns a source drawing unseeded registers from rng (a
// time-seeded one when nil).
func NewLocal(rng *rand.Rand) *Local {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Local{rng: rng}
}

// Initial builds a fresh generator from p and returns its first p.Count
// chords.
func (l *Local) Initial(ctx context.Context, p chord.Params) (chord.Sequence, error) {
	if err := ctx.Err(); err != nil {
		return chord.Sequence{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var reg *turing.Register
	if p.Seed != nil {
		reg = turing.New(*p.Seed, p.Length)
	} else {
		reg = turing.NewRandom(l.rng, p.Length)
	}
	reg.SetProbability(p.Mutation)

	gen, err := NewGenerator(p.Key, p.Scale, p.Voicing, p.Mode, reg)
	if err != nil {
		return chord.Sequence{}, err
	}
	l.gen = gen

	seq := chord.Sequence{Chords: make([]chord.Chord, 0, p.Count)}
	for i := 0; i < p.Count; i++ {
		c, err := gen.Step()
		if err != nil {
			return chord.Sequence{}, err
		}
		seq.Chords = append(seq.Chords, c)
	}
	seq.RegisterState = reg.State()

	debug.Log("source", "local sequence %s %s len=%d count=%d state=%04x",
		p.Key, p.Scale, reg.Length(), p.Count, seq.RegisterState)
	return seq, nil
}

// Next continues the current sequence. Before any Initial it starts one
// with default settings.
func (l *Local) Next(ctx context.Context) (chord.Chord, error) {
	if err := ctx.Err(); err != nil {
		return chord.Chord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen == nil {
		reg := turing.NewRandom(l.rng, 8)
		reg.SetProbability(0.1)
		gen, err := NewGenerator("C", "ionian", "sevenths", ModeRaw, reg)
		if err != nil {
			return chord.Chord{}, err
		}
		l.gen = gen
	}
	return l.gen.Step()
}

// Configure applies p to the running generator, keeping the register
// contents. Before any Initial or Next there is nothing to change and p is
// left for the next Initial.
func (l *Local) Configure(ctx context.Context, p chord.Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen == nil {
		return nil
	}
	if err := l.gen.Configure(p.Key, p.Scale, p.Voicing, p.Mode); err != nil {
		return err
	}
	reg := l.gen.Register()
	reg.SetProbability(p.Mutation)
	if p.Length > 0 {
		reg.SetLength(p.Length)
	}
	debug.Log("source", "local configure %s %s %s %s mutation=%.2f len=%d state=%04x",
		l.gen.key, l.gen.scale, l.gen.voicing, l.gen.mode, reg.Probability(), reg.Length(), reg.State())
	return nil
}

// RegisterState returns the current register for save/restore
func (l *Local) RegisterState() (uint16, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen == nil {
		return 0, false
	}
	return l.gen.Register().State(), true
}
