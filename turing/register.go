// Package turing implements a 16-bit looping shift register with
// probabilistic feedback, after the Music Thing Modular Turing Machine.
//
// The low Length bits form a loop. Each step the bit leaving the bottom of
// the loop is fed back into its top, flipped with the configured
// probability. With probability 0 the output repeats every Length steps;
// with probability 1 it is random.
package turing

import "math/rand"

const (
	MinLength = 2
	MaxLength = 16
)

type Register struct {
	value       uint16
	length      int
	probability float64
	rng         *rand.Rand
}

// New creates a locked register with the given seed and loop length.
func New(seed uint16, length int) *Register {
	return &Register{
		value:  seed,
		length: clampLength(length),
		rng:    rand.New(rand.NewSource(int64(seed))),
	}
}

// NewRandom seeds the register from rng.
func NewRandom(rng *rand.Rand, length int) *Register {
	r := New(uint16(rng.Intn(1<<16)), length)
	r.rng = rng
	return r
}

// SetRand replaces the source of mutation decisions.
func (r *Register) SetRand(rng *rand.Rand) {
	r.rng = rng
}

// Step advances the loop by one and returns the low 8 bits (0-255).
func (r *Register) Step() int {
	mask := uint16(1)<<r.length - 1
	loop := r.value & mask

	bit := loop & 1
	if r.probability > 0 && r.rng.Float64() < r.probability {
		bit ^= 1
	}

	loop = loop>>1 | bit<<(r.length-1)
	r.value = r.value&^mask | loop
	return int(r.value & 0xFF)
}

// Output returns the current low 8 bits without stepping.
func (r *Register) Output() int {
	return int(r.value & 0xFF)
}

// State returns the full register for save/restore.
func (r *Register) State() uint16 {
	return r.value
}

func (r *Register) SetState(v uint16) {
	r.value = v
}

func (r *Register) Length() int {
	return r.length
}

func (r *Register) SetLength(n int) {
	r.length = clampLength(n)
}

func (r *Register) Probability() float64 {
	return r.probability
}

// SetProbability sets the chance of flipping the feedback bit; 0 locks the
// loop, 1 is fully random.
func (r *Register) SetProbability(p float64) {
	r.probability = min(1, max(0, p))
}

func clampLength(n int) int {
	return min(MaxLength, max(MinLength, n))
}
