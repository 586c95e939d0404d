package source

import (
	"fmt"

	"chordloop/chord"
	"chordloop/theory"
	"chordloop/turing"
)

// Generator modes
const (
	ModeRaw    = "raw"    // register output straight to a scale degree
	ModeSmooth = "smooth" // degrees biased by common movements
)

type transition struct {
	to     int
	weight float64
}

// transitions biases smooth mode toward common movements (ii-V-I etc.),
// keyed by the degree just played. Order matters: it lays out the
// cumulative distribution.
var transitions = map[int][]transition{
	0: {{3, 3}, {4, 3}, {5, 2}, {1, 1}, {2, 1}, {6, 0.5}},
	1: {{4, 3}, {0, 2}, {3, 1}, {5, 1}},
	2: {{5, 3}, {3, 2}, {0, 1}},
	3: {{4, 3}, {0, 2}, {1, 2}, {6, 1}},
	4: {{0, 4}, {5, 2}, {3, 1}},
	5: {{3, 3}, {4, 2}, {1, 2}, {2, 1}},
	6: {{0, 3}, {4, 2}, {5, 1}},
}

// weighted uses candidate (0..degrees-1) as the point in the distribution.
func weighted(ts []transition, candidate, degrees int) int {
	var total float64
	for _, t := range ts {
		total += t.weight
	}
	point := float64(candidate) / float64(degrees) * total
	var cum float64
	for _, t := range ts {
		cum += t.weight
		if point < cum {
			return t.to
		}
	}
	return ts[len(ts)-1].to
}

// Generator turns register steps into diatonic chords
type Generator struct {
	key, scale, voicing, mode string

	reg        *turing.Register
	scaleNotes []string
	last       int
}

// NewGenerator validates key and scale and wires reg to them.
func NewGenerator(key, scale, voicing, mode string, reg *turing.Register) (*Generator, error) {
	notes, err := theory.ScaleNotes(key, scale)
	if err != nil {
		return nil, err
	}
	return &Generator{
		key:        key,
		scale:      scale,
		voicing:    voicing,
		mode:       mode,
		reg:        reg,
		scaleNotes: notes,
	}, nil
}

// Step advances the register once and returns the resulting chord.
func (g *Generator) Step() (chord.Chord, error) {
	value := g.reg.Step()
	raw := value % len(g.scaleNotes)

	degree := raw
	if ts, ok := transitions[g.last]; ok && g.mode == ModeSmooth {
		degree = weighted(ts, raw, len(g.scaleNotes))
	}

	c, err := theory.Diatonic(g.scale, degree, g.voicing, g.scaleNotes, g.key)
	if err != nil {
		return chord.Chord{}, fmt.Errorf("degree %d: %w", degree, err)
	}
	g.last = degree

	return chord.Chord{
		Symbol:   c.Symbol,
		Category: c.Category,
		Roman:    c.Roman,
		Mutated:  raw != degree,
		Notes:    c.Notes,
	}, nil
}

// Configure changes the settings of a running generator. The register and
// the last degree are kept; empty values leave a setting as it is.
func (g *Generator) Configure(key, scale, voicing, mode string) error {
	if key == "" {
		key = g.key
	}
	if scale == "" {
		scale = g.scale
	}
	notes, err := theory.ScaleNotes(key, scale)
	if err != nil {
		return err
	}
	g.key, g.scale, g.scaleNotes = key, scale, notes
	if voicing != "" {
		g.voicing = voicing
	}
	if mode != "" {
		g.mode = mode
	}
	return nil
}

// Register exposes the underlying register for save/restore
func (g *Generator) Register() *turing.Register {
	return g.reg
}
