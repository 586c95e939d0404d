package rhythm

import (
	"fmt"
	"strconv"
	"strings"
)

// Pattern is a cyclic list of chords-per-bar. Entry i is the number of chords
// in bar i of the cycle; 0 holds the chord carried from the previous bar.
type Pattern []int

// Default is the pattern every invalid input resolves to: one chord per bar.
func Default() Pattern {
	return Pattern{1}
}

// PatternError describes why free-form pattern text was rejected
type PatternError struct {
	Token  string
	Reason string
}

func (e *PatternError) Error() string {
	if e.Token == "" {
		return "invalid pattern: " + e.Reason
	}
	return fmt.Sprintf("invalid pattern entry %q: %s", e.Token, e.Reason)
}

// FromSimple converts the structured pair into a pattern.
// barsPerChord wins when both are greater than one.
func FromSimple(barsPerChord, chordsPerBar int) Pattern {
	if barsPerChord > 1 {
		p := make(Pattern, barsPerChord)
		p[0] = 1
		return p
	}
	if chordsPerBar > 1 {
		return Pattern{chordsPerBar}
	}
	return Default()
}

// Parse reads whitespace-separated non-negative integers. Empty input parses
// to the default pattern.
func Parse(text string) (Pattern, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Default(), nil
	}

	p := make(Pattern, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, &PatternError{Token: f, Reason: "must be a non-negative integer"}
		}
		if n < 0 {
			return nil, &PatternError{Token: f, Reason: "must be non-negative"}
		}
		p = append(p, n)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseOrDefault is Parse with every error resolved to the default pattern.
func ParseOrDefault(text string) Pattern {
	p, err := Parse(text)
	if err != nil {
		return Default()
	}
	return p
}

// Validate reports whether the pattern can be played: at least one bar and
// something to hold at the start of the cycle.
func (p Pattern) Validate() error {
	if len(p) == 0 {
		return &PatternError{Reason: "pattern is empty"}
	}
	if p[0] == 0 {
		return &PatternError{Token: "0", Reason: "pattern cannot start with a hold"}
	}
	for _, n := range p {
		if n < 0 {
			return &PatternError{Token: strconv.Itoa(n), Reason: "must be non-negative"}
		}
	}
	return nil
}

// At returns the entry for bar i, wrapping around the cycle.
func (p Pattern) At(i int) int {
	if len(p) == 0 {
		return 0
	}
	i %= len(p)
	if i < 0 {
		i += len(p)
	}
	return p[i]
}

// Chords returns how many chords one cycle of the pattern starts.
func (p Pattern) Chords() int {
	total := 0
	for _, n := range p {
		total += n
	}
	return total
}

// Durations converts the pattern into beat lengths per chord for the given
// meter. Hold bars extend the previous chord.
//
//	[1]     -> [4]
//	[2]     -> [2 2]
//	[1 0]   -> [8]
//	[1 1 2] -> [4 4 2 2]
func (p Pattern) Durations(beatsPerBar int) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var durations []float64
	for _, n := range p {
		if n == 0 {
			durations[len(durations)-1] += float64(beatsPerBar)
			continue
		}
		slot := float64(beatsPerBar) / float64(n)
		for i := 0; i < n; i++ {
			durations = append(durations, slot)
		}
	}
	return durations, nil
}

// String formats the pattern the way Parse reads it.
func (p Pattern) String() string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}
