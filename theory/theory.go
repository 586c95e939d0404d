// Package theory spells keys, scales and diatonic chords for the built-in
// chord generator. The scheduler never looks inside the chords it makes.
package theory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	sharps = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flats  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

	// keys spelled with flats; everything else uses sharps
	flatKeys = map[string]bool{
		"F": true, "Bb": true, "Eb": true, "Ab": true, "Db": true, "Gb": true,
		"Dm": true, "Gm": true, "Cm": true, "Fm": true, "Bbm": true, "Ebm": true,
	}
)

// Keys lists the selectable roots
var Keys = []string{"C", "Db", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

// Voicings lists the voicing levels from plain to colourful
var Voicings = []string{"triads", "sevenths", "extensions", "altered"}

// NoteIndex converts a note name to its chromatic index (0-11).
func NoteIndex(name string) (int, error) {
	name = strings.TrimSpace(name)
	for i := range sharps {
		if sharps[i] == name || flats[i] == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown note: %q", name)
}

// Spell names a chromatic index the way key would write it.
func Spell(index int, key string) string {
	idx := ((index % 12) + 12) % 12
	if flatKeys[key] {
		return flats[idx]
	}
	return sharps[idx]
}

// scales holds intervals from the root in semitones
var scales = map[string][]int{
	"ionian":     {0, 2, 4, 5, 7, 9, 11},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"phrygian":   {0, 1, 3, 5, 7, 8, 10},
	"lydian":     {0, 2, 4, 6, 7, 9, 11},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"aeolian":    {0, 2, 3, 5, 7, 8, 10},
	"locrian":    {0, 1, 3, 5, 6, 8, 10},

	"harmonic_minor":    {0, 2, 3, 5, 7, 8, 11},
	"phrygian_dominant": {0, 1, 4, 5, 7, 8, 10},

	"melodic_minor":   {0, 2, 3, 5, 7, 9, 11},
	"lydian_dominant": {0, 2, 4, 6, 7, 9, 10},
	"altered":         {0, 1, 3, 4, 6, 8, 10},

	"whole_tone":     {0, 2, 4, 6, 8, 10},
	"dim_whole_half": {0, 2, 3, 5, 6, 8, 9, 11},
	"dim_half_whole": {0, 1, 3, 4, 6, 7, 9, 10},

	"blues":            {0, 3, 5, 6, 7, 10},
	"minor_pentatonic": {0, 3, 5, 7, 10},
	"major_pentatonic": {0, 2, 4, 7, 9},
	"bebop_dominant":   {0, 2, 4, 5, 7, 9, 10, 11},
	"bebop_major":      {0, 2, 4, 5, 7, 8, 9, 11},
}

// Scales returns the known scale names, sorted.
func Scales() []string {
	names := make([]string, 0, len(scales))
	for name := range scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScaleNotes spells the scale built on root.
func ScaleNotes(root, scale string) ([]string, error) {
	intervals, ok := scales[scale]
	if !ok {
		return nil, fmt.Errorf("unknown scale: %q", scale)
	}
	idx, err := NoteIndex(root)
	if err != nil {
		return nil, err
	}
	notes := make([]string, len(intervals))
	for i, iv := range intervals {
		notes[i] = Spell(idx+iv, root)
	}
	return notes, nil
}

// Quality is a chord type: its intervals and its symbol suffix
type Quality struct {
	Intervals []int
	Suffix    string
	Category  string
}

var qualities = map[string]Quality{
	"maj":  {[]int{0, 4, 7}, "", "major"},
	"min":  {[]int{0, 3, 7}, "m", "minor"},
	"dim":  {[]int{0, 3, 6}, "dim", "diminished"},
	"aug":  {[]int{0, 4, 8}, "aug", "augmented"},
	"sus2": {[]int{0, 2, 7}, "sus2", "sus"},
	"sus4": {[]int{0, 5, 7}, "sus4", "sus"},

	"maj7":    {[]int{0, 4, 7, 11}, "maj7", "major"},
	"min7":    {[]int{0, 3, 7, 10}, "m7", "minor"},
	"dom7":    {[]int{0, 4, 7, 10}, "7", "dominant"},
	"min7b5":  {[]int{0, 3, 6, 10}, "m7b5", "diminished"},
	"dim7":    {[]int{0, 3, 6, 9}, "dim7", "diminished"},
	"minmaj7": {[]int{0, 3, 7, 11}, "mMaj7", "minor"},
	"7sus4":   {[]int{0, 5, 7, 10}, "7sus4", "dominant"},

	"maj9": {[]int{0, 4, 7, 11, 14}, "maj9", "major"},
	"min9": {[]int{0, 3, 7, 10, 14}, "m9", "minor"},
	"dom9": {[]int{0, 4, 7, 10, 14}, "9", "dominant"},
	"add9": {[]int{0, 4, 7, 14}, "add9", "major"},

	"min11": {[]int{0, 3, 7, 10, 14, 17}, "m11", "minor"},
	"dom11": {[]int{0, 4, 7, 10, 14, 17}, "11", "dominant"},

	"maj13": {[]int{0, 4, 7, 11, 14, 21}, "maj13", "major"},
	"min13": {[]int{0, 3, 7, 10, 14, 21}, "m13", "minor"},
	"dom13": {[]int{0, 4, 7, 10, 14, 21}, "13", "dominant"},

	"7b9":  {[]int{0, 4, 7, 10, 13}, "7b9", "altered"},
	"7#9":  {[]int{0, 4, 7, 10, 15}, "7#9", "altered"},
	"7b5":  {[]int{0, 4, 6, 10}, "7b5", "altered"},
	"7#5":  {[]int{0, 4, 8, 10}, "7#5", "augmented"},
	"7alt": {[]int{0, 4, 8, 10, 13}, "7alt", "altered"},
}

// diatonic maps scale -> voicing -> quality per degree
var diatonic = map[string]map[string][]string{
	"ionian": {
		"triads":     {"maj", "min", "min", "maj", "maj", "min", "dim"},
		"sevenths":   {"maj7", "min7", "min7", "maj7", "dom7", "min7", "min7b5"},
		"extensions": {"maj9", "min9", "min7", "maj9", "dom13", "min9", "min7b5"},
		"altered":    {"maj9", "min9", "min7", "maj9", "7alt", "min9", "min7b5"},
	},
	"dorian": {
		"triads":     {"min", "min", "maj", "maj", "min", "dim", "maj"},
		"sevenths":   {"min7", "min7", "maj7", "dom7", "min7", "min7b5", "maj7"},
		"extensions": {"min9", "min7", "maj9", "dom9", "min9", "min7b5", "maj9"},
		"altered":    {"min9", "min7", "maj9", "7alt", "min9", "min7b5", "maj9"},
	},
	"mixolydian": {
		"triads":     {"maj", "min", "dim", "maj", "min", "min", "maj"},
		"sevenths":   {"dom7", "min7", "min7b5", "maj7", "min7", "min7", "maj7"},
		"extensions": {"dom9", "min9", "min7b5", "maj9", "min9", "min7", "maj9"},
		"altered":    {"dom13", "min9", "min7b5", "maj9", "min9", "min7", "maj9"},
	},
	"aeolian": {
		"triads":     {"min", "dim", "maj", "min", "min", "maj", "maj"},
		"sevenths":   {"min7", "min7b5", "maj7", "min7", "min7", "maj7", "dom7"},
		"extensions": {"min9", "min7b5", "maj9", "min9", "min7", "maj9", "dom9"},
		"altered":    {"min9", "min7b5", "maj9", "min9", "min7", "maj9", "7alt"},
	},
	"harmonic_minor": {
		"triads":     {"min", "dim", "aug", "min", "maj", "maj", "dim"},
		"sevenths":   {"minmaj7", "min7b5", "maj7", "min7", "dom7", "maj7", "dim7"},
		"extensions": {"minmaj7", "min7b5", "maj7", "min9", "dom7", "maj9", "dim7"},
		"altered":    {"minmaj7", "min7b5", "maj7", "min9", "7b9", "maj9", "dim7"},
	},
	"melodic_minor": {
		"triads":     {"min", "min", "aug", "maj", "maj", "dim", "dim"},
		"sevenths":   {"minmaj7", "min7", "maj7", "dom7", "dom7", "min7b5", "min7b5"},
		"extensions": {"minmaj7", "min9", "maj7", "dom9", "dom9", "min7b5", "min7b5"},
		"altered":    {"minmaj7", "min9", "maj7", "7#9", "7alt", "min7b5", "min7b5"},
	},
}

// scales without their own map borrow the major one
var diatonicDefault = diatonic["ionian"]

var roman = []string{"I", "II", "III", "IV", "V", "VI", "VII"}

// Chord is a spelled chord
type Chord struct {
	Symbol   string
	Quality  string
	Root     string
	Notes    []string
	Degree   int
	Roman    string
	Category string
}

// BuildChord spells quality on root, using key for accidentals.
func BuildChord(root, quality, key string) (Chord, error) {
	q, ok := qualities[quality]
	if !ok {
		return Chord{}, fmt.Errorf("unknown chord quality: %q", quality)
	}
	idx, err := NoteIndex(root)
	if err != nil {
		return Chord{}, err
	}
	notes := make([]string, len(q.Intervals))
	for i, iv := range q.Intervals {
		notes[i] = Spell(idx+iv, key)
	}
	return Chord{
		Symbol:   root + q.Suffix,
		Quality:  quality,
		Root:     root,
		Notes:    notes,
		Category: q.Category,
	}, nil
}

// Diatonic builds the chord on scale degree of scaleNotes for voicing.
func Diatonic(scale string, degree int, voicing string, scaleNotes []string, key string) (Chord, error) {
	if len(scaleNotes) == 0 {
		return Chord{}, fmt.Errorf("empty scale")
	}
	chordMap, ok := diatonic[scale]
	if !ok {
		chordMap = diatonicDefault
	}
	degrees, ok := chordMap[voicing]
	if !ok {
		degrees = chordMap["sevenths"]
	}

	degree %= len(scaleNotes)
	c, err := BuildChord(scaleNotes[degree], degrees[degree%len(degrees)], key)
	if err != nil {
		return Chord{}, err
	}
	c.Degree = degree
	if degree < len(roman) {
		c.Roman = roman[degree]
	} else {
		c.Roman = strconv.Itoa(degree + 1)
	}
	return c, nil
}
