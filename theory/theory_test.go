package theory

import (
	"reflect"
	"testing"
)

func TestScaleNotes(t *testing.T) {
	tests := []struct {
		root, scale string
		want        []string
	}{
		{"C", "ionian", []string{"C", "D", "E", "F", "G", "A", "B"}},
		{"Bb", "dorian", []string{"Bb", "C", "Db", "Eb", "F", "G", "Ab"}},
		{"A", "aeolian", []string{"A", "B", "C", "D", "E", "F", "G"}},
		{"G", "major_pentatonic", []string{"G", "A", "B", "D", "E"}},
	}
	for _, tt := range tests {
		got, err := ScaleNotes(tt.root, tt.scale)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(tt.want, got) {
			t.Errorf("%s %s: want %v, got %v", tt.root, tt.scale, tt.want, got)
		}
	}

	if _, err := ScaleNotes("C", "nope"); err == nil {
		t.Error("expected an error for an unknown scale")
	}
	if _, err := ScaleNotes("H", "ionian"); err == nil {
		t.Error("expected an error for an unknown root")
	}
}

func TestBuildChord(t *testing.T) {
	c, err := BuildChord("G", "dom7", "C")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := "G7", c.Symbol; want != got {
		t.Errorf("symbol: want %v, got %v", want, got)
	}
	if want, got := []string{"G", "B", "D", "F"}, c.Notes; !reflect.DeepEqual(want, got) {
		t.Errorf("notes: want %v, got %v", want, got)
	}
	if want, got := "dominant", c.Category; want != got {
		t.Errorf("category: want %v, got %v", want, got)
	}
}

func TestDiatonic(t *testing.T) {
	notes, _ := ScaleNotes("C", "ionian")
	tests := []struct {
		degree  int
		voicing string
		symbol  string
		roman   string
	}{
		{0, "triads", "C", "I"},
		{1, "triads", "Dm", "II"},
		{6, "triads", "Bdim", "VII"},
		{4, "sevenths", "G7", "V"},
		{6, "sevenths", "Bm7b5", "VII"},
		{4, "altered", "G7alt", "V"},
		{8, "sevenths", "Dm7", "II"},
		{0, "bogus", "Cmaj7", "I"},
	}
	for _, tt := range tests {
		c, err := Diatonic("ionian", tt.degree, tt.voicing, notes, "C")
		if err != nil {
			t.Fatal(err)
		}
		if c.Symbol != tt.symbol || c.Roman != tt.roman {
			t.Errorf("degree %d %s: want %s %s, got %s %s",
				tt.degree, tt.voicing, tt.symbol, tt.roman, c.Symbol, c.Roman)
		}
	}
}

func TestDiatonicBeyondSeventhDegree(t *testing.T) {
	notes, _ := ScaleNotes("C", "bebop_major")
	c, err := Diatonic("bebop_major", 7, "triads", notes, "C")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := "8", c.Roman; want != got {
		t.Errorf("roman: want %v, got %v", want, got)
	}
}

func TestSpellFlatKeys(t *testing.T) {
	if want, got := "Bb", Spell(10, "F"); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := "A#", Spell(10, "E"); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := "B", Spell(-1, "C"); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}
