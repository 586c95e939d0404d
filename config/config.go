package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"chordloop/chord"
	"chordloop/debug"
	"chordloop/rhythm"
)

// Playback limits
const (
	MinBPM          = 40
	MaxBPM          = 200
	MinBeatsPerBar  = 2
	MaxBeatsPerBar  = 12
	MinSwing        = 50
	MaxSwing        = 100
	MinLoopLength   = 1
	MaxLoopLength   = 64
	MaxBarsPerChord = 16
	MaxChordsPerBar = 8
)

// RhythmMode selects how the pattern is written
type RhythmMode string

const (
	RhythmSimple RhythmMode = "simple" // bars per chord / chords per bar
	RhythmScript RhythmMode = "script" // free-form "1 0 2" text
)

// Rhythm describes how chords fall on bars
type Rhythm struct {
	Mode         RhythmMode `json:"mode"`
	BarsPerChord int        `json:"barsPerChord"`
	ChordsPerBar int        `json:"chordsPerBar"`
	Script       string     `json:"script,omitempty"`
}

// Pattern resolves the rhythm to a bar pattern. A bad script plays as one
// chord per bar.
func (r Rhythm) Pattern() rhythm.Pattern {
	if r.Mode == RhythmScript {
		return rhythm.ParseOrDefault(r.Script)
	}
	return rhythm.FromSimple(r.BarsPerChord, r.ChordsPerBar)
}

// Check reports a script that Pattern would replace with the default.
func (r Rhythm) Check() error {
	if r.Mode != RhythmScript {
		return nil
	}
	_, err := rhythm.Parse(r.Script)
	return err
}

// Playback is everything the scheduler reads on each tick
type Playback struct {
	BPM         int    `json:"bpm"`
	BeatsPerBar int    `json:"beatsPerBar"`
	Swing       int    `json:"swing"`
	Rhythm      Rhythm `json:"rhythm"`
	LoopLength  int    `json:"loopLength"`
	Practice    bool   `json:"practice"`
	CountIn     bool   `json:"countIn"`
}

func DefaultPlayback() Playback {
	return Playback{
		BPM:         120,
		BeatsPerBar: 4,
		Swing:       MinSwing,
		Rhythm: Rhythm{
			Mode:         RhythmSimple,
			BarsPerChord: 1,
			ChordsPerBar: 1,
		},
		LoopLength: 8,
		CountIn:    true,
	}
}

// Normalize clamps every field into range
func (p *Playback) Normalize() {
	p.BPM = clamp(p.BPM, MinBPM, MaxBPM)
	p.BeatsPerBar = clamp(p.BeatsPerBar, MinBeatsPerBar, MaxBeatsPerBar)
	p.Swing = clamp(p.Swing, MinSwing, MaxSwing)
	p.LoopLength = clamp(p.LoopLength, MinLoopLength, MaxLoopLength)
	p.Rhythm.BarsPerChord = clamp(p.Rhythm.BarsPerChord, 1, MaxBarsPerChord)
	p.Rhythm.ChordsPerBar = clamp(p.Rhythm.ChordsPerBar, 1, MaxChordsPerBar)
	if p.Rhythm.Mode != RhythmScript {
		p.Rhythm.Mode = RhythmSimple
	}
	if err := p.Rhythm.Check(); err != nil {
		debug.Warn("config", "rhythm %q: %v, playing one chord per bar", p.Rhythm.Script, err)
	}
}

// SourceKind picks where chords come from
type SourceKind string

const (
	SourceLocal SourceKind = "local"
	SourceHTTP  SourceKind = "http"
)

// SourceConfig configures the chord sequence source
type SourceConfig struct {
	Kind     SourceKind `json:"kind"`
	URL      string     `json:"url,omitempty"`
	Key      string     `json:"key"`
	Scale    string     `json:"scale"`
	Voicing  string     `json:"voicing"`
	Mode     string     `json:"mode"`
	Mutation float64    `json:"mutation"`
	Seed     *uint16    `json:"seed,omitempty"`
}

// Params builds the request for a fresh sequence of count chords over a
// loop of loopLength.
func (s SourceConfig) Params(loopLength, count int) chord.Params {
	return chord.Params{
		Key:      s.Key,
		Scale:    s.Scale,
		Voicing:  s.Voicing,
		Mode:     s.Mode,
		Length:   loopLength,
		Mutation: s.Mutation,
		Seed:     s.Seed,
		Count:    count,
	}
}

func (s *SourceConfig) Normalize() {
	if s.Kind != SourceHTTP {
		s.Kind = SourceLocal
	}
	if s.Kind == SourceHTTP && s.URL == "" {
		s.URL = "http://localhost:8000"
	}
	if s.Key == "" {
		s.Key = "C"
	}
	if s.Scale == "" {
		s.Scale = "ionian"
	}
	if s.Voicing == "" {
		s.Voicing = "sevenths"
	}
	if s.Mode != "smooth" {
		s.Mode = "raw"
	}
	s.Mutation = min(1, max(0, s.Mutation))
}

// ClickOutput picks the cue emitter
type ClickOutput string

const (
	ClickMIDI  ClickOutput = "midi"
	ClickAudio ClickOutput = "audio"
	ClickNone  ClickOutput = "none"
)

// ClickConfig defines the click cue output
type ClickConfig struct {
	Output     ClickOutput `json:"output"`
	PortName   string      `json:"portName,omitempty"`
	Channel    int         `json:"channel"` // 0-15
	Note       int         `json:"note"`
	AccentNote int         `json:"accentNote"`
	Velocity   int         `json:"velocity"`
}

func (c *ClickConfig) Normalize() {
	switch c.Output {
	case ClickMIDI, ClickAudio, ClickNone:
	default:
		c.Output = ClickMIDI
	}
	c.Channel = clamp(c.Channel, 0, 15)
	c.Note = clamp(c.Note, 0, 127)
	c.AccentNote = clamp(c.AccentNote, 0, 127)
	c.Velocity = clamp(c.Velocity, 1, 127)
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette   string `json:"palette,omitempty"` // GIMP .gpl file
	LastTempo int    `json:"lastTempo,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Playback Playback     `json:"playback"`
	Source   SourceConfig `json:"source"`
	Click    ClickConfig  `json:"click"`
	UI       UIConfig     `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Playback: DefaultPlayback(),
		Source: SourceConfig{
			Kind:     SourceLocal,
			Key:      "C",
			Scale:    "ionian",
			Voicing:  "sevenths",
			Mode:     "raw",
			Mutation: 0.1,
		},
		Click: ClickConfig{
			Output:     ClickMIDI,
			Channel:    9,  // GM percussion
			Note:       77, // low wood block
			AccentNote: 76, // high wood block
			Velocity:   100,
		},
		UI: UIConfig{
			LastTempo: 120,
		},
	}
}

// Normalize clamps every section into range
func (c *Config) Normalize() {
	c.Playback.Normalize()
	c.Source.Normalize()
	c.Click.Normalize()
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chordloop"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Fields missing from the file keep their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func clamp(v, lo, hi int) int {
	return min(hi, max(lo, v))
}
