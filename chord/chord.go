package chord

import "context"

// Chord is one materialised chord. The scheduler passes it through untouched.
type Chord struct {
	Symbol   string   `json:"symbol"`
	Category string   `json:"category"`
	Roman    string   `json:"roman"`
	Mutated  bool     `json:"mutated"`
	Notes    []string `json:"notes,omitempty"`
}

// IsZero reports whether c is an empty slot
func (c Chord) IsZero() bool {
	return c.Symbol == "" && c.Roman == ""
}

// Params configures a fresh sequence
type Params struct {
	Key      string  `json:"key"`
	Scale    string  `json:"scale"`
	Voicing  string  `json:"voicing"`
	Mode     string  `json:"mode"`
	Length   int     `json:"length"`
	Mutation float64 `json:"mutation"`
	Seed     *uint16 `json:"seed,omitempty"`
	Count    int     `json:"count"`
}

// Sequence is the reply to an initial fetch
type Sequence struct {
	Chords        []Chord `json:"chords"`
	RegisterState uint16  `json:"register_state"`
}

// Source produces chords. Initial starts a new sequence; Next continues it.
// Callers never issue two calls at once.
type Source interface {
	Initial(ctx context.Context, p Params) (Sequence, error)
	Next(ctx context.Context) (Chord, error)
}

// Fetcher is the part of a Source needed to top up a buffer
type Fetcher interface {
	Next(ctx context.Context) (Chord, error)
}

// Configurer is implemented by sources that can change key, scale, voicing,
// mode, mutation and loop length on a running sequence without resetting
// its register. Empty strings and a zero Length leave a setting as it is;
// Seed and Count are ignored.
type Configurer interface {
	Configure(ctx context.Context, p Params) error
}
