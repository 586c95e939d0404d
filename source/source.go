// Package source provides the chord sequence sources: an in-process
// generator driven by a Turing register, and a client for the chord engine's
// HTTP API.
package source

import (
	"chordloop/chord"
	"chordloop/config"
)

var (
	_ chord.Configurer = (*Local)(nil)
	_ chord.Configurer = (*HTTP)(nil)
)

// FromConfig builds the source named by cfg.
func FromConfig(cfg config.SourceConfig) chord.Source {
	if cfg.Kind == config.SourceHTTP {
		return NewHTTP(cfg.URL, nil)
	}
	return NewLocal(nil)
}
