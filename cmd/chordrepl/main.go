// Command chordrepl drives the chord loop from a line prompt, for setups
// without a terminal UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/chzyer/readline"

	"chordloop/audio"
	"chordloop/config"
	"chordloop/debug"
	"chordloop/midi"
	"chordloop/sequencer"
	"chordloop/source"
)

func main() {
	var (
		sourceURL = flag.String("source", "", "chord service URL; the built-in generator when empty")
		port      = flag.String("port", "", "MIDI output port for the click; audio click when empty")
		quiet     = flag.Bool("quiet", false, "no click")
		debugLog  = flag.Bool("debug", false, "write a debug log to "+debug.DefaultPath())
	)
	flag.Parse()

	if *debugLog {
		if err := debug.Enable(debug.DefaultPath()); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	if *sourceURL != "" {
		cfg.Source.Kind = config.SourceHTTP
		cfg.Source.URL = *sourceURL
	}
	cfg.Normalize()

	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	var cues sequencer.CueEmitter
	switch {
	case *quiet:
	case *port != "":
		ports, err := midi.Scan(midi.ScanTimeout)
		if err == nil {
			var send midi.Sender
			send, _, err = ports.OpenOut(*port)
			if err == nil {
				cues = midi.NewClick(send, cfg.Click)
			}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "click: %v\n", err)
		}
		defer midi.CloseDriver()
	default:
		if c, err := audio.NewClick(); err != nil {
			fmt.Fprintf(os.Stderr, "click: %v\n", err)
		} else {
			cues = c
		}
	}

	src := source.FromConfig(cfg.Source)
	sched := sequencer.New(sequencer.Options{
		Source:   src,
		Cues:     cues,
		Renderer: chordPrinter(rl),
		Playback: cfg.Playback,
		Params:   cfg.Source.Params(0, 0),
	})
	defer sched.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Fprintln(rl.Stdout(), "chordloop: type help for commands")
	if err := repl(&env{ctx: ctx, sched: sched, src: src, cfg: cfg}, rl); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

// chordPrinter prints each chord change and a stopped session's error.
func chordPrinter(rl *readline.Instance) sequencer.Renderer {
	last := -1
	var lastState sequencer.State
	return sequencer.RenderFunc(func(snap sequencer.Snapshot) {
		switch {
		case snap.Err != nil && lastState != sequencer.Stopped && snap.State == sequencer.Stopped:
			fmt.Fprintf(rl.Stdout(), "stopped: %v\n", snap.Err)
		case snap.State == sequencer.PracticePaused && lastState != sequencer.PracticePaused:
			fmt.Fprintln(rl.Stdout(), "practice pause: resume to go on")
		case snap.State == sequencer.Playing && snap.Index != last:
			if c, ok := snap.Current(); ok {
				fmt.Fprintf(rl.Stdout(), "%s  %s\n", c.Symbol, c.Roman)
			}
			last = snap.Index
		}
		if snap.State == sequencer.Stopped {
			last = -1
		}
		lastState = snap.State
	})
}
