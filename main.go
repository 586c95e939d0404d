package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"chordloop/audio"
	"chordloop/config"
	"chordloop/debug"
	"chordloop/midi"
	"chordloop/sequencer"
	"chordloop/source"
	"chordloop/theme"
	"chordloop/tui"
)

func main() {
	var (
		debugLog  = flag.Bool("debug", false, "write a debug log to "+debug.DefaultPath())
		bpm       = flag.Int("bpm", 0, "tempo (40-200)")
		sourceURL = flag.String("source", "", "chord service URL; the built-in generator when empty")
		click     = flag.String("click", "", "click output: midi, audio or none")
		port      = flag.String("port", "", "MIDI output port for the click")
		noPads    = flag.Bool("no-launchpad", false, "ignore a connected Launchpad")
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
	if *bpm > 0 {
		cfg.Playback.BPM = *bpm
	}
	if *sourceURL != "" {
		cfg.Source.Kind = config.SourceHTTP
		cfg.Source.URL = *sourceURL
	}
	if *click != "" {
		cfg.Click.Output = config.ClickOutput(*click)
	}
	if *port != "" {
		cfg.Click.PortName = *port
	}
	cfg.Normalize()

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		fmt.Fprintf(os.Stderr, "palette: %v\n", err)
	}
	th := theme.New(palette)

	ports, err := midi.Scan(midi.ScanTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\nFix: sudo killall coreaudiod midiserver\n", err)
	}
	defer midi.CloseDriver()

	cues := openClick(cfg.Click, ports)

	var surface *midi.Surface
	var surfaceName string
	if !*noPads {
		if in, out, ok := ports.FindLaunchpad(); ok {
			lp, err := midi.OpenLaunchpad(in, out)
			if err != nil {
				fmt.Fprintf(os.Stderr, "launchpad: %v\n", err)
			} else {
				defer lp.Close()
				surface = midi.NewSurface(lp, th)
				surfaceName = lp.Name()
			}
		}
	}

	updates := tui.NewUpdates()
	render := sequencer.RenderFunc(func(s sequencer.Snapshot) {
		updates.Render(s)
		if surface != nil {
			surface.Render(s)
		}
	})

	sched := sequencer.New(sequencer.Options{
		Source:   source.FromConfig(cfg.Source),
		Cues:     cues,
		Renderer: render,
		Playback: cfg.Playback,
		Params:   cfg.Source.Params(0, 0),
	})
	defer sched.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := tui.NewModel(ctx, sched, updates, cfg, th)
	m.Surface = surfaceName
	p := tea.NewProgram(m, tea.WithAltScreen())

	if surface != nil {
		go surface.Run(ctx, func(c midi.Command) {
			p.Send(tui.CommandMsg(c))
		})
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// openClick picks the cue emitter. A click that cannot open is reported
// and replaced by silence.
func openClick(cfg config.ClickConfig, ports midi.Ports) sequencer.CueEmitter {
	switch cfg.Output {
	case config.ClickMIDI:
		send, name, err := ports.OpenOut(cfg.PortName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "click: %v (no click)\n", err)
			return nil
		}
		debug.Log("main", "click on %s", name)
		return midi.NewClick(send, cfg)

	case config.ClickAudio:
		c, err := audio.NewClick()
		if err != nil {
			fmt.Fprintf(os.Stderr, "click: %v (no click)\n", err)
			return nil
		}
		return c
	}
	return nil
}
