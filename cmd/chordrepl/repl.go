package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/hako/durafmt"

	"chordloop/chord"
	"chordloop/config"
	"chordloop/rhythm"
	"chordloop/sequencer"
	"chordloop/theory"
)

type env struct {
	ctx     context.Context
	sched   *sequencer.Scheduler
	src     chord.Source
	cfg     *config.Config
	started time.Time
}

// registerReporter is a source that can show its Turing register
type registerReporter interface {
	RegisterState() (uint16, bool)
}

func (e *env) eval(input string) (string, error) {
	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(args) < arity {
				return "", fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(args))
			}
		} else if len(args) != cmd.arity {
			return "", fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(args))
		}
		result, err := cmd.run(e, args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return "", fmt.Errorf("unknown command: %s", name)
}

func repl(env *env, rl *readline.Instance) error {
	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if strings.TrimSpace(line) == "quit" {
			return nil
		}
		if result, err := env.eval(line); err != nil {
			fmt.Fprintln(rl.Stdout(), err)
		} else if result != "" {
			fmt.Fprintln(rl.Stdout(), result)
		}
	}
}

type command struct {
	name  string
	run   func(*env, []string) (string, error)
	arity int // -n means len(args) must be >= n
	help  string
}

var commands []command

func init() {
	commands = []command{
		{"start", startCommand, 0, "start a new session"},
		{"stop", stopCommand, 0, "stop playback"},
		{"resume", resumeCommand, 0, "continue after a practice pause"},
		{"status", statusCommand, 0, "transport state and position"},
		{"chords", chordsCommand, 0, "current chord, lookahead and loop"},
		{"set", setCommand, -2, "set bpm|beats|swing|loop|bars|per-bar|rhythm|practice|countin <value>"},
		{"source", sourceCommand, 2, "source key|scale|voicing|mode|mutation|seed <value>"},
		{"scales", scalesCommand, 0, "list scales"},
		{"help", helpCommand, 0, "this list"},
	}
}

func startCommand(env *env, args []string) (string, error) {
	if err := env.sched.Start(env.ctx); err != nil {
		return "", err
	}
	env.started = time.Now()
	return "", nil
}

func stopCommand(env *env, args []string) (string, error) {
	env.sched.Stop()
	return "", nil
}

func resumeCommand(env *env, args []string) (string, error) {
	return "", env.sched.Resume()
}

func statusCommand(env *env, args []string) (string, error) {
	snap := env.sched.Snapshot()
	pb := snap.Playback
	parts := []string{
		snap.State.String(),
		fmt.Sprintf("%d bpm", pb.BPM),
		fmt.Sprintf("%d/4", pb.BeatsPerBar),
		fmt.Sprintf("swing %d", pb.Swing),
		fmt.Sprintf("rhythm %s", describeRhythm(snap.Pattern, pb.BeatsPerBar)),
		fmt.Sprintf("%s over %s", english.Plural(snap.Pattern.Chords(), "chord", ""), english.Plural(len(snap.Pattern), "bar", "")),
		fmt.Sprintf("%s chord", humanize.Ordinal(snap.Index+1)),
		fmt.Sprintf("bar %d beat %d", snap.Bar+1, snap.Beat+1),
	}
	if pb.Practice {
		parts = append(parts, fmt.Sprintf("practice %d/%d", snap.Cycle, pb.LoopLength))
	}
	if r, ok := env.src.(registerReporter); ok {
		if state, ok := r.RegisterState(); ok {
			parts = append(parts, fmt.Sprintf("register %016b", state))
		}
	}
	if !env.started.IsZero() && snap.State != sequencer.Stopped {
		parts = append(parts, durafmt.Parse(time.Since(env.started).Truncate(time.Second)).LimitFirstN(2).String())
	}
	if snap.Err != nil {
		parts = append(parts, "error: "+snap.Err.Error())
	}
	return strings.Join(parts, ", "), nil
}

func chordsCommand(env *env, args []string) (string, error) {
	snap := env.sched.Snapshot()
	if len(snap.Chords) == 0 {
		return "no chords yet", nil
	}
	var now, loop []string
	for _, c := range snap.Chords {
		now = append(now, c.Symbol)
	}
	for i, c := range snap.Loop {
		s := c.Symbol
		if s == "" {
			s = "·"
		}
		if i == snap.LoopSlot {
			s = "[" + s + "]"
		}
		loop = append(loop, s)
	}
	return fmt.Sprintf("now: %s\nloop: %s", strings.Join(now, " "), strings.Join(loop, " ")), nil
}

func setCommand(env *env, args []string) (string, error) {
	prop, value := args[0], strings.Join(args[1:], " ")
	if prop == "rhythm" {
		if _, err := rhythm.Parse(value); err != nil {
			return "", err
		}
		env.sched.Configure(func(pb *config.Playback) {
			pb.Rhythm = config.Rhythm{Mode: config.RhythmScript, BarsPerChord: 1, ChordsPerBar: 1, Script: value}
		})
		return "", nil
	}

	switch prop {
	case "practice", "countin":
		on, err := parseBool(value)
		if err != nil {
			return "", err
		}
		env.sched.Configure(func(pb *config.Playback) {
			if prop == "practice" {
				pb.Practice = on
			} else {
				pb.CountIn = on
			}
		})
		return "", nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return "", fmt.Errorf("%s: expected a number, got %q", prop, value)
	}
	var apply func(pb *config.Playback)
	switch prop {
	case "bpm":
		apply = func(pb *config.Playback) { pb.BPM = n }
	case "beats":
		apply = func(pb *config.Playback) { pb.BeatsPerBar = n }
	case "swing":
		apply = func(pb *config.Playback) { pb.Swing = n }
	case "loop":
		apply = func(pb *config.Playback) { pb.LoopLength = n }
	case "bars":
		apply = func(pb *config.Playback) {
			pb.Rhythm = config.Rhythm{Mode: config.RhythmSimple, BarsPerChord: n, ChordsPerBar: 1}
		}
	case "per-bar":
		apply = func(pb *config.Playback) {
			pb.Rhythm = config.Rhythm{Mode: config.RhythmSimple, BarsPerChord: 1, ChordsPerBar: n}
		}
	default:
		return "", fmt.Errorf("unknown property: %s", prop)
	}
	env.sched.Configure(apply)
	return "", nil
}

func sourceCommand(env *env, args []string) (string, error) {
	src := &env.cfg.Source
	prop, value := args[0], args[1]
	switch prop {
	case "key":
		if _, err := theory.NoteIndex(value); err != nil {
			return "", err
		}
		src.Key = value
	case "scale":
		if _, err := theory.ScaleNotes("C", value); err != nil {
			return "", err
		}
		src.Scale = value
	case "voicing":
		src.Voicing = value
	case "mode":
		if value != "raw" && value != "smooth" {
			return "", fmt.Errorf("mode must be raw or smooth")
		}
		src.Mode = value
	case "mutation":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", err
		}
		src.Mutation = f
	case "seed":
		if value == "none" {
			src.Seed = nil
			break
		}
		n, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return "", err
		}
		seed := uint16(n)
		src.Seed = &seed
	default:
		return "", fmt.Errorf("unknown property: %s", prop)
	}
	src.Normalize()
	if err := env.sched.SetParams(env.ctx, src.Params(0, 0)); err != nil {
		return "", err
	}
	if prop == "seed" || env.sched.Snapshot().State == sequencer.Stopped {
		return "applies from the next start", nil
	}
	return "", nil
}

func scalesCommand(env *env, args []string) (string, error) {
	return strings.Join(theory.Scales(), " "), nil
}

func helpCommand(env *env, args []string) (string, error) {
	lines := make([]string, len(commands))
	for i, c := range commands {
		lines[i] = fmt.Sprintf("  %-8s %s", c.name, c.help)
	}
	return strings.Join(lines, "\n"), nil
}

// describeRhythm adds the chord lengths in beats: "1 0 2 (8, 2, 2 beats)"
func describeRhythm(p rhythm.Pattern, beatsPerBar int) string {
	durations, err := p.Durations(beatsPerBar)
	if err != nil {
		return p.String()
	}
	lengths := make([]string, len(durations))
	for i, d := range durations {
		lengths[i] = strconv.FormatFloat(d, 'f', -1, 64)
	}
	return fmt.Sprintf("%s (%s beats)", p, strings.Join(lengths, ", "))
}

func parseBool(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, errors.New("expected on or off")
}
