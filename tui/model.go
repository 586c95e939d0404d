package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"chordloop/config"
	"chordloop/debug"
	"chordloop/midi"
	"chordloop/sequencer"
	"chordloop/theme"
	"chordloop/widgets"
)

var shortUnits durafmt.Units

func init() {
	var err error
	shortUnits, err = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")
	if err != nil {
		panic(err)
	}
}

const tempoStep = 5

var swingSteps = []int{50, 58, 66, 75}

// Updates is a sequencer.Renderer that hands the latest snapshot to the UI.
// A snapshot the UI has not picked up yet is replaced, never queued.
type Updates struct {
	ch chan sequencer.Snapshot
}

func NewUpdates() *Updates {
	return &Updates{ch: make(chan sequencer.Snapshot, 1)}
}

func (u *Updates) Render(snap sequencer.Snapshot) {
	for {
		select {
		case u.ch <- snap:
			return
		default:
		}
		select {
		case <-u.ch:
		default:
		}
	}
}

type SnapshotMsg sequencer.Snapshot

// CommandMsg carries a pad press from the surface
type CommandMsg midi.Command

type startedMsg struct{ err error }

type configuredMsg struct{ err error }

func ListenForUpdates(u *Updates) tea.Cmd {
	return func() tea.Msg {
		return SnapshotMsg(<-u.ch)
	}
}

type Model struct {
	Sched   *sequencer.Scheduler
	Config  *config.Config
	Theme   *theme.Theme
	Surface string // name of the pad controller, if any

	ctx      context.Context
	updates  *Updates
	snap     sequencer.Snapshot
	started  time.Time
	status   string
	quitting bool
}

func NewModel(ctx context.Context, sched *sequencer.Scheduler, updates *Updates, cfg *config.Config, th *theme.Theme) Model {
	return Model{
		Sched:   sched,
		Config:  cfg,
		Theme:   th,
		ctx:     ctx,
		updates: updates,
		snap:    sched.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.updates)
}

func (m Model) start() tea.Cmd {
	sched, ctx := m.Sched, m.ctx
	return func() tea.Msg {
		return startedMsg{err: sched.Start(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case CommandMsg:
		return m.apply(midi.Command(msg))

	case SnapshotMsg:
		m.snap = sequencer.Snapshot(msg)
		if m.snap.Err != nil {
			m.status = m.snap.Err.Error()
		}
		return m, ListenForUpdates(m.updates)

	case configuredMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}

	case startedMsg:
		switch {
		case msg.err == nil:
			m.started = time.Now()
			m.status = ""
		case errors.Is(msg.err, sequencer.ErrStopped):
		default:
			m.status = msg.err.Error()
		}
	}
	return m, nil
}

var keyCommands = map[string]midi.Command{
	" ": {Action: midi.ActionToggle},
	"r": {Action: midi.ActionResume},
	"+": {Action: midi.ActionTempoUp},
	"=": {Action: midi.ActionTempoUp},
	"-": {Action: midi.ActionTempoDown},
	"_": {Action: midi.ActionTempoDown},
	"p": {Action: midi.ActionPractice},
	"c": {Action: midi.ActionCountIn},
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	if cmd, ok := keyCommands[key]; ok {
		return m.apply(cmd)
	}

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Sched.Stop()
		m.save()
		return m, tea.Quit

	case "[":
		return m.apply(midi.Command{Action: midi.ActionLoopLength, Value: m.Sched.Playback().LoopLength - 1})
	case "]":
		return m.apply(midi.Command{Action: midi.ActionLoopLength, Value: m.Sched.Playback().LoopLength + 1})

	case "1", "2", "3", "4":
		n := int(key[0] - '0')
		m.Sched.Configure(func(pb *config.Playback) {
			pb.Rhythm = config.Rhythm{Mode: config.RhythmSimple, BarsPerChord: 1, ChordsPerBar: n}
		})

	case "b":
		m.Sched.Configure(func(pb *config.Playback) {
			next := pb.Rhythm.BarsPerChord * 2
			if pb.Rhythm.Mode != config.RhythmSimple || next > 4 {
				next = 1
			}
			pb.Rhythm = config.Rhythm{Mode: config.RhythmSimple, BarsPerChord: next, ChordsPerBar: 1}
		})

	case "l":
		m.Sched.Configure(func(pb *config.Playback) { pb.BeatsPerBar-- })
	case "L":
		m.Sched.Configure(func(pb *config.Playback) { pb.BeatsPerBar++ })

	case "s":
		m.Sched.Configure(func(pb *config.Playback) { pb.Swing = nextSwing(pb.Swing) })

	case "m":
		if m.Config.Source.Mode == "smooth" {
			m.Config.Source.Mode = "raw"
		} else {
			m.Config.Source.Mode = "smooth"
		}
		m.status = fmt.Sprintf("%s mode", m.Config.Source.Mode)
		return m, m.setParams()
	}
	return m, nil
}

// setParams hands the source settings to the scheduler off the UI loop; an
// HTTP source makes a request.
func (m Model) setParams() tea.Cmd {
	sched, ctx, p := m.Sched, m.ctx, m.Config.Source.Params(0, 0)
	return func() tea.Msg {
		return configuredMsg{err: sched.SetParams(ctx, p)}
	}
}

// apply runs a transport command from the keyboard or the pad surface
func (m Model) apply(cmd midi.Command) (tea.Model, tea.Cmd) {
	switch cmd.Action {
	case midi.ActionToggle:
		if m.Sched.Snapshot().State != sequencer.Stopped {
			m.Sched.Stop()
			return m, nil
		}
		m.status = "starting…"
		return m, m.start()

	case midi.ActionResume:
		if err := m.Sched.Resume(); err != nil {
			m.status = err.Error()
		}

	case midi.ActionTempoUp:
		m.Sched.Configure(func(pb *config.Playback) { pb.BPM += tempoStep })
	case midi.ActionTempoDown:
		m.Sched.Configure(func(pb *config.Playback) { pb.BPM -= tempoStep })

	case midi.ActionPractice:
		m.Sched.Configure(func(pb *config.Playback) { pb.Practice = !pb.Practice })
	case midi.ActionCountIn:
		m.Sched.Configure(func(pb *config.Playback) { pb.CountIn = !pb.CountIn })

	case midi.ActionLoopLength:
		m.Sched.Configure(func(pb *config.Playback) { pb.LoopLength = cmd.Value })
	}
	return m, nil
}

func (m Model) save() {
	pb := m.Sched.Playback()
	m.Config.Playback = pb
	m.Config.UI.LastTempo = pb.BPM
	if err := m.Config.Save(); err != nil {
		debug.Error("config", err, "save on quit")
	}
}

func nextSwing(swing int) int {
	for _, s := range swingSteps {
		if s > swing {
			return s
		}
	}
	return swingSteps[0]
}

var keyHelp = []widgets.KeySection{
	{Title: "Transport", Keys: []widgets.KeyBinding{
		{Key: "space", Desc: "start / stop"},
		{Key: "r", Desc: "resume after practice pause"},
		{Key: "+ / -", Desc: "tempo"},
		{Key: "s", Desc: "swing"},
		{Key: "p / c", Desc: "practice / count-in"},
	}},
	{Title: "Loop", Keys: []widgets.KeyBinding{
		{Key: "[ / ]", Desc: "loop length"},
		{Key: "1-4", Desc: "chords per bar"},
		{Key: "b", Desc: "bars per chord"},
		{Key: "l / L", Desc: "beats per bar"},
		{Key: "m", Desc: "raw / smooth generator"},
		{Key: "q", Desc: "save and quit"},
	}},
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.snap
	pb := snap.Playback

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	stateStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())
	if snap.State == sequencer.Playing || snap.State == sequencer.CountingIn {
		stateStyle = stateStyle.Foreground(m.Theme.Success())
	}
	header := headerStyle.Render("chordloop  ") +
		stateStyle.Render(strings.ToUpper(snap.State.String())) +
		headerStyle.Render(fmt.Sprintf("  %3dbpm  %d/4  swing %d%s", pb.BPM, pb.BeatsPerBar, pb.Swing, m.surfaceTag()))

	running := snap.State != sequencer.Stopped
	beats := RenderBeatLine(m.Theme, snap)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(beats)
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderLookahead(m.Theme, snap.Chords))
	out.WriteString("\n")
	if h := widgets.RenderHistory(m.Theme, snap.History); h != "" {
		out.WriteString(dimStyle.Render("played: ") + h)
		out.WriteString("\n")
	}
	out.WriteString("\n")
	out.WriteString(widgets.RenderLoop(m.Theme, snap.Loop, snap.LoopSlot, running))
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(m.progress()))
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp)))

	if m.status != "" {
		out.WriteString("\n\n")
		out.WriteString(warnStyle.Render(m.status))
	}
	return out.String()
}

func (m Model) surfaceTag() string {
	if m.Surface == "" {
		return ""
	}
	return "  LP:" + m.Surface
}

// RenderBeatLine shows the count-in or the beats of the bar with the pattern
func RenderBeatLine(th *theme.Theme, snap sequencer.Snapshot) string {
	active := snap.State == sequencer.Playing || snap.State == sequencer.CountingIn
	beats := widgets.RenderBeats(th, snap.Beat, snap.BeatsPerBar, active)
	if snap.State == sequencer.CountingIn {
		return fmt.Sprintf("%s  count-in %d", beats, snap.CountingIn)
	}
	return fmt.Sprintf("%s  %s", beats, widgets.RenderPattern(th, snap.Pattern, snap.Bar))
}

// progress is the line under the loop: chord count, practice cycle and how
// long the session has run.
func (m Model) progress() string {
	snap := m.snap
	pb := snap.Playback
	parts := []string{
		fmt.Sprintf("%s chord", humanize.Ordinal(snap.Index+1)),
		fmt.Sprintf("loop of %d", pb.LoopLength),
	}
	if pb.Practice {
		parts = append(parts, fmt.Sprintf("practice %d/%d", snap.Cycle, pb.LoopLength))
	}
	if snap.State == sequencer.PracticePaused {
		parts = append(parts, "paused, r to resume")
	}
	if !m.started.IsZero() && snap.State != sequencer.Stopped {
		elapsed := time.Since(m.started).Truncate(time.Second)
		parts = append(parts, durafmt.Parse(elapsed).LimitFirstN(2).Format(shortUnits))
	}
	return strings.Join(parts, " · ")
}
