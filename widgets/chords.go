package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chordloop/chord"
	"chordloop/theme"
)

const cardWidth = 10

// RenderChordCard draws one chord: symbol on top, roman numeral below. The
// current chord gets a heavier border.
func RenderChordCard(th *theme.Theme, c chord.Chord, current bool) string {
	border := lipgloss.RoundedBorder()
	borderColor := th.Muted()
	if current {
		border = lipgloss.ThickBorder()
		borderColor = th.Category(c.Category)
	}

	symbol := c.Symbol
	if symbol == "" {
		symbol = string(th.Symbols.SlotEmpty)
	}
	if c.Mutated {
		symbol += string(th.Symbols.Mutated)
	}

	top := lipgloss.NewStyle().Bold(current).Foreground(th.Category(c.Category)).Render(symbol)
	bottom := lipgloss.NewStyle().Foreground(th.Muted()).Render(c.Roman)

	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(borderColor).
		Width(cardWidth).
		Align(lipgloss.Center).
		Render(top + "\n" + bottom)
}

// RenderLookahead lays out the current chord and what follows it side by side
func RenderLookahead(th *theme.Theme, chords []chord.Chord) string {
	if len(chords) == 0 {
		return ""
	}
	cards := make([]string, len(chords))
	for i, c := range chords {
		cards[i] = RenderChordCard(th, c, i == 0)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, cards...)
}

// RenderHistory lists the chords already played, oldest first
func RenderHistory(th *theme.Theme, chords []chord.Chord) string {
	if len(chords) == 0 {
		return ""
	}
	parts := make([]string, len(chords))
	for i, c := range chords {
		parts[i] = lipgloss.NewStyle().Foreground(th.Muted()).Render(c.Symbol)
	}
	return strings.Join(parts, " → ")
}

// RenderPattern shows chords per bar, with a hold mark for bars that keep
// the previous chord.
func RenderPattern(th *theme.Theme, entries []int, bar int) string {
	parts := make([]string, len(entries))
	for i, n := range entries {
		s := string(th.Symbols.Hold)
		if n > 0 {
			s = strings.Repeat(string(th.Symbols.SlotFilled), n)
		}
		style := lipgloss.NewStyle().Foreground(th.Muted())
		if i == bar {
			style = style.Foreground(th.Accent())
		}
		parts[i] = style.Render(s)
	}
	return strings.Join(parts, "│")
}
