package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chordloop/chord"
	"chordloop/theme"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8, symbol rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(symbol))
}

// RenderLoop draws the loop slots eight to a row, the way the Launchpad
// grid shows them.
func RenderLoop(th *theme.Theme, loop []chord.Chord, slot int, running bool) string {
	var lines []string
	var line strings.Builder
	for i, c := range loop {
		if i > 0 && i%8 == 0 {
			lines = append(lines, line.String())
			line.Reset()
		} else if i > 0 {
			line.WriteString(" ")
		}

		switch {
		case running && i == slot:
			line.WriteString(RenderPad(th.RGB(theme.RoleSuccess), th.Symbols.SlotCurrent))
		case c.IsZero():
			line.WriteString(RenderPad(th.RGB(theme.RoleMuted), th.Symbols.SlotEmpty))
		default:
			line.WriteString(RenderPad(th.CategoryRGB(c.Category), th.Symbols.SlotFilled))
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderBeats draws one symbol per beat, marking the beat that just clicked
func RenderBeats(th *theme.Theme, beat, beatsPerBar int, active bool) string {
	parts := make([]string, beatsPerBar)
	for b := range parts {
		symbol, color := th.Symbols.BeatOff, th.RGB(theme.RoleMuted)
		if active && b == beat {
			symbol, color = th.Symbols.BeatOn, th.RGB(theme.RoleAccent)
			if b == 0 {
				symbol, color = th.Symbols.BeatAccent, th.RGB(theme.RoleSuccess)
			}
		}
		parts[b] = RenderPad(color, symbol)
	}
	return strings.Join(parts, " ")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color, '■'), name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
