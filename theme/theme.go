package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	BeatOn     rune // ● beat that just clicked
	BeatOff    rune // ○ other beats in the bar
	BeatAccent rune // ◉ downbeat when it clicks

	SlotEmpty   rune // · loop slot not yet filled
	SlotFilled  rune // ■ loop slot with a chord
	SlotCurrent rune // ▶ slot playing now

	Mutated rune // ✱ chord the generator bent away from the register
	Hold    rune // ─ bar that holds the previous chord
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Plasma()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			BeatOn:     '●',
			BeatOff:    '○',
			BeatAccent: '◉',

			SlotEmpty:   '·',
			SlotFilled:  '■',
			SlotCurrent: '▶',

			Mutated: '✱',
			Hold:    '─',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// categoryRoles colours chords by quality category
var categoryRoles = map[string]float64{
	"major":      RoleSuccess,
	"dominant":   RoleWarning,
	"altered":    RoleActive,
	"augmented":  RoleCursor,
	"sus":        RoleAccent,
	"minor":      RoleFG,
	"diminished": RoleMuted,
}

// CategoryRole returns the palette position for a chord category. Unknown
// categories get the foreground colour.
func CategoryRole(category string) float64 {
	if r, ok := categoryRoles[category]; ok {
		return r
	}
	return RoleFG
}

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Category returns the lipgloss colour for a chord category
func (t *Theme) Category(category string) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(CategoryRole(category)))
}

// CategoryRGB returns the raw colour for a chord category (for Launchpad)
func (t *Theme) CategoryRGB(category string) RGB {
	return t.Palette.Lookup(CategoryRole(category))
}

// RGB returns raw RGB for any normalized value (for Launchpad)
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
