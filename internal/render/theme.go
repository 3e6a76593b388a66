package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	Gold      = lipgloss.Color("#EAB308")
	GoldLight = lipgloss.Color("#FEF9C3")
	Ink       = lipgloss.Color("#050505")
	Paper     = lipgloss.Color("#F0F0F0")
	Zinc400   = lipgloss.Color("#A1A1AA")
	Zinc600   = lipgloss.Color("#52525B")
	Danger    = lipgloss.Color("#FCA5A5")
	Online    = lipgloss.Color("#22C55E")
)

// Theme holds colors and the glamour style for one terminal mode.
type Theme struct {
	Name       string
	Accent     lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Subtle     lipgloss.Color
	Error      lipgloss.Color
	Badge      lipgloss.Color // badge text on the accent background
	Glamour    string         // glamour standard style name
}

// DarkTheme is the default, matching the gold-on-black web page.
func DarkTheme() Theme {
	return Theme{
		Name:       "dark",
		Accent:     Gold,
		Foreground: Paper,
		Muted:      Zinc400,
		Subtle:     Zinc600,
		Error:      Danger,
		Badge:      Ink,
		Glamour:    "dark",
	}
}

// LightTheme is for light terminals.
func LightTheme() Theme {
	return Theme{
		Name:       "light",
		Accent:     lipgloss.Color("#A16207"),
		Foreground: Ink,
		Muted:      Zinc600,
		Subtle:     Zinc400,
		Error:      lipgloss.Color("#B91C1C"),
		Badge:      GoldLight,
		Glamour:    "light",
	}
}

// PlainTheme renders without styling; used for pipes and tests.
func PlainTheme() Theme {
	t := DarkTheme()
	t.Name = "plain"
	t.Glamour = "notty"
	return t
}

// ThemeByName maps a config value to a Theme. Unknown names get DarkTheme.
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return LightTheme()
	case "plain", "notty", "none":
		return PlainTheme()
	default:
		return DarkTheme()
	}
}
