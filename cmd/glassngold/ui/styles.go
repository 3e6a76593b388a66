// Package ui is the interactive terminal front end: a file picker feeding
// the appraisal pipeline and a scrollable portfolio.
package ui

import (
	"glassngold/internal/render"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles derived from a render.Theme.
type Styles struct {
	Theme   render.Theme
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Spinner lipgloss.Style
	Overlay lipgloss.Style
	Status  lipgloss.Style
	Online  lipgloss.Style
	Key     lipgloss.Style
}

// NewStyles builds Styles for theme.
func NewStyles(theme render.Theme) Styles {
	return Styles{
		Theme:   theme,
		Error:   lipgloss.NewStyle().Foreground(theme.Error).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(theme.Error).PaddingLeft(1),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Accent:  lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		Spinner: lipgloss.NewStyle().Foreground(theme.Accent),
		Overlay: lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(theme.Accent).Padding(1, 3).Align(lipgloss.Center),
		Status:  lipgloss.NewStyle().Foreground(theme.Muted).Border(lipgloss.RoundedBorder()).BorderForeground(theme.Accent).Padding(0, 2),
		Online:  lipgloss.NewStyle().Foreground(render.Online),
		Key:     lipgloss.NewStyle().Foreground(theme.Accent),
	}
}
