// Package render draws portfolio items for the terminal with lipgloss and
// glamour.
package render

import (
	"fmt"
	"strings"
	"time"

	"glassngold/internal/portfolio"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const minWidth = 24

// Renderer renders cards at a fixed width.
type Renderer struct {
	theme Theme
	width int
	md    *glamour.TermRenderer

	frame lipgloss.Style
	badge lipgloss.Style
	title lipgloss.Style
	date  lipgloss.Style
	rule  lipgloss.Style
}

// New creates a Renderer. Widths below a usable minimum are raised.
func New(theme Theme, width int) (*Renderer, error) {
	if width < minWidth {
		width = minWidth
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStylePath(theme.Glamour),
		glamour.WithWordWrap(width-6),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return &Renderer{
		theme: theme,
		width: width,
		md:    md,
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1).
			Width(width - 2),
		badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(theme.Badge).
			Bold(true).
			Padding(0, 1),
		title: lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		date:  lipgloss.NewStyle().Foreground(theme.Subtle),
		rule:  lipgloss.NewStyle().Foreground(theme.Subtle),
	}, nil
}

// Width returns the render width.
func (r *Renderer) Width() int { return r.width }

// Theme returns the active theme.
func (r *Renderer) Theme() Theme { return r.theme }

// Card renders one item: price badge, title, date, then the markdown body.
func (r *Renderer) Card(item portfolio.HistoryItem) string {
	res := item.Result
	date := r.date.Render(strings.ToUpper(FormatDate(item.Timestamp)))

	var b strings.Builder
	b.WriteString(r.badge.Render(strings.ToUpper(res.RentPrice)))
	b.WriteString("\n\n")
	b.WriteString(r.title.Render(res.Title))
	b.WriteString("\n")
	b.WriteString(date)
	b.WriteString("\n")
	b.WriteString(r.markdown(cardMarkdown(item)))

	return r.frame.Render(b.String())
}

// Portfolio renders the heading followed by every card, newest first.
func (r *Renderer) Portfolio(items []portfolio.HistoryItem) string {
	var b strings.Builder
	b.WriteString(r.Heading(PortfolioHeading))
	for _, it := range items {
		b.WriteString("\n")
		b.WriteString(r.Card(it))
	}
	return b.String()
}

// Heading renders an uppercase section title between rules.
func (r *Renderer) Heading(text string) string {
	label := " " + strings.ToUpper(text) + " "
	side := (r.width - lipgloss.Width(label)) / 2
	if side < 1 {
		return r.rule.Render(label)
	}
	line := strings.Repeat("─", side)
	return r.rule.Render(line + label + line)
}

// Header renders the brand banner.
func (r *Renderer) Header() string {
	brand := lipgloss.NewStyle().Bold(true).Foreground(r.theme.Foreground).Render(Brand)
	tag := lipgloss.NewStyle().Foreground(r.theme.Subtle).Render(strings.ToUpper(Tagline))
	return lipgloss.PlaceHorizontal(r.width, lipgloss.Center, brand) + "\n" +
		lipgloss.NewStyle().Width(r.width).Align(lipgloss.Center).Render(tag)
}

func (r *Renderer) markdown(src string) string {
	out, err := r.md.Render(src)
	if err != nil {
		return src
	}
	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

func cardMarkdown(item portfolio.HistoryItem) string {
	res := item.Result
	var b strings.Builder
	fmt.Fprintf(&b, "*\"%s\"*\n\n", escapeMarkdown(res.ListingDescription))
	for _, a := range res.Amenities {
		fmt.Fprintf(&b, "- %s\n", escapeMarkdown(a))
	}
	if len(res.Amenities) > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "> “%s”\n", escapeMarkdown(res.BroQuote))
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"<", `\<`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(strings.TrimSpace(s))
}

// FormatDate formats a Unix-millisecond timestamp for display.
func FormatDate(ms int64) string {
	return time.UnixMilli(ms).Local().Format(DateLayout)
}
