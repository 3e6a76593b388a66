package ui

import (
	"context"
	"fmt"
	"strings"

	"glassngold/internal/encoder"
	"glassngold/internal/logging"
	"glassngold/internal/pipeline"
	"glassngold/internal/portfolio"
	"glassngold/internal/render"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// ImageExtensions are the files the picker lets the user choose.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif", ".heic", ".heif", ".bmp"}

type viewMode int

const (
	portfolioView viewMode = iota
	pickerView
)

// appraisalDoneMsg reports the end of one Submit.
type appraisalDoneMsg struct {
	item portfolio.HistoryItem
	err  error
}

// Model is the bubbletea model.
type Model struct {
	ctx      context.Context
	pipeline *pipeline.Pipeline
	styles   Styles
	renderer *render.Renderer
	startDir string

	mode     viewMode
	picker   filepicker.Model
	spinner  spinner.Model
	viewport viewport.Model

	loading bool
	errMsg  string
	width   int
	height  int
}

// NewModel creates the TUI over p. startDir is where the picker opens.
func NewModel(ctx context.Context, p *pipeline.Pipeline, theme render.Theme, width int, startDir string) (Model, error) {
	r, err := render.New(theme, width)
	if err != nil {
		return Model{}, err
	}
	styles := NewStyles(theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	m := Model{
		ctx:      ctx,
		pipeline: p,
		styles:   styles,
		renderer: r,
		startDir: startDir,
		spinner:  sp,
		viewport: viewport.New(width, 20),
		width:    width,
		height:   24,
	}
	m.picker = m.newPicker()
	m.refresh()
	return m, nil
}

func (m Model) newPicker() filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = ImageExtensions
	fp.CurrentDirectory = m.startDir
	fp.Height = m.pickerHeight()
	return fp
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if r, err := render.New(m.styles.Theme, msg.Width); err == nil {
			m.renderer = r
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = m.bodyHeight()
		m.picker.Height = m.pickerHeight()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case appraisalDoneMsg:
		m.loading = false
		m.errMsg = m.pipeline.State().Error
		if msg.err == nil {
			logging.Get(logging.CategoryUI).Info("appraisal shown", zap.String("id", msg.item.ID))
		}
		m.refresh()
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.mode == pickerView {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.mode == pickerView {
		if msg.String() == "esc" {
			m.mode = portfolioView
			return m, nil
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
			m.mode = portfolioView
			return m.submit(path)
		}
		if didSelect, path := m.picker.DidSelectDisabledFile(msg); didSelect {
			return m.submit(path)
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "n", "u", "enter":
		if m.loading {
			return m, nil
		}
		m.mode = pickerView
		m.picker = m.newPicker()
		return m, m.picker.Init()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// submit validates synchronously so a non-image never shows the spinner,
// then runs the pipeline in a command.
func (m Model) submit(path string) (tea.Model, tea.Cmd) {
	upload := encoder.FromFile(path)
	if err := encoder.Validate(upload); err != nil {
		// Submit records the user-facing message without touching the network.
		_, _ = m.pipeline.Submit(m.ctx, upload)
		m.errMsg = m.pipeline.State().Error
		return m, nil
	}

	m.loading = true
	m.errMsg = ""
	ctx, p := m.ctx, m.pipeline
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		item, err := p.Submit(ctx, upload)
		return appraisalDoneMsg{item: item, err: err}
	})
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderer.Portfolio(m.pipeline.State().Items))
}

func (m Model) bodyHeight() int {
	// header(2) + blank + error(1) + status bar(3) + help(1)
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) pickerHeight() int {
	h := m.bodyHeight() - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderer.Header())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(m.styles.Error.Render(m.errMsg))
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.loadingView())
	case m.mode == pickerView:
		b.WriteString(m.styles.Accent.Render(render.UploadHeading))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(m.picker.CurrentDirectory))
		b.WriteString("\n")
		b.WriteString(m.picker.View())
	default:
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

func (m Model) loadingView() string {
	box := m.styles.Overlay.Render(
		m.spinner.View() + " " + m.styles.Accent.Render(render.LoadingHeading) + "\n\n" +
			m.styles.Muted.Render(render.LoadingBody))
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

func (m Model) statusBar() string {
	agent := m.styles.Online.Render("●") + " " + render.AgentStatus
	var help string
	switch {
	case m.loading:
		help = "appraising..."
	case m.mode == pickerView:
		help = fmt.Sprintf("%s select  %s back", m.styles.Key.Render("enter"), m.styles.Key.Render("esc"))
	default:
		help = fmt.Sprintf("%s %s  %s scroll  %s quit",
			m.styles.Key.Render("n"), strings.ToLower(render.NewDeal),
			m.styles.Key.Render("↑/↓"), m.styles.Key.Render("q"))
	}
	return m.styles.Status.Render(agent) + "  " + help
}

// Loading reports whether an appraisal is in flight.
func (m Model) Loading() bool { return m.loading }

// ErrorMessage returns the message currently shown to the user.
func (m Model) ErrorMessage() string { return m.errMsg }
