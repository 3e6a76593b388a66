package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"glassngold/internal/appraisal"
	"glassngold/internal/encoder"
	"glassngold/internal/pipeline"
	"glassngold/internal/portfolio"
	"glassngold/internal/render"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAppraiser struct {
	calls atomic.Int32
	err   error
}

func (s *stubAppraiser) Appraise(ctx context.Context, image encoder.DataURI) (appraisal.Result, error) {
	s.calls.Add(1)
	if s.err != nil {
		return appraisal.Result{}, s.err
	}
	return appraisal.Result{
		Title:              "THE TERMINAL LOFT",
		ListingDescription: "d",
		RentPrice:          "$1",
		Amenities:          []string{"Air"},
		BroQuote:           "q",
	}, nil
}

func newModel(t *testing.T, a appraisal.Appraiser) (Model, *pipeline.Pipeline) {
	t.Helper()
	p := pipeline.New(portfolio.NewSeeded(time.Now()), a)
	m, err := NewModel(context.Background(), p, render.PlainTheme(), 80, t.TempDir())
	require.NoError(t, err)
	return m, p
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialViewShowsSample(t *testing.T) {
	m, _ := newModel(t, &stubAppraiser{})
	view := m.View()
	assert.Contains(t, view, "THE ARCHED ATRIUM VOID")
	assert.Contains(t, view, render.AgentStatus)
	assert.False(t, m.Loading())
}

func TestSubmitNonImageShowsMessage(t *testing.T) {
	a := &stubAppraiser{}
	m, p := newModel(t, a)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0644))

	next, cmd := m.submit(path)
	mm := next.(Model)
	assert.Nil(t, cmd)
	assert.False(t, mm.Loading(), "spinner never shown")
	assert.Equal(t, pipeline.MsgInvalidFile, mm.ErrorMessage())
	assert.Zero(t, a.calls.Load())
	assert.Equal(t, 1, p.Store().Len())
	assert.Contains(t, mm.View(), pipeline.MsgInvalidFile)
}

func TestSubmitImageRoundTrip(t *testing.T) {
	a := &stubAppraiser{}
	m, p := newModel(t, a)

	path := filepath.Join(t.TempDir(), "loft.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0644))

	next, cmd := m.submit(path)
	mm := next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, mm.Loading())
	assert.Contains(t, mm.View(), render.LoadingHeading)

	// "n" is ignored while loading
	after, _ := mm.Update(key("n"))
	assert.Equal(t, portfolioView, after.(Model).mode)

	// Run the submit command directly; the spinner tick is skipped.
	done := findDone(t, cmd)
	final, _ := mm.Update(done)
	fm := final.(Model)
	assert.False(t, fm.Loading())
	assert.Empty(t, fm.ErrorMessage())
	assert.Equal(t, 2, p.Store().Len())
	assert.Contains(t, fm.View(), "THE TERMINAL LOFT")
}

func TestSubmitFailureShowsMessage(t *testing.T) {
	a := &stubAppraiser{err: &appraisal.AppraisalError{Kind: appraisal.KindTransport, Err: errors.New("offline")}}
	m, p := newModel(t, a)

	path := filepath.Join(t.TempDir(), "loft.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8}, 0644))

	next, cmd := m.submit(path)
	final, _ := next.(Model).Update(findDone(t, cmd))
	fm := final.(Model)
	assert.False(t, fm.Loading())
	assert.Equal(t, pipeline.MsgFailure, fm.ErrorMessage())
	assert.Equal(t, 1, p.Store().Len())
}

func TestPickerToggle(t *testing.T) {
	m, _ := newModel(t, &stubAppraiser{})

	next, cmd := m.Update(key("n"))
	mm := next.(Model)
	assert.Equal(t, pickerView, mm.mode)
	assert.NotNil(t, cmd)
	assert.Contains(t, mm.View(), render.UploadHeading)

	back, _ := mm.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, portfolioView, back.(Model).mode)
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, &stubAppraiser{})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestWindowResize(t *testing.T) {
	m, _ := newModel(t, &stubAppraiser{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 40})
	mm := next.(Model)
	assert.Equal(t, 60, mm.renderer.Width())
	assert.Equal(t, 32, mm.viewport.Height)
	assert.Equal(t, 30, mm.picker.Height)
}

// findDone runs the batched command and returns the appraisalDoneMsg.
func findDone(t *testing.T, cmd tea.Cmd) appraisalDoneMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok, "expected a batch, got %T", msg)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if done, ok := c().(appraisalDoneMsg); ok {
			return done
		}
	}
	t.Fatal("no appraisalDoneMsg in batch")
	return appraisalDoneMsg{}
}
