package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"glassngold/internal/appraisal"
	"glassngold/internal/encoder"
	"glassngold/internal/pipeline"
	"glassngold/internal/portfolio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubAppraiser struct {
	err error
}

func (s stubAppraiser) Appraise(ctx context.Context, image encoder.DataURI) (appraisal.Result, error) {
	if s.err != nil {
		return appraisal.Result{}, s.err
	}
	return appraisal.Result{
		Title:              "THE DROPPED PENTHOUSE",
		ListingDescription: "d",
		RentPrice:          "$1",
		Amenities:          []string{},
		BroQuote:           "q",
	}, nil
}

// drop writes a hidden temp file and renames it into place so the watcher
// sees a single create event for a complete file.
func drop(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	tmp := filepath.Join(dir, "."+name+".incoming")
	require.NoError(t, os.WriteFile(tmp, data, 0644))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, name)))
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func startWatcher(t *testing.T, a appraisal.Appraiser) (*Watcher, *pipeline.Pipeline, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "drop")
	p := pipeline.New(portfolio.NewSeeded(time.Now()), a)
	w := New(dir, p, 20*time.Millisecond)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w, p, dir
}

func TestWatcherSubmitsDroppedImage(t *testing.T) {
	w, p, dir := startWatcher(t, stubAppraiser{})
	drop(t, dir, "loft.png", pngBytes)

	require.Eventually(t, func() bool { return p.Store().Len() == 2 }, 3*time.Second, 10*time.Millisecond)

	front, _ := p.Store().Front()
	assert.Equal(t, "THE DROPPED PENTHOUSE", front.Result.Title)
	assert.Equal(t, "image/png", encoder.DataURI(front.ImageURL).MediaType())

	st := w.Stats()
	assert.Equal(t, 1, st.Submitted)
	assert.Zero(t, st.Rejected)
}

func TestWatcherRejectsNonImage(t *testing.T) {
	w, p, dir := startWatcher(t, stubAppraiser{})
	drop(t, dir, "notes.txt", []byte("hello"))

	require.Eventually(t, func() bool { return w.Stats().Rejected == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, p.Store().Len())
	assert.Equal(t, pipeline.MsgInvalidFile, p.State().Error)
}

func TestWatcherCountsFailures(t *testing.T) {
	w, p, dir := startWatcher(t, stubAppraiser{err: &appraisal.AppraisalError{Kind: appraisal.KindTransport, Err: errors.New("offline")}})
	drop(t, dir, "loft.jpg", []byte{0xFF, 0xD8})

	require.Eventually(t, func() bool { return w.Stats().Failed == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, p.Store().Len())
}

func TestWatcherIgnoresHiddenAndPartial(t *testing.T) {
	w, _, dir := startWatcher(t, stubAppraiser{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loft.png.part"), pngBytes, 0644))

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, w.Stats().Detected)
}

func TestStartStopIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "drop")
	w := New(dir, pipeline.New(nil, stubAppraiser{}), 0)
	assert.Equal(t, 500*time.Millisecond, w.debounceDur)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := New(filepath.Join(t.TempDir(), "drop"), pipeline.New(nil, stubAppraiser{}), 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.running
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestIgnored(t *testing.T) {
	assert.True(t, ignored("/x/.hidden.png"))
	assert.True(t, ignored("/x/a.png~"))
	assert.True(t, ignored("/x/a.crdownload"))
	assert.False(t, ignored("/x/a.png"))
	assert.False(t, ignored("/x/notes.txt"))
}
