// Package watch submits images dropped into a directory, the terminal
// stand-in for drag and drop.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"glassngold/internal/encoder"
	"glassngold/internal/logging"
	"glassngold/internal/portfolio"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Submitter accepts one upload. *pipeline.Pipeline satisfies it.
type Submitter interface {
	Submit(ctx context.Context, u encoder.Upload) (portfolio.HistoryItem, error)
}

// Stats tracks watcher activity.
type Stats struct {
	Detected  int
	Submitted int
	Rejected  int // not an image
	Failed    int
	Errors    int // watcher errors
	LastPath  string
	LastEvent time.Time
}

// Watcher debounces create/write events in one directory and submits each
// settled file.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	submit      Submitter
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

// New creates a Watcher for dir. A non-positive debounce means 500ms.
func New(dir string, submit Submitter, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:         dir,
		submit:      submit,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
	}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Start creates the directory if needed and begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create drop dir %s: %w", w.dir, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	logging.Get(logging.CategoryWatch).Info("watching drop folder",
		zap.String("dir", w.dir),
		zap.Duration("debounce", w.debounceDur))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh, fw := w.stopCh, w.doneCh, w.watcher
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	if err := fw.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Warn("error closing watcher", zap.Error(err))
	}
	logging.Get(logging.CategoryWatch).Info("watcher stopped")
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// Stats returns a copy of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	log := logging.Get(logging.CategoryWatch)

	tick := w.debounceDur / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-debounceTicker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if ignored(event.Name) {
		return
	}
	logging.Get(logging.CategoryWatch).Debug("file event",
		zap.String("path", event.Name),
		zap.String("op", event.Op.String()))

	w.mu.Lock()
	if _, pending := w.debounceMap[event.Name]; !pending {
		w.stats.Detected++
	}
	w.debounceMap[event.Name] = time.Now()
	w.stats.LastPath = event.Name
	w.stats.LastEvent = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			ready = append(ready, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.submitFile(ctx, path)
	}
}

func (w *Watcher) submitFile(ctx context.Context, path string) {
	log := logging.Get(logging.CategoryWatch)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	item, err := w.submit.Submit(ctx, encoder.FromFile(path))
	var ve *encoder.ValidationError

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case err == nil:
		w.stats.Submitted++
		log.Info("dropped file appraised",
			zap.String("path", path),
			zap.String("id", item.ID),
			zap.String("title", item.Result.Title))
	case errors.As(err, &ve):
		w.stats.Rejected++
		log.Warn("dropped file is not an image", zap.String("path", path), zap.Error(err))
	default:
		w.stats.Failed++
		log.Warn("dropped file failed", zap.String("path", path), zap.Error(err))
	}
}

// ignored skips hidden files and common partial-download names.
func ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".tmp", ".part", ".crdownload", ".swp":
		return true
	}
	return false
}
