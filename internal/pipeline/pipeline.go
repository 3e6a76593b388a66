// Package pipeline owns the upload flow: validate, encode, appraise, commit.
//
// The Pipeline is the only writer of the portfolio store and of the
// loading/error flags. Renderers read State snapshots and may Subscribe to
// be told when they change.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"glassngold/internal/appraisal"
	"glassngold/internal/encoder"
	"glassngold/internal/logging"
	"glassngold/internal/portfolio"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User-facing messages.
const (
	MsgInvalidFile = "Please upload an image file (JPG/PNG/WebP)."
	MsgFailure     = "Bro, something went wrong. Maybe the Wi-Fi in the bunker is down? Try again, habibi."
)

// State is a read-only snapshot for renderers.
type State struct {
	Items   []portfolio.HistoryItem `json:"items"`
	Loading bool                    `json:"loading"`
	Error   string                  `json:"error,omitempty"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDGenerator overrides item ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// Pipeline orchestrates submissions against one store.
type Pipeline struct {
	store     *portfolio.Store
	appraiser appraisal.Appraiser
	now       func() time.Time
	newID     func() string

	mu       sync.Mutex
	inFlight int
	errMsg   string

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// New creates a Pipeline. A nil store is replaced by a freshly seeded one.
func New(store *portfolio.Store, a appraisal.Appraiser, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		appraiser: a,
		now:       time.Now,
		newID:     uuid.NewString,
		subs:      make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = portfolio.NewSeeded(p.now())
	}
	p.store.Subscribe(func([]portfolio.HistoryItem) { p.notify() })
	return p
}

// Store returns the underlying portfolio store.
func (p *Pipeline) Store() *portfolio.Store { return p.store }

// Submit runs one upload through the pipeline. On success the committed
// item is returned. On failure the store is unchanged, the user-facing
// message is set, and the typed error (*encoder.ValidationError,
// *encoder.IOError or *appraisal.AppraisalError) is returned.
func (p *Pipeline) Submit(ctx context.Context, u encoder.Upload) (portfolio.HistoryItem, error) {
	log := logging.Get(logging.CategoryPipeline)

	if err := encoder.Validate(u); err != nil {
		log.Info("upload rejected", zap.String("name", u.Name), zap.String("media_type", u.MediaType))
		p.setError(MsgInvalidFile)
		return portfolio.HistoryItem{}, err
	}

	p.begin()
	startTime := time.Now()
	item, err := p.run(ctx, u)
	if err != nil {
		log.Warn("appraisal failed",
			zap.String("name", u.Name),
			zap.String("kind", errorKind(err)),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(startTime)))
		p.finish(MsgFailure)
		return portfolio.HistoryItem{}, err
	}

	log.Info("appraisal committed",
		zap.String("id", item.ID),
		zap.String("title", item.Result.Title),
		zap.Duration("elapsed", time.Since(startTime)))
	p.finish("")
	return item, nil
}

func (p *Pipeline) run(ctx context.Context, u encoder.Upload) (portfolio.HistoryItem, error) {
	uri, err := encoder.Encode(ctx, u)
	if err != nil {
		return portfolio.HistoryItem{}, err
	}

	result, err := p.appraiser.Appraise(ctx, uri)
	if err != nil {
		return portfolio.HistoryItem{}, err
	}

	item := portfolio.HistoryItem{
		ID:        p.newID(),
		ImageURL:  uri.String(),
		Result:    result,
		Timestamp: p.now().UnixMilli(),
	}
	if err := p.store.Prepend(item); err != nil {
		return portfolio.HistoryItem{}, &appraisal.AppraisalError{Kind: appraisal.KindCommit, Err: err}
	}
	if committed, ok := p.store.Get(item.ID); ok {
		item = committed
	}
	return item, nil
}

// State returns a snapshot of items and flags.
func (p *Pipeline) State() State {
	p.mu.Lock()
	loading, msg := p.inFlight > 0, p.errMsg
	p.mu.Unlock()
	return State{Items: p.store.Items(), Loading: loading, Error: msg}
}

// Loading reports whether any submission is in flight.
func (p *Pipeline) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight > 0
}

// Subscribe registers fn to receive a snapshot on every state change:
// loading toggles, errors and store commits. The returned func unsubscribes.
func (p *Pipeline) Subscribe(fn func(State)) (cancel func()) {
	p.subMu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subs, id)
			p.subMu.Unlock()
		})
	}
}

func (p *Pipeline) begin() {
	p.mu.Lock()
	p.inFlight++
	p.errMsg = ""
	p.mu.Unlock()
	p.notify()
}

func (p *Pipeline) finish(msg string) {
	p.mu.Lock()
	p.inFlight--
	if msg != "" {
		p.errMsg = msg
	}
	p.mu.Unlock()
	p.notify()
}

func (p *Pipeline) setError(msg string) {
	p.mu.Lock()
	p.errMsg = msg
	p.mu.Unlock()
	p.notify()
}

func (p *Pipeline) notify() {
	p.subMu.Lock()
	fns := make([]func(State), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subMu.Unlock()
	if len(fns) == 0 {
		return
	}

	st := p.State()
	for _, fn := range fns {
		fn(st)
	}
}

func errorKind(err error) string {
	var (
		ve *encoder.ValidationError
		ie *encoder.IOError
		ae *appraisal.AppraisalError
	)
	switch {
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &ie):
		return "io"
	case errors.As(err, &ae):
		return string(ae.Kind)
	default:
		return "internal"
	}
}
