package portfolio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"glassngold/internal/logging"

	"go.uber.org/zap"
)

// ErrDuplicateID is returned by Prepend when an item with the same ID exists.
var ErrDuplicateID = errors.New("portfolio: duplicate item id")

// Store is the in-memory, prepend-only history. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items []HistoryItem // newest first
	ids   map[string]struct{}

	subMu   sync.Mutex
	subs    map[int]func([]HistoryItem)
	nextSub int
}

// New creates a store seeded with exactly one item.
func New(seed HistoryItem) *Store {
	s := &Store{
		ids:  make(map[string]struct{}),
		subs: make(map[int]func([]HistoryItem)),
	}
	seed = seed.Clone()
	s.items = []HistoryItem{seed}
	s.ids[seed.ID] = struct{}{}
	return s
}

// NewSeeded creates a store holding the sample listing stamped with now.
func NewSeeded(now time.Time) *Store {
	return New(Sample(now))
}

// Prepend commits item at the front. A timestamp older than the current
// front is raised to match it so recency order never inverts.
func (s *Store) Prepend(item HistoryItem) error {
	if item.ID == "" {
		return fmt.Errorf("portfolio: item id is empty")
	}
	item = item.Clone()

	s.mu.Lock()
	if _, exists := s.ids[item.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, item.ID)
	}
	if len(s.items) > 0 && item.Timestamp < s.items[0].Timestamp {
		item.Timestamp = s.items[0].Timestamp
	}
	next := make([]HistoryItem, 0, len(s.items)+1)
	next = append(next, item)
	next = append(next, s.items...)
	s.items = next
	s.ids[item.ID] = struct{}{}
	size := len(s.items)
	s.mu.Unlock()

	logging.Get(logging.CategoryPortfolio).Debug("item committed",
		zap.String("id", item.ID),
		zap.String("title", item.Result.Title),
		zap.Int("size", size))

	s.notify()
	return nil
}

// Items returns a copy of the history, newest first.
func (s *Store) Items() []HistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Front returns the newest item.
func (s *Store) Front() (HistoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return HistoryItem{}, false
	}
	return s.items[0].Clone(), true
}

// Get returns the item with the given ID.
func (s *Store) Get(id string) (HistoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it.Clone(), true
		}
	}
	return HistoryItem{}, false
}

// Subscribe registers fn to receive a snapshot after every successful
// Prepend. fn runs on the committing goroutine, outside the store lock.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func([]HistoryItem)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func([]HistoryItem), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(s.Items())
	}
}

func cloneItems(items []HistoryItem) []HistoryItem {
	out := make([]HistoryItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
