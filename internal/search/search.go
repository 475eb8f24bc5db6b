// Package search implements debounced artist typeahead.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/lyrictype/internal/model"
	"github.com/verte-zerg/lyrictype/internal/timing"
)

// DefaultDelay is the quiet period before a query is sent.
const DefaultDelay = 300 * time.Millisecond

// Finder looks artists up by name.
type Finder interface {
	SearchArtists(ctx context.Context, query string, limit int) ([]model.ArtistRef, error)
}

// Result is delivered for every query that is still current when it
// completes.
type Result struct {
	Query   string
	Artists []model.ArtistRef
	Err     error
}

// Searcher debounces queries and drops responses made stale by newer input.
type Searcher struct {
	finder    Finder
	limit     int
	debouncer *timing.Debouncer
	deliver   func(Result)

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// New returns a Searcher that calls deliver from a background goroutine.
func New(finder Finder, clock timing.Clock, delay time.Duration, limit int, deliver func(Result)) *Searcher {
	if clock == nil {
		clock = timing.System()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Searcher{
		finder:    finder,
		limit:     limit,
		debouncer: timing.NewDebouncer(clock, delay),
		deliver:   deliver,
	}
}

// Update records new input. A blank query clears results immediately.
func (s *Searcher) Update(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	if query == "" {
		s.debouncer.Cancel()
		s.deliver(Result{})
		return
	}
	s.debouncer.Trigger(func() { s.run(seq, query) })
}

// Stop cancels pending and in-flight lookups.
func (s *Searcher) Stop() {
	s.debouncer.Cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) run(seq uint64, query string) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	artists, err := s.finder.SearchArtists(ctx, query, s.limit)

	s.mu.Lock()
	current := seq == s.seq
	s.mu.Unlock()
	if !current {
		return
	}
	s.deliver(Result{Query: query, Artists: artists, Err: err})
}
