package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/verte-zerg/lyrictype/internal/model"
	"github.com/verte-zerg/lyrictype/internal/recent"
	"github.com/verte-zerg/lyrictype/internal/timing"
)

// LyricsAPI is the lyrics/artist provider consumed by the manager.
type LyricsAPI interface {
	// FetchArtistSong returns a song whose Index is not in exclude, or nil
	// when the artist catalog is exhausted.
	FetchArtistSong(ctx context.Context, artistID string, exclude map[int]struct{}) (*model.SongRecord, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]model.ArtistRef, error)
	GetArtistInfo(ctx context.Context, artistID string, bypassCache bool) (model.ArtistInfo, error)
}

var (
	// ErrArtistLoad wraps any failure to load an artist's first song.
	ErrArtistLoad = errors.New("could not load artist")
	// ErrNoSongs is returned when an artist has no songs at all.
	ErrNoSongs = errors.New("artist has no songs")
	// ErrSuperseded is returned when another artist was selected while the
	// first song was loading.
	ErrSuperseded = errors.New("artist selection superseded")
)

const defaultPrefetchCount = 5

// Options configures a Manager. LowWater is the number of loaded songs
// ahead of the pointer below which a background prefetch starts.
type Options struct {
	PrefetchCount int
	LowWater      int
	Recent        *recent.Cache
	Clock         timing.Clock
	Retry         timing.Policy
	Logf          func(format string, args ...any)
}

// Status is a read-only snapshot for UI enablement.
type Status struct {
	CurrentIndex  int
	TotalSongs    int
	CanGoPrevious bool
	CanGoNext     bool
}

// Manager owns the song queue and fills it from the lyrics API. All queue
// mutation goes through its methods.
type Manager struct {
	api  LyricsAPI
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	next   singleflight.Group

	mu               sync.Mutex
	queue            Queue
	artist           model.ArtistRef
	seen             map[int]struct{}
	prefetchInFlight bool
	generation       uint64
	exhausted        bool
}

type nextResult struct {
	song model.SongRecord
	ok   bool
}

// NewManager returns a Manager backed by api.
func NewManager(api LyricsAPI, opts Options) *Manager {
	if opts.PrefetchCount <= 0 {
		opts.PrefetchCount = defaultPrefetchCount
	}
	if opts.LowWater < 0 {
		opts.LowWater = 0
	}
	if opts.Clock == nil {
		opts.Clock = timing.System()
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = timing.DefaultPolicy
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		api:    api,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		seen:   map[int]struct{}{},
	}
}

// InitializeWithArtist starts a fresh queue for artist, returning its first
// song and loading more in the background.
func (m *Manager) InitializeWithArtist(ctx context.Context, artist model.ArtistRef) (model.SongRecord, error) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.artist = artist
	m.seen = map[int]struct{}{}
	m.exhausted = false
	m.prefetchInFlight = false
	m.queue.Clear()
	m.mu.Unlock()

	song, err := m.api.FetchArtistSong(ctx, artist.ID, map[int]struct{}{})
	if err != nil {
		m.mu.Lock()
		stale := m.generation != gen
		m.mu.Unlock()
		if stale {
			return model.SongRecord{}, ErrSuperseded
		}
		return model.SongRecord{}, fmt.Errorf("%w %q: %w", ErrArtistLoad, artist.Name, err)
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return model.SongRecord{}, ErrSuperseded
	}
	if song == nil {
		m.exhausted = true
		m.mu.Unlock()
		return model.SongRecord{}, fmt.Errorf("%w: %s", ErrNoSongs, artist.Name)
	}
	m.appendLocked(*song)
	m.mu.Unlock()

	m.remember(artist, *song)
	m.schedulePrefetch(gen)
	return *song, nil
}

// Next advances to the next song, fetching one synchronously when the
// queue is exhausted. ok is false with a nil error when the artist has no
// more songs. Concurrent calls share a single advance.
func (m *Manager) Next(ctx context.Context) (model.SongRecord, bool, error) {
	v, err, _ := m.next.Do("next", func() (any, error) {
		return m.advance(ctx)
	})
	if err != nil {
		return model.SongRecord{}, false, err
	}
	res := v.(nextResult)
	return res.song, res.ok, nil
}

func (m *Manager) advance(ctx context.Context) (nextResult, error) {
	m.mu.Lock()
	if song, ok := m.queue.Next(); ok {
		gen := m.generation
		m.mu.Unlock()
		m.maybePrefetch(gen)
		return nextResult{song: song, ok: true}, nil
	}
	if m.queue.Len() == 0 || m.exhausted {
		m.mu.Unlock()
		return nextResult{}, nil
	}
	gen := m.generation
	artistID := m.artist.ID
	exclude := m.excludeLocked()
	m.mu.Unlock()

	fetched, err := m.api.FetchArtistSong(ctx, artistID, exclude)
	if err != nil {
		return nextResult{}, fmt.Errorf("failed to fetch next song: %w", err)
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return nextResult{}, nil
	}
	if fetched == nil {
		m.exhausted = true
	} else {
		m.appendLocked(*fetched)
	}
	song, ok := m.queue.Next()
	m.mu.Unlock()
	if ok {
		m.maybePrefetch(gen)
	}
	return nextResult{song: song, ok: ok}, nil
}

// Previous moves back through already loaded songs.
func (m *Manager) Previous() (model.SongRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Previous()
}

// Jump moves to a loaded song by index.
func (m *Manager) Jump(index int) (model.SongRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Jump(index)
}

// Current returns the current song.
func (m *Manager) Current() (model.SongRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Current()
}

// Upcoming returns up to n loaded songs after the current one.
func (m *Manager) Upcoming(n int) []model.SongRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Upcoming(n)
}

// Songs returns every loaded song in order.
func (m *Manager) Songs() []model.SongRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Songs()
}

// Artist returns the artist the queue was initialized with.
func (m *Manager) Artist() model.ArtistRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.artist
}

// Status reports navigation availability. CanGoNext stays true while more
// songs may still be fetched.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := m.queue.Len()
	cur := m.queue.CurrentIndex()
	return Status{
		CurrentIndex:  cur,
		TotalSongs:    total,
		CanGoPrevious: total > 0 && cur > 0,
		CanGoNext:     total > 0 && (cur < total-1 || !m.exhausted),
	}
}

// RefreshArtistImage polls the provider for an artist image that may not
// have been extracted yet. It gives up quietly after the retry policy.
func (m *Manager) RefreshArtistImage(ctx context.Context) (model.ArtistInfo, bool) {
	m.mu.Lock()
	gen := m.generation
	artist := m.artist
	m.mu.Unlock()
	if artist.ID == "" {
		return model.ArtistInfo{}, false
	}

	var info model.ArtistInfo
	found, err := timing.Retry(ctx, m.opts.Clock, m.opts.Retry, func(ctx context.Context) (bool, error) {
		got, err := m.api.GetArtistInfo(ctx, artist.ID, true)
		if err != nil {
			return false, err
		}
		info = got
		return got.ImageURL != "", nil
	})
	if err != nil {
		m.opts.Logf("artist image lookup for %s failed: %v", artist.ID, err)
		return model.ArtistInfo{}, false
	}
	if !found {
		return model.ArtistInfo{}, false
	}

	m.mu.Lock()
	stale := m.generation != gen
	m.mu.Unlock()
	if stale {
		return model.ArtistInfo{}, false
	}
	if m.opts.Recent != nil {
		name := info.Name
		if name == "" {
			name = artist.Name
		}
		m.opts.Recent.Upsert(model.RecentArtist{ID: artist.ID, Name: name, ImageURL: info.ImageURL})
	}
	return info, true
}

// Wait blocks until background prefetches finish.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close cancels background work and waits for it.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) remember(artist model.ArtistRef, song model.SongRecord) {
	if m.opts.Recent == nil {
		return
	}
	name := artist.Name
	if name == "" {
		name = song.PrimaryArtist
	}
	entry := model.RecentArtist{ID: artist.ID, Name: name, ImageURL: song.ArtistImageURL}
	if entry.ImageURL == "" {
		if prev, ok := m.opts.Recent.Get(artist.ID); ok {
			entry.ImageURL = prev.ImageURL
		}
	}
	m.opts.Recent.Upsert(entry)
}

// appendLocked adds song unless its catalog index was already queued.
func (m *Manager) appendLocked(song model.SongRecord) bool {
	if _, dup := m.seen[song.Index]; dup {
		return false
	}
	m.seen[song.Index] = struct{}{}
	m.queue.Add(song)
	return true
}

func (m *Manager) excludeLocked() map[int]struct{} {
	out := make(map[int]struct{}, len(m.seen))
	for idx := range m.seen {
		out[idx] = struct{}{}
	}
	return out
}

func (m *Manager) maybePrefetch(gen uint64) {
	m.mu.Lock()
	ahead := m.queue.Len() - 1 - m.queue.CurrentIndex()
	m.mu.Unlock()
	if ahead < m.opts.LowWater {
		m.schedulePrefetch(gen)
	}
}

func (m *Manager) schedulePrefetch(gen uint64) {
	m.mu.Lock()
	if m.prefetchInFlight || m.exhausted || m.generation != gen {
		m.mu.Unlock()
		return
	}
	m.prefetchInFlight = true
	artistID := m.artist.ID
	m.mu.Unlock()

	m.wg.Add(1)
	go m.prefetch(gen, artistID, m.opts.PrefetchCount)
}

// prefetch touches only queue state; results for a superseded generation
// are dropped.
func (m *Manager) prefetch(gen uint64, artistID string, count int) {
	defer m.wg.Done()
	defer func() {
		m.mu.Lock()
		if m.generation == gen {
			m.prefetchInFlight = false
		}
		m.mu.Unlock()
	}()

	for i := 0; i < count; i++ {
		m.mu.Lock()
		if m.generation != gen || m.exhausted {
			m.mu.Unlock()
			return
		}
		exclude := m.excludeLocked()
		m.mu.Unlock()

		song, err := m.api.FetchArtistSong(m.ctx, artistID, exclude)
		if err != nil {
			if m.ctx.Err() == nil {
				m.opts.Logf("background prefetch for %s failed: %v", artistID, err)
			}
			return
		}

		m.mu.Lock()
		if m.generation != gen {
			m.mu.Unlock()
			return
		}
		if song == nil {
			m.exhausted = true
			m.mu.Unlock()
			return
		}
		m.appendLocked(*song)
		m.mu.Unlock()
	}
}
