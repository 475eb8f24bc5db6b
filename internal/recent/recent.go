// Package recent keeps a small most-recently-used list of artists for
// display. It is best-effort metadata and never affects scoring or the
// queue.
package recent

import (
	"sync"

	"github.com/verte-zerg/lyrictype/internal/model"
)

// Capacity is the number of artists kept.
const Capacity = 7

// Cache is an MRU-first list of artists keyed by id.
type Cache struct {
	mu      sync.Mutex
	artists []model.RecentArtist
}

// New returns a cache seeded with artists, most recent first.
func New(seed []model.RecentArtist) *Cache {
	c := &Cache{}
	for i := len(seed) - 1; i >= 0; i-- {
		c.Upsert(seed[i])
	}
	return c
}

// Upsert moves the artist to the front, replacing any entry with the same
// id, and evicts the oldest entries beyond Capacity.
func (c *Cache) Upsert(artist model.RecentArtist) {
	if artist.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]model.RecentArtist, 0, len(c.artists)+1)
	next = append(next, artist)
	for _, a := range c.artists {
		if a.ID != artist.ID {
			next = append(next, a)
		}
	}
	if len(next) > Capacity {
		next = next[:Capacity]
	}
	c.artists = next
}

// Get looks an artist up by id.
func (c *Cache) Get(id string) (model.RecentArtist, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.artists {
		if a.ID == id {
			return a, true
		}
	}
	return model.RecentArtist{}, false
}

// List returns the artists, most recent first.
func (c *Cache) List() []model.RecentArtist {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.RecentArtist, len(c.artists))
	copy(out, c.artists)
	return out
}
