// Package playlist keeps the per-session artist queues. The cache is
// in-memory and single-process; entries expire a fixed TTL after their last
// access and are swept lazily on the next touch, so no background goroutine
// is needed.
package playlist

import (
	"sync"
	"time"

	"github.com/mavoice/skill-gateway/pkg/skill/fault"
)

const DefaultTTL = 30 * time.Minute

type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	URL    string `json:"url"`
}

type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	tracks    []Track
	index     int
	expiresAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Start replaces any existing playlist for key with tracks at position 0.
// An empty track list removes the entry instead: absence means "nothing
// queued" and an empty playlist is never stored.
func (c *Cache) Start(key string, tracks []Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()

	if len(tracks) == 0 {
		delete(c.entries, key)
		return
	}
	c.entries[key] = &entry{
		tracks:    tracks,
		index:     0,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Advance moves the queue position by delta (+1 next, -1 previous), clamped
// to the track range with no wraparound, refreshes the entry's expiry, and
// returns the track at the new position. A missing or expired playlist
// yields an empty-queue fault.
func (c *Cache) Advance(key string, delta int) (Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()

	e, ok := c.entries[key]
	if !ok {
		return Track{}, fault.New(fault.KindEmptyQueue, "no playlist for session")
	}

	e.index += delta
	if e.index < 0 {
		e.index = 0
	}
	if e.index > len(e.tracks)-1 {
		e.index = len(e.tracks) - 1
	}
	e.expiresAt = c.now().Add(c.ttl)
	return e.tracks[e.index], nil
}

// Len reports the number of live playlists.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	return len(c.entries)
}

func (c *Cache) sweepLocked() {
	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
