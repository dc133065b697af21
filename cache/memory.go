package cache

import (
	"context"
	"sync"
	"time"

	"listing-optimizer/utils"
)

// sweepEvery is how many writes pass between opportunistic sweeps of
// expired entries.
const sweepEvery = 64

type entry struct {
	value     []byte
	createdAt time.Time
	ttl       time.Duration
}

func (e entry) expired(now time.Time) bool {
	return e.ttl > 0 && !now.Before(e.createdAt.Add(e.ttl))
}

// MemoryCache is a process-local Cache. It is safe for concurrent use;
// concurrent writers to the same key resolve as last write wins.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   utils.Clock
	writes  int
}

// NewMemoryCache creates an empty MemoryCache. A nil clock uses wall time.
func NewMemoryCache(clock utils.Clock) *MemoryCache {
	if clock == nil {
		clock = utils.RealClock()
	}
	return &MemoryCache{entries: make(map[string]entry), clock: clock}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := c.clock.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.expired(now) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		if cur, ok := c.entries[key]; ok && cur.expired(now) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.clock.Now()
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: stored, createdAt: now, ttl: ttl}
	c.writes++
	if c.writes%sweepEvery == 0 {
		c.sweepLocked(now)
	}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) sweepLocked(now time.Time) {
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
}
