package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value    []byte
	storedAt time.Time
}

// MemoryCache is an in-process cache with a fixed TTL. Entries accumulate
// until Clear; expiry is lazy, enforced on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// ------------------------------------------------------------------------------------------------------
// NewMemoryCache creates an in-memory cache with the given TTL
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// ------------------------------------------------------------------------------------------------------
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}

	result := make([]byte, len(e.value))
	copy(result, e.value)
	return result, true
}

// ------------------------------------------------------------------------------------------------------
// Put overwrites any existing entry for key with a fresh timestamp
func (c *MemoryCache) Put(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)

	c.entries[key] = entry{value: stored, storedAt: c.now()}
}

// ------------------------------------------------------------------------------------------------------
func (c *MemoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// ------------------------------------------------------------------------------------------------------
func (c *MemoryCache) Close() error {
	return nil
}
