// Package idempotency provides a small single-flight result cache: per key,
// a computation runs at most once concurrently, and its result is reused for
// a bounded retention window.
package idempotency

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultTTL = time.Hour

// Cache memoizes computation results by key. Failures are never cached, so a
// failed computation can be attempted again by the next caller.
type Cache struct {
	ttl   time.Duration
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry

	now func() time.Time
}

type entry struct {
	value    any
	storedAt time.Time
}

// New creates a cache with the given retention window. A non-positive ttl
// falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: map[string]entry{},
		now:     time.Now,
	}
}

// Do returns the cached value for key when it is still fresh, otherwise runs
// compute and stores its result. Concurrent calls for the same key share a
// single execution; late arrivals receive the first caller's result.
func (c *Cache) Do(key string, compute func() (any, error)) (any, error) {
	if value, ok := c.lookup(key); ok {
		return value, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have stored the value between our lookup
		// and joining the group.
		if value, ok := c.lookup(key); ok {
			return value, nil
		}

		value, err := compute()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.sweep()
		c.entries[key] = entry{value: value, storedAt: c.now()}
		c.mu.Unlock()
		return value, nil
	})
	return value, err
}

// Forget drops a key so the next Do recomputes it.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// sweep drops every expired entry so the map does not grow with dead keys
// that are never looked up again. Callers must hold mu.
func (c *Cache) sweep() {
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
}

func (c *Cache) lookup(key string) (any, bool) {
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
	return e.value, true
}
