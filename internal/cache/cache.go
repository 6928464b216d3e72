// Package cache is a small TTL cache for rendered pages. Entries expire by
// time only; writes elsewhere in the system never invalidate them.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/juju/clock"
)

type entry struct {
	body    []byte
	expires time.Time
}

type Cache struct {
	clock clock.Clock
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]entry
}

func New(clk clock.Clock, ttl time.Duration) *Cache {
	return &Cache{clock: clk, ttl: ttl, entries: make(map[string]entry)}
}

// Key builds the cache key for one rendered page of a route.
func Key(route, page string, pageSize int) string {
	return fmt.Sprintf("%s?page=%s&size=%d", route, page, pageSize)
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.body, true
}

func (c *Cache) Set(key string, body []byte) {
	b := make([]byte, len(body))
	copy(b, body)
	c.mu.Lock()
	c.entries[key] = entry{body: b, expires: c.clock.Now().Add(c.ttl)}
	c.mu.Unlock()
}
