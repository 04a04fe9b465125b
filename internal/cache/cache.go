package cache

import (
	"sync"
	"time"
)

// Result is the outcome of the last probe of one host.
type Result struct {
	At       time.Time
	Duration time.Duration
	Labels   map[string]string
	Values   map[string]float64
	Err      error
}

// Up reports whether the probe succeeded.
func (r Result) Up() bool { return r.Err == nil }

// Cache is the interface used by scheduler/metrics.
type Cache interface {
	Set(host string, r Result)
	Get(host string) (Result, bool)
	Snapshot() map[string]Result
}

// MemCache is an in-memory implementation of Cache.
type MemCache struct {
	mu   sync.RWMutex
	data map[string]Result
}

func NewMemCache() *MemCache {
	return &MemCache{
		data: make(map[string]Result),
	}
}

func (c *MemCache) Set(host string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[host] = r
}

func (c *MemCache) Get(host string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.data[host]
	return r, ok
}

func (c *MemCache) Snapshot() map[string]Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Result, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}
