package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemCache(t *testing.T) {
	c := NewMemCache()
	_, ok := c.Get("geo.bu.edu")
	assert.False(t, ok)

	c.Set("geo.bu.edu", Result{Values: map[string]float64{"x": 1}})
	c.Set("docker", Result{Err: errors.New("down")})

	r, ok := c.Get("geo.bu.edu")
	assert.True(t, ok)
	assert.True(t, r.Up())

	snap := c.Snapshot()
	assert.Len(t, snap, 2)
	assert.False(t, snap["docker"].Up())

	// snapshots are detached from later writes
	c.Set("new", Result{})
	assert.Len(t, snap, 2)
}

func TestMemCacheConcurrent(t *testing.T) {
	c := NewMemCache()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("h", Result{})
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, c.Snapshot(), 1)
}
