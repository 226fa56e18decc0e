package topomap

import (
	"sync"

	"github.com/paulmach/orb"
)

// zoomCache memoizes simplified pixel geometry by integer zoom.
//
// A stored nil value means the feature has nothing to draw at that zoom and
// is distinct from a missing entry. Concurrent misses for the same zoom may
// compute the value twice; the result is deterministic so the last write
// wins harmlessly.
type zoomCache struct {
	mu      sync.RWMutex
	entries map[int]orb.MultiLineString
}

func (c *zoomCache) get(zoom int) (orb.MultiLineString, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.entries[zoom]
	return g, ok
}

func (c *zoomCache) put(zoom int, g orb.MultiLineString) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[int]orb.MultiLineString)
	}
	c.entries[zoom] = g
}

func (c *zoomCache) clear() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
}

func (c *zoomCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
