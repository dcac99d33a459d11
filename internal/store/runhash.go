package store

import (
	"sync"
	"time"
)

// RunHashCache remembers the source-tree content hash of the last completed
// run per pipeline name. Entries expire after a fixed TTL so a stuck hash can
// never suppress syncs for long.
type RunHashCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]runHashEntry
}

type runHashEntry struct {
	hash      string
	expiresAt time.Time
}

// NewRunHashCache creates a run-hash cache with the given TTL.
func NewRunHashCache(ttl time.Duration) *RunHashCache {
	return &RunHashCache{
		ttl:     ttl,
		entries: make(map[string]runHashEntry),
	}
}

// Get returns the cached hash for the pipeline, or "" when absent or expired.
func (c *RunHashCache) Get(pipeline string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pipeline]
	if !ok || time.Now().After(entry.expiresAt) {
		return ""
	}
	return entry.hash
}

// Set stores the hash for the pipeline.
func (c *RunHashCache) Set(pipeline, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[pipeline] = runHashEntry{
		hash:      hash,
		expiresAt: time.Now().Add(c.ttl),
	}
}
