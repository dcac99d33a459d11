package symbol

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/portwatch/reconciler/internal/domain"
)

type cacheEntry struct {
	profile   *domain.SymbolProfile
	expiresAt time.Time
}

// matchCache stores resolved profiles per identifier set for a short TTL.
// A nil profile is a cached "no match": it suppresses repeated provider calls
// for identifiers that are known not to resolve within the same run.
type matchCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newMatchCache(ttl time.Duration) *matchCache {
	return &matchCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// cacheKey joins the sorted identifier texts so the key is independent of the
// order identifiers were supplied in.
func cacheKey(identifiers []domain.PartialSymbolIdentifier) string {
	texts := make([]string, len(identifiers))
	for i, id := range identifiers {
		texts[i] = id.Identifier
	}
	sort.Strings(texts)
	return strings.Join(texts, "|")
}

func (c *matchCache) get(key string) (*domain.SymbolProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.profile, true
}

func (c *matchCache) set(key string, profile *domain.SymbolProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		profile:   profile,
		expiresAt: time.Now().Add(c.ttl),
	}
}
