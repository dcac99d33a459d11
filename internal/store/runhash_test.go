package store

import (
	"testing"
	"time"
)

func TestRunHashCacheRoundTrip(t *testing.T) {
	c := NewRunHashCache(time.Hour)

	if got := c.Get("pipeline"); got != "" {
		t.Errorf("empty cache Get = %q, want empty", got)
	}

	c.Set("pipeline", "abc123")
	if got := c.Get("pipeline"); got != "abc123" {
		t.Errorf("Get = %q, want abc123", got)
	}
	if got := c.Get("other"); got != "" {
		t.Errorf("other pipeline Get = %q, want empty", got)
	}
}

func TestRunHashCacheExpiry(t *testing.T) {
	c := NewRunHashCache(time.Hour)
	c.Set("pipeline", "abc123")

	// Manually expire the entry
	c.mu.Lock()
	entry := c.entries["pipeline"]
	entry.expiresAt = time.Now().Add(-1 * time.Second)
	c.entries["pipeline"] = entry
	c.mu.Unlock()

	if got := c.Get("pipeline"); got != "" {
		t.Errorf("expired Get = %q, want empty", got)
	}
}
