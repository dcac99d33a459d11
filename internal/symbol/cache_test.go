package symbol

import (
	"testing"
	"time"

	"github.com/portwatch/reconciler/internal/domain"
)

func TestCacheKeyIndependentOfOrder(t *testing.T) {
	a := cacheKey(ids("AAPL", "US0378331005"))
	b := cacheKey(ids("US0378331005", "AAPL"))
	if a != b {
		t.Errorf("cache keys differ by order: %q vs %q", a, b)
	}
}

func TestCacheHitAndMiss(t *testing.T) {
	c := newMatchCache(time.Minute)

	profile := &domain.SymbolProfile{Symbol: "AAPL", DataSource: "YAHOO"}
	c.set("aapl", profile)

	got, ok := c.get("aapl")
	if !ok || got == nil || got.Symbol != "AAPL" {
		t.Fatalf("cache get = %v, %v; want AAPL hit", got, ok)
	}

	if _, ok := c.get("missing"); ok {
		t.Error("expected cache miss for missing key")
	}
}

func TestCacheStoresNegativeResult(t *testing.T) {
	c := newMatchCache(time.Minute)
	c.set("nope", nil)

	got, ok := c.get("nope")
	if !ok {
		t.Fatal("expected hit for cached negative result")
	}
	if got != nil {
		t.Errorf("cached negative result = %v, want nil", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := newMatchCache(time.Minute)
	c.set("expire", &domain.SymbolProfile{Symbol: "X"})

	// Manually expire the entry
	c.mu.Lock()
	entry := c.entries["expire"]
	entry.expiresAt = time.Now().Add(-1 * time.Second)
	c.entries["expire"] = entry
	c.mu.Unlock()

	if _, ok := c.get("expire"); ok {
		t.Error("expected expired entry to miss")
	}
}
