package symbol

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/portwatch/reconciler/internal/domain"
)

// buggyCryptoSource marks the provider that reports crypto pair symbols without
// the quote-currency dash ("BTCUSD" instead of "BTC-USD").
const buggyCryptoSource = "YAHOO"

const (
	defaultMaxAttempts = 5
	defaultCacheTTL    = 10 * time.Minute
)

// Config tunes the matching service.
type Config struct {
	CacheTTL         time.Duration
	MaxAttempts      int
	ExpectedCurrency string
	DataSourceOrder  []string
}

// Service queries the configured matchers and picks one canonical profile per
// identifier set. Results, including misses, are cached for a short TTL.
type Service struct {
	matchers    []Matcher
	cache       *matchCache
	maxAttempts int
	ranking     ranker
}

// NewService creates a symbol matching service.
func NewService(matchers []Matcher, cfg Config) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	return &Service{
		matchers:    matchers,
		cache:       newMatchCache(cfg.CacheTTL),
		maxAttempts: cfg.MaxAttempts,
		ranking: ranker{
			expectedCurrency: cfg.ExpectedCurrency,
			sourceOrder:      cfg.DataSourceOrder,
		},
	}
}

// MatchSymbol resolves a set of partial identifiers to one canonical profile,
// or nil when no provider produced an acceptable candidate. Provider lookups
// run concurrently; ranking is applied only after every lookup finished, so the
// winner never depends on response order.
func (s *Service) MatchSymbol(ctx context.Context, identifiers []domain.PartialSymbolIdentifier) (*domain.SymbolProfile, error) {
	identifiers = nonEmpty(identifiers)
	if len(identifiers) == 0 {
		return nil, nil
	}

	key := cacheKey(identifiers)
	if profile, ok := s.cache.get(key); ok {
		return profile, nil
	}

	candidates := s.collectCandidates(ctx, identifiers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		s.cache.set(key, nil)
		return nil, nil
	}

	r := s.ranking
	r.identifiers = identifiers
	r.rank(candidates)

	best := candidates[0]
	s.cache.set(key, &best)
	return &best, nil
}

// collectCandidates fans out one lookup per (matcher, identifier) pair and
// merges all acceptable candidates, deduplicated by instrument key.
func (s *Service) collectCandidates(ctx context.Context, identifiers []domain.PartialSymbolIdentifier) []domain.SymbolProfile {
	var (
		mu         sync.Mutex
		candidates []domain.SymbolProfile
		wg         sync.WaitGroup
	)

	for _, matcher := range s.matchers {
		for _, identifier := range identifiers {
			wg.Add(1)
			go func(m Matcher, id domain.PartialSymbolIdentifier) {
				defer wg.Done()
				found := s.matchWithRetry(ctx, m, id)

				mu.Lock()
				defer mu.Unlock()
				for _, profile := range found {
					// Normalize before the profile is ever used as a map key.
					profile = normalizeCandidate(profile)
					if !id.AllowsProfile(profile) {
						continue
					}
					candidates = append(candidates, profile)
				}
			}(matcher, identifier)
		}
	}
	wg.Wait()

	return dedupeByKey(candidates)
}

// matchWithRetry calls one matcher up to maxAttempts times. Providers are
// best-effort and occasionally return empty results, so both errors and empty
// responses are retried; a final failure simply yields no candidates.
func (s *Service) matchWithRetry(ctx context.Context, m Matcher, id domain.PartialSymbolIdentifier) []domain.SymbolProfile {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil
		}
		found, err := m.Match(ctx, id)
		if err == nil && len(found) > 0 {
			return found
		}
		lastErr = err
	}
	if lastErr != nil {
		slog.Warn("symbol provider gave no candidates",
			"provider", m.Name(), "identifier", id.Identifier, "error", lastErr)
	}
	return nil
}

// normalizeCandidate applies the crypto symbol workaround for the known-buggy
// provider: a dash is inserted three characters from the end so "BTCUSD"
// becomes "BTC-USD".
func normalizeCandidate(p domain.SymbolProfile) domain.SymbolProfile {
	if p.DataSource == buggyCryptoSource && p.IsCrypto() && !strings.Contains(p.Symbol, "-") {
		if runes := []rune(p.Symbol); len(runes) > 3 {
			cut := len(runes) - 3
			p.Symbol = string(runes[:cut]) + "-" + string(runes[cut:])
		}
	}
	return p
}

// dedupeByKey keeps one profile per instrument key. Candidates arrive in
// goroutine-completion order, so they are sorted into a total order first;
// the survivor of a key clash is then the same on every run.
func dedupeByKey(candidates []domain.SymbolProfile) []domain.SymbolProfile {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Key() != b.Key() {
			return a.Key() < b.Key()
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.ISIN != b.ISIN {
			return a.ISIN < b.ISIN
		}
		return a.Currency < b.Currency
	})

	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		out = append(out, c)
	}
	return out
}

func nonEmpty(identifiers []domain.PartialSymbolIdentifier) []domain.PartialSymbolIdentifier {
	out := make([]domain.PartialSymbolIdentifier, 0, len(identifiers))
	for _, id := range identifiers {
		if id.Identifier != "" {
			out = append(out, id)
		}
	}
	return out
}
