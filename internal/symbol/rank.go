package symbol

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/portwatch/reconciler/internal/domain"
)

// wellKnownCurrencies sorts candidates quoted in a major currency ahead of
// exotic listings when no expected currency decides the tie.
var wellKnownCurrencies = []string{"EUR", "USD", "GBP", "GBp"}

// ranker orders candidate profiles with a fixed key chain so the winner never
// depends on provider response order.
type ranker struct {
	identifiers      []domain.PartialSymbolIdentifier
	expectedCurrency string
	sourceOrder      []string
}

// rank sorts candidates best-first. Candidates are pre-sorted by instrument key
// so the stable sort starts from a deterministic base order.
func (r ranker) rank(candidates []domain.SymbolProfile) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Key() < candidates[j].Key()
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		if ea, eb := r.exactMatch(a), r.exactMatch(b); ea != eb {
			return ea
		}
		if fa, fb := r.fuzzyScore(a), r.fuzzyScore(b); fa != fb {
			return fa > fb
		}
		if r.expectedCurrency != "" {
			if ca, cb := a.Currency == r.expectedCurrency, b.Currency == r.expectedCurrency; ca != cb {
				return ca
			}
		}
		if wa, wb := isWellKnownCurrency(a.Currency), isWellKnownCurrency(b.Currency); wa != wb {
			return wa
		}
		if ra, rb := r.sourceRank(a.DataSource), r.sourceRank(b.DataSource); ra != rb {
			return ra < rb
		}
		return len(a.Name) < len(b.Name)
	})
}

// exactMatch reports whether any supplied identifier matches the candidate's
// symbol, ISIN or name, including the dash and "-USD" suffix variants crypto
// providers use for the same coin.
func (r ranker) exactMatch(p domain.SymbolProfile) bool {
	symbol := normalizeText(p.Symbol)
	isin := normalizeText(p.ISIN)
	name := normalizeText(p.Name)

	for _, id := range r.identifiers {
		text := normalizeText(id.Identifier)
		if text == "" {
			continue
		}
		if text == symbol || text == isin || text == name {
			return true
		}
		// "BTC" vs "BTC-USD" and similar crypto quote-suffix variants.
		if symbol == text+"USD" || text == symbol+"USD" {
			return true
		}
	}
	return false
}

// fuzzyScore is the best Jaro-Winkler similarity of any identifier against the
// candidate's name and symbol.
func (r ranker) fuzzyScore(p domain.SymbolProfile) float64 {
	best := 0.0
	for _, id := range r.identifiers {
		text := strings.ToLower(id.Identifier)
		if text == "" {
			continue
		}
		if s := smetrics.JaroWinkler(text, strings.ToLower(p.Name), 0.7, 4); s > best {
			best = s
		}
		if s := smetrics.JaroWinkler(text, strings.ToLower(p.Symbol), 0.7, 4); s > best {
			best = s
		}
	}
	return best
}

// sourceRank returns the candidate's position in the configured provider
// preference order; unranked providers sort last.
func (r ranker) sourceRank(dataSource string) int {
	for i, source := range r.sourceOrder {
		if source == dataSource {
			return i
		}
	}
	return len(r.sourceOrder)
}

func isWellKnownCurrency(currency string) bool {
	for _, c := range wellKnownCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

// normalizeText upper-cases and strips dashes for identifier comparison.
func normalizeText(s string) string {
	return strings.ReplaceAll(strings.ToUpper(s), "-", "")
}
