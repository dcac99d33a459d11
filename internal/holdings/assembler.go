// Package holdings merges resolved activities into per-instrument holdings and
// applies the crypto correction passes.
package holdings

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/portwatch/reconciler/internal/domain"
)

// SymbolMatcher resolves partial identifiers to one canonical profile.
type SymbolMatcher interface {
	MatchSymbol(ctx context.Context, identifiers []domain.PartialSymbolIdentifier) (*domain.SymbolProfile, error)
}

// Assembler groups activities into holdings, resolving instruments on demand.
type Assembler struct {
	symbols SymbolMatcher
}

// NewAssembler creates an Assembler backed by the given symbol matcher.
func NewAssembler(symbols SymbolMatcher) *Assembler {
	return &Assembler{symbols: symbols}
}

// Assemble distributes every identifier-carrying activity over holdings.
// Existing persisted holdings are reused when their identifier sets overlap.
// Activities whose symbol lookup fails keep an empty holding reference and are
// retried on the next run. Processing order is fixed (sorted by first
// identifier text) so merge outcomes are deterministic, not an accident of
// iteration order.
func (a *Assembler) Assemble(ctx context.Context, activities []domain.Activity, existing []*domain.Holding) ([]*domain.Holding, error) {
	working := make([]*domain.Holding, 0, len(existing))
	byInstrument := make(map[string]*domain.Holding)
	for _, h := range existing {
		clone := *h
		clone.Activities = nil
		working = append(working, &clone)
		for _, p := range clone.Profiles {
			byInstrument[p.Key()] = &clone
		}
	}

	eligible := lo.Filter(activities, func(act domain.Activity, _ int) bool {
		if act.Kind() == domain.KindKnownBalance {
			// Balance checkpoints never join a holding.
			return false
		}
		return len(act.Base().Identifiers) > 0
	})
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Base().Identifiers[0].Identifier < eligible[j].Base().Identifiers[0].Identifier
	})

	for _, act := range eligible {
		identifiers := act.Base().Identifiers

		holding := findByIdentifierOverlap(working, identifiers)
		if holding == nil {
			profile, err := a.symbols.MatchSymbol(ctx, identifiers)
			if err != nil {
				return nil, err
			}
			if profile == nil {
				slog.Warn("no instrument match, leaving activity unassigned",
					"account", act.Base().Account,
					"transactionId", act.Base().TransactionID,
					"identifier", identifiers[0].Identifier)
				continue
			}

			if resolved, ok := byInstrument[profile.Key()]; ok {
				// Two different identifier sets resolved to the same real
				// instrument: share the holding.
				holding = resolved
			} else {
				holding = &domain.Holding{ID: uuid.NewString()}
				holding.AddProfile(*profile)
				byInstrument[profile.Key()] = holding
				working = append(working, holding)
			}
		}

		holding.AddActivity(act)
	}

	// A holding that never resolved an instrument, or that no activity
	// references anymore, is dropped.
	kept := lo.Filter(working, func(h *domain.Holding, _ int) bool {
		return len(h.Profiles) > 0 && len(h.Activities) > 0
	})
	for _, h := range kept {
		h.SortActivities()
	}
	return kept, nil
}

func findByIdentifierOverlap(holdings []*domain.Holding, identifiers []domain.PartialSymbolIdentifier) *domain.Holding {
	for _, h := range holdings {
		if domain.IdentifiersOverlap(h.Identifiers, identifiers) {
			return h
		}
	}
	return nil
}
