// Package symbol resolves partial instrument identifiers to canonical symbol
// profiles by querying external data providers and ranking their candidates
// deterministically.
package symbol

import (
	"context"

	"github.com/portwatch/reconciler/internal/domain"
)

// Matcher is one external symbol data provider. Implementations are
// best-effort: an error or an empty result means "no candidate", never a failed
// run.
type Matcher interface {
	// Name returns the provider's data-source name, e.g. "YAHOO".
	Name() string
	// Match returns candidate profiles for one identifier.
	Match(ctx context.Context, identifier domain.PartialSymbolIdentifier) ([]domain.SymbolProfile, error)
}
