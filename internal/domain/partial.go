package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PartialActivity is one raw transaction line handed in by a broker-specific
// importer, prior to canonicalization. It is treated as immutable.
type PartialActivity struct {
	Kind            ActivityKind
	Date            time.Time
	Currency        string
	Amount          decimal.Decimal
	UnitPrice       *decimal.Decimal
	TransactionID   string
	Identifiers     []PartialSymbolIdentifier
	SortingPriority *int
	Description     string

	// Product and Mutation carry the raw product and mutation-description text
	// from the source line; they only feed transaction id synthesis.
	Product  string
	Mutation string
}

// HasIdentifiers reports whether the line references an instrument.
func (p PartialActivity) HasIdentifiers() bool {
	return len(p.Identifiers) > 0
}

// SyntheticTransactionID builds a deterministic transaction id for lines whose
// source carries none. Repeated runs over unchanged source data must produce
// byte-identical ids, so only stable source fields participate.
func (p PartialActivity) SyntheticTransactionID() string {
	instrument := ""
	if len(p.Identifiers) > 0 {
		instrument = p.Identifiers[0].Identifier
	}
	return strings.Join([]string{
		string(p.Kind),
		p.Date.UTC().Format("2006-01-02"),
		p.Product,
		instrument,
		p.Mutation,
	}, "_")
}

// TotalValue is the money value of a fee/tax sub-line: amount times unit price
// when a unit price is present, else the raw amount.
func (p PartialActivity) TotalValue() Money {
	amount := p.Amount
	if p.UnitPrice != nil {
		amount = p.Amount.Mul(*p.UnitPrice)
	}
	return NewMoney(p.Currency, amount)
}

func (p PartialActivity) String() string {
	return fmt.Sprintf("%s %s %s %s", p.Kind, p.Date.Format("2006-01-02"), p.Amount, p.TransactionID)
}
