package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Holding aggregates every activity and resolved instrument profile for one
// logical position. It normally carries exactly one profile; more than one
// exists only transiently while duplicate candidates are being merged.
type Holding struct {
	ID          string                    `json:"id"`
	Profiles    []SymbolProfile           `json:"profiles,omitempty"`
	Identifiers []PartialSymbolIdentifier `json:"identifiers,omitempty"`
	Activities  []Activity                `json:"-"`
}

// AddProfile merges a profile into the holding, keeping at most one profile per
// data source. A profile differing only by symbol spelling (case or dashes)
// from an already-held same-datasource profile is treated as the same and not
// added twice.
func (h *Holding) AddProfile(p SymbolProfile) {
	for _, existing := range h.Profiles {
		if existing.DataSource == p.DataSource {
			return
		}
	}
	h.Profiles = append(h.Profiles, p)
}

// Profile returns the holding's primary profile, preferring the first one. Nil
// before resolution.
func (h *Holding) Profile() *SymbolProfile {
	if len(h.Profiles) == 0 {
		return nil
	}
	return &h.Profiles[0]
}

// IsCrypto reports whether the holding's resolved instrument is a cryptocurrency.
func (h *Holding) IsCrypto() bool {
	p := h.Profile()
	return p != nil && p.IsCrypto()
}

// AddActivity appends an activity and merges its identifiers into the
// holding's long-lived identifier tags.
func (h *Holding) AddActivity(a Activity) {
	h.Activities = append(h.Activities, a)
	h.Identifiers = MergeIdentifiers(h.Identifiers, a.Base().Identifiers)
	if h.ID != "" {
		a.Base().HoldingID = h.ID
	}
}

// SortActivities orders the holding's activities by date, then sorting
// priority, then transaction id. Correction passes rely on this order.
func (h *Holding) SortActivities() {
	sort.SliceStable(h.Activities, func(i, j int) bool {
		a, b := h.Activities[i].Base(), h.Activities[j].Base()
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.SortingPriority != b.SortingPriority {
			return a.SortingPriority < b.SortingPriority
		}
		return a.TransactionID < b.TransactionID
	})
}

// NetQuantity is the signed quantity across the holding's trades: positive for
// acquisitions, negative for disposals. Staking rewards and dividends
// contribute zero.
func (h *Holding) NetQuantity() decimal.Decimal {
	net := decimal.Zero
	for _, act := range h.Activities {
		if trade, ok := act.(*BuySellActivity); ok {
			net = net.Add(trade.EffectiveQuantity())
		}
	}
	return net
}

// LastKnownUnitPrice is the effective unit price of the most recent trade, zero
// when the holding has no trades.
func (h *Holding) LastKnownUnitPrice() decimal.Decimal {
	h.SortActivities()
	for i := len(h.Activities) - 1; i >= 0; i-- {
		if trade, ok := h.Activities[i].(*BuySellActivity); ok {
			return trade.EffectiveUnitPrice()
		}
	}
	return decimal.Zero
}
