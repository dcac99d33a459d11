package holdings

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/portwatch/reconciler/internal/domain"
)

type fakeSymbols struct {
	profiles map[string]*domain.SymbolProfile
	calls    int
}

func (f *fakeSymbols) MatchSymbol(_ context.Context, identifiers []domain.PartialSymbolIdentifier) (*domain.SymbolProfile, error) {
	f.calls++
	for _, id := range identifiers {
		if p, ok := f.profiles[id.Identifier]; ok {
			return p, nil
		}
	}
	return nil, nil
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

var baseDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func trade(txID, identifier, quantity, price string, day int) *domain.BuySellActivity {
	return &domain.BuySellActivity{
		BaseActivity: domain.BaseActivity{
			ID:            txID + "-id",
			Account:       "broker-a",
			Date:          baseDate.AddDate(0, 0, day),
			TransactionID: txID,
			Identifiers:   []domain.PartialSymbolIdentifier{domain.NewIdentifier(identifier)},
		},
		Quantity:  d(quantity),
		UnitPrice: domain.NewMoney("USD", d(price)),
	}
}

func TestAssembleMergesIdentifiersResolvingToSameInstrument(t *testing.T) {
	profile := &domain.SymbolProfile{
		Symbol:        "AAPL-USD",
		DataSource:    "X",
		AssetSubClass: domain.SubClassCryptocurrency,
	}
	symbols := &fakeSymbols{profiles: map[string]*domain.SymbolProfile{
		"AAPL":     profile,
		"AAPL-USD": profile,
	}}

	activities := []domain.Activity{
		trade("t1", "AAPL", "1", "100", 0),
		trade("t2", "AAPL-USD", "2", "101", 1),
	}

	assembled, err := NewAssembler(symbols).Assemble(context.Background(), activities, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assembled) != 1 {
		t.Fatalf("holdings = %d, want 1 (same instrument must merge)", len(assembled))
	}
	h := assembled[0]
	if len(h.Activities) != 2 {
		t.Errorf("activities = %d, want 2", len(h.Activities))
	}
	if len(h.Identifiers) != 2 {
		t.Errorf("merged identifiers = %d, want 2", len(h.Identifiers))
	}
	if len(h.Profiles) != 1 {
		t.Errorf("profiles = %d, want 1", len(h.Profiles))
	}
}

func TestAssembleIdentifierOverlapSkipsResolution(t *testing.T) {
	symbols := &fakeSymbols{profiles: map[string]*domain.SymbolProfile{
		"MSFT": {Symbol: "MSFT", DataSource: "YAHOO"},
	}}

	activities := []domain.Activity{
		trade("t1", "MSFT", "1", "100", 0),
		trade("t2", "MSFT", "1", "110", 1),
	}

	assembled, err := NewAssembler(symbols).Assemble(context.Background(), activities, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assembled) != 1 {
		t.Fatalf("holdings = %d, want 1", len(assembled))
	}
	if symbols.calls != 1 {
		t.Errorf("MatchSymbol calls = %d, want 1 (overlap reuses holding)", symbols.calls)
	}
}

func TestAssembleUnresolvedActivityStaysUnassigned(t *testing.T) {
	symbols := &fakeSymbols{profiles: map[string]*domain.SymbolProfile{}}

	act := trade("t1", "OBSCURE", "1", "5", 0)
	assembled, err := NewAssembler(symbols).Assemble(context.Background(), []domain.Activity{act}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assembled) != 0 {
		t.Fatalf("holdings = %d, want 0", len(assembled))
	}
	if act.Base().HoldingID != "" {
		t.Errorf("holding id = %q, want empty (retried next run)", act.Base().HoldingID)
	}
}

func TestAssembleReusesPersistedHolding(t *testing.T) {
	symbols := &fakeSymbols{profiles: map[string]*domain.SymbolProfile{}}

	existing := &domain.Holding{
		ID:          "persisted-1",
		Profiles:    []domain.SymbolProfile{{Symbol: "VWRL.AS", DataSource: "YAHOO"}},
		Identifiers: []domain.PartialSymbolIdentifier{domain.NewIdentifier("VWRL")},
	}

	activities := []domain.Activity{trade("t1", "VWRL", "3", "90", 0)}

	assembled, err := NewAssembler(symbols).Assemble(context.Background(), activities, []*domain.Holding{existing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assembled) != 1 {
		t.Fatalf("holdings = %d, want 1", len(assembled))
	}
	if assembled[0].ID != "persisted-1" {
		t.Errorf("holding id = %q, want persisted-1", assembled[0].ID)
	}
	if symbols.calls != 0 {
		t.Errorf("MatchSymbol calls = %d, want 0", symbols.calls)
	}
	if activities[0].Base().HoldingID != "persisted-1" {
		t.Errorf("activity holding id = %q, want persisted-1", activities[0].Base().HoldingID)
	}
}

func TestAssembleDropsEmptyPersistedHolding(t *testing.T) {
	symbols := &fakeSymbols{profiles: map[string]*domain.SymbolProfile{}}

	existing := &domain.Holding{
		ID:          "stale",
		Profiles:    []domain.SymbolProfile{{Symbol: "OLD", DataSource: "YAHOO"}},
		Identifiers: []domain.PartialSymbolIdentifier{domain.NewIdentifier("OLD")},
	}

	assembled, err := NewAssembler(symbols).Assemble(context.Background(), nil, []*domain.Holding{existing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assembled) != 0 {
		t.Fatalf("holdings = %d, want 0 (no remaining activities)", len(assembled))
	}
}

func TestHoldingKeepsOneProfilePerDataSource(t *testing.T) {
	h := &domain.Holding{}
	h.AddProfile(domain.SymbolProfile{Symbol: "BTC-USD", DataSource: "YAHOO"})
	h.AddProfile(domain.SymbolProfile{Symbol: "btcusd", DataSource: "YAHOO"})
	h.AddProfile(domain.SymbolProfile{Symbol: "BTC-USD", DataSource: "COINGECKO"})

	if len(h.Profiles) != 2 {
		t.Errorf("profiles = %d, want 2 (one per data source)", len(h.Profiles))
	}
}
