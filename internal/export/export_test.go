package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/portwatch/reconciler/internal/domain"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func trade(txID string, date time.Time, qty, price string) *domain.BuySellActivity {
	return &domain.BuySellActivity{
		BaseActivity: domain.BaseActivity{
			ID:            txID,
			Account:       "broker-a",
			Date:          date,
			TransactionID: txID,
		},
		Quantity:  d(qty),
		UnitPrice: domain.NewMoney("USD", d(price)),
	}
}

func aaplHolding() *domain.Holding {
	h := &domain.Holding{ID: "h-1"}
	h.AddProfile(domain.SymbolProfile{
		Symbol:        "AAPL",
		DataSource:    "YAHOO",
		Name:          "Apple Inc.",
		Currency:      "USD",
		AssetClass:    domain.AssetClassEquity,
		AssetSubClass: domain.SubClassStock,
	})
	h.AddActivity(trade("tx-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "10", "100"))
	h.AddActivity(trade("tx-2", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "-4", "110"))
	return h
}

func TestBuildRows(t *testing.T) {
	btc := &domain.Holding{ID: "h-2"}
	btc.AddProfile(domain.SymbolProfile{
		Symbol:     "BTC-USD",
		DataSource: "YAHOO",
		Name:       "Bitcoin",
		Currency:   "USD",
	})
	btc.AddActivity(trade("tx-3", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "0.5", "40000"))

	rows := BuildRows([]*domain.Holding{btc, aaplHolding()})
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Symbol != "AAPL" || rows[1].Symbol != "BTC-USD" {
		t.Errorf("rows not sorted by symbol: %q, %q", rows[0].Symbol, rows[1].Symbol)
	}

	aapl := rows[0]
	if !aapl.NetQuantity.Equal(d("6")) {
		t.Errorf("NetQuantity = %s, want 6", aapl.NetQuantity)
	}
	if !aapl.LastPrice.Equal(d("110")) {
		t.Errorf("LastPrice = %s, want 110", aapl.LastPrice)
	}
	if !aapl.MarketValue.Equal(d("660")) {
		t.Errorf("MarketValue = %s, want 660", aapl.MarketValue)
	}
	if aapl.Activities != 2 {
		t.Errorf("Activities = %d, want 2", aapl.Activities)
	}
	if got := aapl.LastActivity.Format("2006-01-02"); got != "2024-04-01" {
		t.Errorf("LastActivity = %s, want 2024-04-01", got)
	}
}

func TestBuildRowsSkipsUnresolvedHoldings(t *testing.T) {
	unresolved := &domain.Holding{ID: "h-3"}
	unresolved.AddActivity(trade("tx-9", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "1", "1"))

	rows := BuildRows([]*domain.Holding{unresolved, aaplHolding()})
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", rows[0].Symbol)
	}
}

type captureWriter struct {
	rows []HoldingRow
}

func (w *captureWriter) Write(_ context.Context, rows []HoldingRow) error {
	w.rows = rows
	return nil
}

func TestServiceExportDelegatesToWriter(t *testing.T) {
	writer := &captureWriter{}
	svc := NewService(writer)

	if err := svc.Export(context.Background(), []*domain.Holding{aaplHolding()}); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if len(writer.rows) != 1 {
		t.Fatalf("writer got %d rows, want 1", len(writer.rows))
	}
}

func TestXlsxWriterWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	writer := NewXlsxWriter(path)

	if err := writer.Write(context.Background(), BuildRows([]*domain.Holding{aaplHolding()})); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Holdings")
	if err != nil {
		t.Fatalf("reading sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want header plus one holding", len(rows))
	}
	if rows[0][0] != "Symbol" {
		t.Errorf("header cell = %q, want Symbol", rows[0][0])
	}
	if rows[1][0] != "AAPL" {
		t.Errorf("symbol cell = %q, want AAPL", rows[1][0])
	}
}
