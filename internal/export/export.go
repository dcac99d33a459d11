// Package export renders the assembled holdings as a report, either to an
// xlsx file or to a Google Sheets spreadsheet.
package export

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/portwatch/reconciler/internal/domain"
)

// HoldingRow is one line of the holdings report.
type HoldingRow struct {
	Symbol       string
	DataSource   string
	Name         string
	Currency     string
	AssetClass   domain.AssetClass
	SubClass     domain.AssetSubClass
	NetQuantity  decimal.Decimal
	LastPrice    decimal.Decimal
	MarketValue  decimal.Decimal
	Activities   int
	LastActivity time.Time
}

// SheetWriter writes holding rows to a report destination.
type SheetWriter interface {
	Write(ctx context.Context, rows []HoldingRow) error
}

// Service turns holdings into report rows and delegates writing.
type Service struct {
	writer SheetWriter
}

// NewService creates an export Service.
func NewService(writer SheetWriter) *Service {
	return &Service{writer: writer}
}

// Export writes a report for the given holdings, sorted by symbol.
func (s *Service) Export(ctx context.Context, hs []*domain.Holding) error {
	return s.writer.Write(ctx, BuildRows(hs))
}

// BuildRows flattens holdings into report rows. Holdings without a resolved
// profile are skipped; they carry nothing presentable yet.
func BuildRows(hs []*domain.Holding) []HoldingRow {
	rows := make([]HoldingRow, 0, len(hs))
	for _, h := range hs {
		profile := h.Profile()
		if profile == nil {
			continue
		}
		h.SortActivities()

		var last time.Time
		if n := len(h.Activities); n > 0 {
			last = h.Activities[n-1].Base().Date
		}

		quantity := h.NetQuantity()
		price := h.LastKnownUnitPrice()
		rows = append(rows, HoldingRow{
			Symbol:       profile.Symbol,
			DataSource:   profile.DataSource,
			Name:         profile.Name,
			Currency:     profile.Currency,
			AssetClass:   profile.AssetClass,
			SubClass:     profile.AssetSubClass,
			NetQuantity:  quantity,
			LastPrice:    price,
			MarketValue:  quantity.Mul(price),
			Activities:   len(h.Activities),
			LastActivity: last,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })
	return rows
}

// reportHeader is shared by both writers so the two outputs stay in step.
var reportHeader = []string{
	"Symbol", "Data Source", "Name", "Currency", "Asset Class", "Sub Class",
	"Quantity", "Last Price", "Market Value", "Activities", "Last Activity",
}

func rowCells(row HoldingRow) []any {
	var last any
	if !row.LastActivity.IsZero() {
		last = row.LastActivity.UTC().Format("2006-01-02")
	}
	return []any{
		row.Symbol, row.DataSource, row.Name, row.Currency,
		string(row.AssetClass), string(row.SubClass),
		toFloat(row.NetQuantity), toFloat(row.LastPrice), toFloat(row.MarketValue),
		row.Activities, last,
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
