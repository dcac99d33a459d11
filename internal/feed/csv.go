package feed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/portwatch/reconciler/internal/domain"
)

// CSVImporter reads pre-extracted partial activities from .csv files with a
// header row. Recognized columns: kind, date, currency, amount, unit_price,
// transaction_id, identifier, sorting_priority, description, product, mutation.
type CSVImporter struct{}

// Name implements Importer.
func (CSVImporter) Name() string { return "csv" }

// CanImport implements Importer.
func (CSVImporter) CanImport(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// Import implements Importer.
func (CSVImporter) Import(path, account string) ([]domain.PartialActivity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	partials := make([]domain.PartialActivity, 0, len(rows)-1)
	for n, row := range rows[1:] {
		date, err := parseDate(field(row, "date"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, n+2, err)
		}
		amount, err := decimal.NewFromString(field(row, "amount"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid amount: %w", path, n+2, err)
		}

		partial := domain.PartialActivity{
			Kind:          domain.ParseActivityKind(field(row, "kind")),
			Date:          date,
			Currency:      field(row, "currency"),
			Amount:        amount,
			TransactionID: field(row, "transaction_id"),
			Description:   field(row, "description"),
			Product:       field(row, "product"),
			Mutation:      field(row, "mutation"),
		}
		if raw := field(row, "unit_price"); raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid unit_price: %w", path, n+2, err)
			}
			partial.UnitPrice = &price
		}
		if raw := field(row, "sorting_priority"); raw != "" {
			priority, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid sorting_priority: %w", path, n+2, err)
			}
			partial.SortingPriority = &priority
		}
		if raw := field(row, "identifier"); raw != "" {
			partial.Identifiers = []domain.PartialSymbolIdentifier{domain.NewIdentifier(raw)}
		}
		partials = append(partials, partial)
	}
	return partials, nil
}
