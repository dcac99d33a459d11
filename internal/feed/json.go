package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/portwatch/reconciler/internal/domain"
)

// JSONImporter reads pre-extracted partial activities from .json files.
type JSONImporter struct{}

// Name implements Importer.
func (JSONImporter) Name() string { return "json" }

// CanImport implements Importer.
func (JSONImporter) CanImport(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

type jsonIdentifier struct {
	Identifier             string                 `json:"identifier"`
	AllowedAssetClasses    []domain.AssetClass    `json:"allowedAssetClasses,omitempty"`
	AllowedAssetSubClasses []domain.AssetSubClass `json:"allowedAssetSubClasses,omitempty"`
}

type jsonPartial struct {
	Kind            string           `json:"kind"`
	Date            string           `json:"date"`
	Currency        string           `json:"currency"`
	Amount          decimal.Decimal  `json:"amount"`
	UnitPrice       *decimal.Decimal `json:"unitPrice,omitempty"`
	TransactionID   string           `json:"transactionId,omitempty"`
	Identifiers     []jsonIdentifier `json:"identifiers,omitempty"`
	SortingPriority *int             `json:"sortingPriority,omitempty"`
	Description     string           `json:"description,omitempty"`
	Product         string           `json:"product,omitempty"`
	Mutation        string           `json:"mutation,omitempty"`
}

// Import implements Importer.
func (JSONImporter) Import(path, account string) ([]domain.PartialActivity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []jsonPartial
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	partials := make([]domain.PartialActivity, 0, len(records))
	for i, rec := range records {
		date, err := parseDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", path, i, err)
		}
		identifiers := make([]domain.PartialSymbolIdentifier, 0, len(rec.Identifiers))
		for _, id := range rec.Identifiers {
			identifiers = append(identifiers, domain.PartialSymbolIdentifier{
				Identifier:             id.Identifier,
				AllowedAssetClasses:    id.AllowedAssetClasses,
				AllowedAssetSubClasses: id.AllowedAssetSubClasses,
			})
		}
		partials = append(partials, domain.PartialActivity{
			Kind:            domain.ParseActivityKind(rec.Kind),
			Date:            date,
			Currency:        rec.Currency,
			Amount:          rec.Amount,
			UnitPrice:       rec.UnitPrice,
			TransactionID:   rec.TransactionID,
			Identifiers:     identifiers,
			SortingPriority: rec.SortingPriority,
			Description:     rec.Description,
			Product:         rec.Product,
			Mutation:        rec.Mutation,
		})
	}
	return partials, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}
