package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/portwatch/reconciler/internal/domain"
)

func writeSource(t *testing.T, dir, account, name, content string) {
	t.Helper()
	accountDir := filepath.Join(dir, account)
	if err := os.MkdirAll(accountDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(accountDir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadJSONAccount(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "broker-a", "trades.json", `[
		{"kind":"buy","date":"2024-03-15","currency":"USD","amount":"10","unitPrice":"100",
		 "transactionId":"tx1","identifiers":[{"identifier":"AAPL"}]},
		{"kind":"fee","date":"2024-03-15","currency":"USD","amount":"1.5","transactionId":"tx1"}
	]`)

	f := NewDirectoryFeed(dir, JSONImporter{}, CSVImporter{})
	byAccount, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	partials := byAccount["broker-a"]
	if len(partials) != 2 {
		t.Fatalf("partials = %d, want 2", len(partials))
	}
	if partials[0].Kind != domain.KindBuy || partials[0].UnitPrice == nil {
		t.Errorf("first partial = %+v, want buy with unit price", partials[0])
	}
	if partials[1].Kind != domain.KindFee {
		t.Errorf("second partial kind = %q, want fee", partials[1].Kind)
	}
}

func TestLoadCSVAccount(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "broker-b", "export.csv",
		"kind,date,currency,amount,unit_price,transaction_id,identifier\n"+
			"sell,2024-03-16,EUR,3,25.50,tx9,VWRL\n")

	f := NewDirectoryFeed(dir, JSONImporter{}, CSVImporter{})
	byAccount, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	partials := byAccount["broker-b"]
	if len(partials) != 1 {
		t.Fatalf("partials = %d, want 1", len(partials))
	}
	p := partials[0]
	if p.Kind != domain.KindSell || p.Currency != "EUR" || p.TransactionID != "tx9" {
		t.Errorf("partial = %+v", p)
	}
	if len(p.Identifiers) != 1 || p.Identifiers[0].Identifier != "VWRL" {
		t.Errorf("identifiers = %v, want [VWRL]", p.Identifiers)
	}
	if p.UnitPrice == nil || p.UnitPrice.String() != "25.5" {
		t.Errorf("unit price = %v, want 25.5", p.UnitPrice)
	}
}

func TestLoadSkipsUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "broker-c", "statement.pdf", "%PDF-1.4 not parseable here")
	writeSource(t, dir, "broker-c", "trades.json", `[{"kind":"interest","date":"2024-01-01","currency":"EUR","amount":"2"}]`)

	f := NewDirectoryFeed(dir, JSONImporter{}, CSVImporter{})
	byAccount, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byAccount["broker-c"]) != 1 {
		t.Errorf("partials = %d, want 1 (pdf skipped, json loaded)", len(byAccount["broker-c"]))
	}
}

func TestLoadUnknownKindBecomesUndefined(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "broker-d", "trades.json",
		`[{"kind":"mystery","date":"2024-01-01","currency":"EUR","amount":"1"}]`)

	f := NewDirectoryFeed(dir, JSONImporter{})
	byAccount, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byAccount["broker-d"][0].Kind != domain.KindUndefined {
		t.Errorf("kind = %q, want undefined", byAccount["broker-d"][0].Kind)
	}
}
