package domain

// SymbolProfile is a canonical instrument as reported by a symbol data provider.
type SymbolProfile struct {
	Symbol        string                    `json:"symbol"`
	DataSource    string                    `json:"dataSource"`
	ISIN          string                    `json:"isin,omitempty"`
	Name          string                    `json:"name,omitempty"`
	Currency      string                    `json:"currency,omitempty"`
	AssetClass    AssetClass                `json:"assetClass,omitempty"`
	AssetSubClass AssetSubClass             `json:"assetSubClass,omitempty"`
	Identifiers   []PartialSymbolIdentifier `json:"identifiers,omitempty"`
}

// Key returns the instrument identity used for lookup tables. Two profiles with
// the same key describe the same instrument even if the symbol spelling differs
// by case or dashes.
func (p SymbolProfile) Key() string {
	return NormalizeSymbol(p.Symbol) + "|" + p.DataSource
}

// SameInstrument reports whether two profiles describe the same instrument,
// comparing (symbol, dataSource) with case- and dash-insensitive symbols.
func (p SymbolProfile) SameInstrument(other SymbolProfile) bool {
	return p.DataSource == other.DataSource &&
		NormalizeSymbol(p.Symbol) == NormalizeSymbol(other.Symbol)
}

// IsCrypto reports whether the instrument is a cryptocurrency.
func (p SymbolProfile) IsCrypto() bool {
	return p.AssetSubClass == SubClassCryptocurrency
}
