package domain

import "github.com/shopspring/decimal"

// Money is an amount in a single currency.
type Money struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewMoney creates a Money value.
func NewMoney(currency string, amount decimal.Decimal) Money {
	return Money{Currency: currency, Amount: amount}
}

// Equal reports whether two Money values have the same currency and amount.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// MoneysEqual compares two Money slices pairwise, order-sensitive.
func MoneysEqual(a, b []Money) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
