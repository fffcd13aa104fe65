package model

import (
	"github.com/shopspring/decimal"
)

// Money is a price as returned by the remote API (plain JSON numbers in
// the store currency). decimal keeps cart totals exact when recomputed
// client-side.
type Money = decimal.Decimal

// NewMoney builds a whole-unit amount, mostly for tests and fixtures.
func NewMoney(units int64) Money {
	return decimal.NewFromInt(units)
}

// LineTotal returns price × count.
func LineTotal(price Money, count int) Money {
	return price.Mul(decimal.NewFromInt(int64(count)))
}

// FormatMoney renders an amount with the given currency label,
// e.g. "180.00 EGP".
func FormatMoney(m Money, currency string) string {
	if currency == "" {
		return m.StringFixed(2)
	}
	return m.StringFixed(2) + " " + currency
}
