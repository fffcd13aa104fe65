package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name  string
		price string
		count int
		want  string
	}{
		{"single", "40", 1, "40"},
		{"three", "40", 3, "120"},
		{"fractional", "19.99", 3, "59.97"},
		{"zero count", "60", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(decimal.RequireFromString(tt.price), tt.count)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("LineTotal(%s, %d) = %s, want %s", tt.price, tt.count, got, tt.want)
			}
		})
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   Money
		currency string
		want     string
	}{
		{NewMoney(180), "EGP", "180.00 EGP"},
		{decimal.RequireFromString("59.97"), "", "59.97"},
		{decimal.Zero, "EGP", "0.00 EGP"},
	}

	for _, tt := range tests {
		if got := FormatMoney(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatMoney(%s, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}
