package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMinorUnitsBasics(t *testing.T) {
	if !MinorUnits(0).IsZero() {
		t.Error("0 must be zero")
	}
	if !MinorUnits(5).IsPositive() || MinorUnits(-5).IsPositive() {
		t.Error("IsPositive wrong")
	}
	if !MinorUnits(-5).IsNegative() || MinorUnits(5).IsNegative() {
		t.Error("IsNegative wrong")
	}
	if MinorUnits(5).Neg() != -5 {
		t.Error("Neg wrong")
	}
	if MinorUnits(-7).Abs() != 7 || MinorUnits(7).Abs() != 7 {
		t.Error("Abs wrong")
	}
	if MinorUnits(250).Mul(3) != 750 {
		t.Error("Mul wrong")
	}
	if MaxMinorUnits(3, 9) != 9 || MaxMinorUnits(9, 3) != 9 {
		t.Error("MaxMinorUnits wrong")
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	tests := []struct {
		minor MinorUnits
		major string
	}{
		{12345, "123.45"},
		{100, "1"},
		{1, "0.01"},
		{-995, "-9.95"},
		{0, "0"},
	}
	for _, tt := range tests {
		d := tt.minor.Decimal()
		if d.String() != tt.major {
			t.Errorf("Decimal(%d) = %s, want %s", tt.minor, d.String(), tt.major)
		}
		if got := NewMinorUnitsFromDecimal(d); got != tt.minor {
			t.Errorf("round trip of %d = %d", tt.minor, got)
		}
	}
}

func TestNewMinorUnitsFromDecimalRounds(t *testing.T) {
	tests := []struct {
		major string
		want  MinorUnits
	}{
		{"1.005", 101},
		{"1.004", 100},
		{"0.999", 100},
		{"-1.005", -101},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.major)
		if got := NewMinorUnitsFromDecimal(d); got != tt.want {
			t.Errorf("NewMinorUnitsFromDecimal(%s) = %d, want %d", tt.major, got, tt.want)
		}
	}
}

func TestSplitIncludedTax(t *testing.T) {
	tests := []struct {
		name    string
		gross   MinorUnits
		rate    string
		wantNet MinorUnits
		wantTax MinorUnits
	}{
		{"vat 12 exact", 11200, "12", 10000, 1200},
		{"vat 12 rounding", 100, "12", 89, 11},
		{"zero gross", 0, "12", 0, 0},
		{"zero rate", 5000, "0", 5000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, tax := SplitIncludedTax(tt.gross, decimal.RequireFromString(tt.rate))
			if net != tt.wantNet || tax != tt.wantTax {
				t.Errorf("SplitIncludedTax(%d, %s) = (%d, %d), want (%d, %d)",
					tt.gross, tt.rate, net, tax, tt.wantNet, tt.wantTax)
			}
			if net+tax != tt.gross {
				t.Errorf("net %d + tax %d != gross %d", net, tax, tt.gross)
			}
		})
	}
}

func TestMarginPercent(t *testing.T) {
	tests := []struct {
		profit MinorUnits
		sales  MinorUnits
		want   float64
	}{
		{1150, 2000, 57.5},
		{1, 3, 33.33},
		{-500, 1000, -50},
		{0, 1000, 0},
		{1000, 0, 0},
	}
	for _, tt := range tests {
		if got := MarginPercent(tt.profit, tt.sales); got != tt.want {
			t.Errorf("MarginPercent(%d, %d) = %v, want %v", tt.profit, tt.sales, got, tt.want)
		}
	}
}
