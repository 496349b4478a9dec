// Package types provides shared value types for the engine.
//
// All monetary amounts are stored as integer minor units (centavos).
// Integer arithmetic keeps order totals exact and makes payment status
// derivation a plain comparison instead of an epsilon check.
package types

import (
	"github.com/shopspring/decimal"
)

// MinorUnits represents a monetary value in minor currency units.
// Storage: int64 - sufficient for ±92 quadrillion minor units.
// Example: PHP 123.45 → 12345.
type MinorUnits int64

// minorPerMajor is the number of minor units in one major unit.
const minorPerMajor = 100

func (m MinorUnits) IsZero() bool     { return m == 0 }
func (m MinorUnits) IsPositive() bool { return m > 0 }
func (m MinorUnits) IsNegative() bool { return m < 0 }
func (m MinorUnits) Neg() MinorUnits  { return -m }

func (m MinorUnits) Abs() MinorUnits {
	if m < 0 {
		return -m
	}
	return m
}

// Mul multiplies the amount by an integer quantity.
func (m MinorUnits) Mul(qty int) MinorUnits {
	return m * MinorUnits(qty)
}

// Decimal converts minor units to a major-unit decimal for display
// and division-heavy math.
func (m MinorUnits) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// NewMinorUnitsFromDecimal converts a major-unit decimal into minor units,
// rounding to the nearest minor unit.
func NewMinorUnitsFromDecimal(d decimal.Decimal) MinorUnits {
	return MinorUnits(d.Shift(2).Round(0).IntPart())
}

// MaxMinorUnits returns the larger of a and b.
func MaxMinorUnits(a, b MinorUnits) MinorUnits {
	if a > b {
		return a
	}
	return b
}

// SplitIncludedTax splits a tax-inclusive gross amount into its net and tax
// parts for a given tax rate percent (e.g. 12 for VAT-inclusive pricing).
// net + tax always equals gross; the rounding remainder lands on the net part.
func SplitIncludedTax(gross MinorUnits, ratePercent decimal.Decimal) (net, tax MinorUnits) {
	if gross == 0 || ratePercent.IsZero() {
		return gross, 0
	}
	divisor := decimal.NewFromInt(100).Add(ratePercent)
	taxDec := gross.Decimal().Mul(ratePercent).Div(divisor).Round(2)
	tax = NewMinorUnitsFromDecimal(taxDec)
	net = gross - tax
	return net, tax
}

// MarginPercent returns profit/sales*100 rounded to two decimal places.
// Returns 0 when sales is zero.
func MarginPercent(profit, sales MinorUnits) float64 {
	if sales == 0 {
		return 0
	}
	pct := decimal.New(int64(profit), 0).
		Div(decimal.New(int64(sales), 0)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := pct.Float64()
	return f
}
