// Package moneyx converts between decimal API amounts and int64 minor units.
package moneyx

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits of a currency amount.
const Scale = 2

var (
	ErrPrecision = errors.New("moneyx: amount has more than 2 decimal places")
	ErrRange     = errors.New("moneyx: amount out of range")
)

// maxCents bounds amounts well inside int64.
var maxCents = decimal.New(1, 15)

// ToCents converts d to minor units, rejecting sub-cent precision.
func ToCents(d decimal.Decimal) (int64, error) {
	cents := d.Shift(Scale)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, ErrPrecision
	}
	if cents.Abs().GreaterThan(maxCents) {
		return 0, ErrRange
	}
	return cents.IntPart(), nil
}

// Parse converts a decimal string such as "-12.50" to minor units.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("moneyx: parse %q: %w", s, err)
	}
	return ToCents(d)
}

// FromCents converts minor units back to a decimal with two places.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Scale)
}

// Format renders minor units as a fixed two-place string.
func Format(cents int64) string {
	return FromCents(cents).StringFixed(Scale)
}
