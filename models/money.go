package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseCents converts an amount in major units ("100.00") into cents.
func ParseCents(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", amount)
	}
	return cents.IntPart(), nil
}

// FormatCents renders cents as a major unit amount with two decimals.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
