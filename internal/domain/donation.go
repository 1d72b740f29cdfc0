package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeDonation turns user-entered donation text into an amount.
// Unparseable or negative text becomes 0, and the result is raised to
// minimum when one is set.
func NormalizeDonation(text string, minimum *float64) float64 {
	amount := 0.0
	if d, err := decimal.NewFromString(strings.TrimSpace(text)); err == nil && d.IsPositive() {
		amount = d.InexactFloat64()
	}
	if minimum != nil && amount < *minimum {
		amount = *minimum
	}
	return amount
}
