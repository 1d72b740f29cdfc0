package dto

import "github.com/shopspring/decimal"

// Money renders an amount rounded to cents, e.g. "90.00"
func Money(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// MoneyPtr renders an optional amount
func MoneyPtr(amount *float64) *string {
	if amount == nil {
		return nil
	}
	s := Money(*amount)
	return &s
}
