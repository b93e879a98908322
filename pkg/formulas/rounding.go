package formulas

import "github.com/shopspring/decimal"

// Money values are rounded half-up: 0.115 becomes 0.12, never the
// banker's-rounding 0.11. decimal.Round ties away from zero, which is
// the behavior brokerage statements use.

// RoundCurrency rounds a currency amount to 2 decimal places, half-up.
func RoundCurrency(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// RoundPercent rounds a percentage to 1 decimal place, half-up.
// Used for RORC and annualized return figures.
func RoundPercent(value float64) float64 {
	return decimal.NewFromFloat(value).Round(1).InexactFloat64()
}
