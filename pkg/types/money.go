package types

import "github.com/shopspring/decimal"

// Money arithmetic stays in integer cents everywhere; decimal is used only
// at the presentation edge so many line items can never accumulate float
// rounding drift.

var centsPerUnit = decimal.NewFromInt(100)

// FormatCents renders integer cents as a decimal currency string ("11.50").
func FormatCents(cents int) string {
	return decimal.NewFromInt(int64(cents)).Div(centsPerUnit).StringFixed(2)
}
