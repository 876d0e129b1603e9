package wallet

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// FinalPrice returns the amount charged for a product listed at listed when
// the buyer holds the given rate discount (a percentage).
//
// A nil rate and a zero rate both mean "no discount". Neither the listed price
// nor the rate is validated here; SetDiscount guards the rate range on write.
func FinalPrice(listed decimal.Decimal, rate *decimal.Decimal) decimal.Decimal {
	if rate == nil || rate.IsZero() {
		return listed
	}
	discount := listed.Mul(*rate).Div(hundred)
	return listed.Sub(discount)
}

// ValidRate reports whether rate is a percentage in [0, 100].
func ValidRate(rate decimal.Decimal) bool {
	return !rate.LessThan(zero) && !rate.GreaterThan(hundred)
}
