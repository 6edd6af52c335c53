// Package money holds integer minor-unit arithmetic shared by discounts and coupons.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// MaxPercentage is the upper bound for percentage discount values.
const MaxPercentage = 100

// Reduction returns how much a discount of the given type and value removes
// from current. Percentages are floored; the result never exceeds current and
// is never negative.
func Reduction(kind enums.DiscountType, value, current int64) int64 {
	if current <= 0 || value <= 0 {
		return 0
	}

	var amount int64
	switch kind {
	case enums.DiscountTypePercentage:
		amount = current * value / 100
	case enums.DiscountTypeFixed:
		amount = value
	default:
		return 0
	}

	if amount > current {
		return current
	}
	return amount
}

// Floor returns v clamped at zero.
func Floor(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// PercentOf returns part/whole as a whole-number percentage, rounded half away
// from zero. A non-positive whole yields 0.
func PercentOf(part, whole int64) int64 {
	if whole <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).
		Round(0)
	return pct.IntPart()
}
