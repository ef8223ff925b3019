package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxDiscountPercent caps the percentage a product discount may carry.
const MaxDiscountPercent = 90

var oneHundred = decimal.NewFromInt(100)

// ClampDiscountPercent forces a raw percentage into the [0, MaxDiscountPercent]
// range. Clamping is idempotent.
func ClampDiscountPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > MaxDiscountPercent {
		return MaxDiscountPercent
	}
	return percent
}

// NormalizeDiscount clamps the percentage and drops the expiry when the
// percentage is zero: a discount cannot have an expiry with no magnitude.
func NormalizeDiscount(percent int, until *time.Time) (int, *time.Time) {
	percent = ClampDiscountPercent(percent)
	if percent == 0 {
		return 0, nil
	}
	return percent, until
}

// IsDiscountActive reports whether a discount applies at the given instant.
// A nil expiry means the discount window is unbounded. An expiry exactly
// equal to now is already expired: the comparison is strictly greater-than.
func IsDiscountActive(percent int, until *time.Time, now time.Time) bool {
	if percent <= 0 {
		return false
	}
	if until == nil {
		return true
	}
	return until.After(now)
}

// FinalPrice applies the discount to basePrice when the discount is active,
// rounding to 2 decimal places, and returns basePrice unchanged otherwise.
// A negative base price is coerced to zero so the result is never negative.
func FinalPrice(basePrice decimal.Decimal, percent int, until *time.Time, now time.Time) decimal.Decimal {
	if basePrice.IsNegative() {
		basePrice = decimal.Zero
	}
	percent = ClampDiscountPercent(percent)
	if !IsDiscountActive(percent, until, now) {
		return basePrice
	}
	factor := oneHundred.Sub(decimal.NewFromInt(int64(percent))).Div(oneHundred)
	return basePrice.Mul(factor).Round(2)
}
