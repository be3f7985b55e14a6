package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Coupon is a discount code redeemable once per account.
type Coupon struct {
	Code               string
	DiscountPercentage decimal.NullDecimal
	DiscountAmount     decimal.NullDecimal
	ExpiresOn          time.Time
	CreatedAt          time.Time
}

// IsExpired reports whether the coupon expired before today. A coupon expiring today is still valid.
func (c Coupon) IsExpired(today time.Time) bool {
	return toDate(c.ExpiresOn).Before(toDate(today))
}

// Apply discounts amount: percentage first, then the fixed amount, clamped at zero
// and rounded to cents.
func (c Coupon) Apply(amount decimal.Decimal) decimal.Decimal {
	if c.DiscountPercentage.Valid {
		factor := decimal.NewFromInt(1).Sub(c.DiscountPercentage.Decimal.Div(hundred))
		amount = amount.Mul(factor)
	}
	if c.DiscountAmount.Valid {
		amount = amount.Sub(c.DiscountAmount.Decimal)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2)
}
