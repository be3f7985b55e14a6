package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func pct(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func TestCoupon_Apply(t *testing.T) {
	cases := []struct {
		name   string
		coupon Coupon
		amount string
		want   string
	}{
		{"percentage then fixed", Coupon{DiscountPercentage: pct("10"), DiscountAmount: pct("5")}, "300", "265"},
		{"percentage only", Coupon{DiscountPercentage: pct("25")}, "300", "225"},
		{"fixed only", Coupon{DiscountAmount: pct("50")}, "300", "250"},
		{"no discount", Coupon{}, "300", "300"},
		{"clamped at zero", Coupon{DiscountAmount: pct("500")}, "300", "0"},
		{"full percentage", Coupon{DiscountPercentage: pct("100"), DiscountAmount: pct("1")}, "300", "0"},
		{"rounds half away from zero", Coupon{DiscountPercentage: pct("50")}, "100.05", "50.03"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.coupon.Apply(decimal.RequireFromString(tc.amount))
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestCoupon_OrderMatters(t *testing.T) {
	c := Coupon{DiscountPercentage: pct("10"), DiscountAmount: pct("5")}
	got := c.Apply(decimal.NewFromInt(300))
	// fixed-then-percentage would give 265.5
	assert.Equal(t, "265", got.String())
}

func TestCoupon_IsExpired(t *testing.T) {
	today := time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)

	assert.False(t, Coupon{ExpiresOn: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)}.IsExpired(today))
	assert.False(t, Coupon{ExpiresOn: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)}.IsExpired(today))
	assert.True(t, Coupon{ExpiresOn: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)}.IsExpired(today))
}
