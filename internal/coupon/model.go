package coupon

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponInvalid  = errors.New("coupon is not valid or has expired")
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Coupon struct {
	ID            int64           `json:"id" db:"id"`
	Code          string          `json:"code" db:"code"`
	DiscountType  DiscountType    `json:"discount_type" db:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value" db:"discount_value"`
	MinimumAmount decimal.Decimal `json:"minimum_amount" db:"minimum_amount"`
	MaximumUses   int             `json:"maximum_uses" db:"maximum_uses"`
	UsedCount     int             `json:"used_count" db:"used_count"`
	ValidFrom     time.Time       `json:"valid_from" db:"valid_from"`
	ValidTo       time.Time       `json:"valid_to" db:"valid_to"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// IsValid reports whether the coupon can be redeemed at the given
// moment. It never mutates anything; incrementing used_count is the
// checkout transaction's job.
func (c *Coupon) IsValid(now time.Time) bool {
	return c.IsActive &&
		!now.Before(c.ValidFrom) &&
		!now.After(c.ValidTo) &&
		c.UsedCount < c.MaximumUses
}

// Discount returns the amount the coupon takes off an order of the
// given size. Zero if the coupon is invalid or the order is below the
// minimum. A fixed discount never exceeds the order amount.
func (c *Coupon) Discount(now time.Time, amount decimal.Decimal) decimal.Decimal {
	if !c.IsValid(now) || amount.LessThan(c.MinimumAmount) {
		return decimal.Zero
	}

	if c.DiscountType == DiscountPercentage {
		return amount.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
	}

	return decimal.Min(c.DiscountValue, amount)
}
