package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPromotion(t *testing.T) *Promotion {
	t.Helper()
	p, err := NewPromotion("save20", "20% off")
	require.NoError(t, err)
	return p
}

func TestNewPromotionNormalizesCode(t *testing.T) {
	p := newTestPromotion(t)
	assert.Equal(t, "SAVE20", p.CouponCode)
	assert.True(t, p.Enabled)

	_, err := NewPromotion("  ", "blank")
	assert.Error(t, err)
}

func TestValidatePercentageDiscount(t *testing.T) {
	p := newTestPromotion(t)
	p.AddAction(ActionPercentageDiscount, decimal.NewFromInt(20))

	result := p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(150)})
	assert.True(t, result.Valid)
	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(30)))
	assert.False(t, result.FreeShipping)
}

func TestValidateFixedDiscountCappedAtSubtotal(t *testing.T) {
	p := newTestPromotion(t)
	p.AddAction(ActionFixedDiscount, decimal.NewFromInt(50))

	result := p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(30)})
	assert.True(t, result.Valid)
	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(30)))
}

func TestValidateFreeShipping(t *testing.T) {
	p := newTestPromotion(t)
	p.AddAction(ActionFreeShipping, decimal.Zero)

	result := p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(10)})
	assert.True(t, result.Valid)
	assert.True(t, result.FreeShipping)
	assert.True(t, result.DiscountAmount.IsZero())
}

func TestValidateDisabled(t *testing.T) {
	p := newTestPromotion(t)
	p.Enabled = false

	result := p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(100)})
	assert.False(t, result.Valid)
	assert.Equal(t, "COUPON_INACTIVE", result.ErrorCode)
}

func TestValidateDateWindow(t *testing.T) {
	p := newTestPromotion(t)
	p.AddAction(ActionFixedDiscount, decimal.NewFromInt(5))

	past := time.Now().Add(-48 * time.Hour)
	earlier := time.Now().Add(-24 * time.Hour)
	p.StartsAt = &past
	p.EndsAt = &earlier

	result := p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(100)})
	assert.False(t, result.Valid)
	assert.Equal(t, "COUPON_EXPIRED", result.ErrorCode)

	// inside the window
	result = p.Validate(ValidationInput{
		OrderSubTotal: decimal.NewFromInt(100),
		Now:           time.Now().Add(-36 * time.Hour),
	})
	assert.True(t, result.Valid)
}

func TestValidateUsageLimit(t *testing.T) {
	p := newTestPromotion(t)
	p.UsageLimitPerCustomer = 2
	p.AddAction(ActionFixedDiscount, decimal.NewFromInt(5))

	result := p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(100), UsageCount: 1})
	assert.True(t, result.Valid)

	result = p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(100), UsageCount: 2})
	assert.False(t, result.Valid)
	assert.Equal(t, "COUPON_LIMIT_REACHED", result.ErrorCode)
}

func TestValidateMinimumOrderAmount(t *testing.T) {
	p := newTestPromotion(t)
	p.AddCondition(ConditionMinimumOrderAmount, decimal.NewFromInt(100), "")
	p.AddAction(ActionPercentageDiscount, decimal.NewFromInt(10))

	result := p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(99)})
	assert.False(t, result.Valid)
	assert.Equal(t, "MINIMUM_NOT_MET", result.ErrorCode)

	result = p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(100)})
	assert.True(t, result.Valid)
	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(10)))
}

func TestValidateCustomerGroup(t *testing.T) {
	p := newTestPromotion(t)
	p.AddCondition(ConditionCustomerGroup, decimal.Zero, "WHOLESALE")
	p.AddAction(ActionPercentageDiscount, decimal.NewFromInt(25))

	result := p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(200), CustomerGroup: "RETAIL"})
	assert.False(t, result.Valid)
	assert.Equal(t, "GROUP_REQUIRED", result.ErrorCode)

	result = p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(200), CustomerGroup: "WHOLESALE"})
	assert.True(t, result.Valid)
	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(50)))
}

func TestValidateStackedActions(t *testing.T) {
	p := newTestPromotion(t)
	p.AddAction(ActionPercentageDiscount, decimal.NewFromInt(10))
	p.AddAction(ActionFixedDiscount, decimal.NewFromInt(5))
	p.AddAction(ActionFreeShipping, decimal.Zero)

	result := p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(100)})
	assert.True(t, result.Valid)
	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(15)))
	assert.True(t, result.FreeShipping)
}

func TestValidateUnknownConditionFailsClosed(t *testing.T) {
	p := newTestPromotion(t)
	p.Conditions = append(p.Conditions, Condition{Code: ConditionCode("MYSTERY")})
	p.AddAction(ActionFixedDiscount, decimal.NewFromInt(5))

	result := p.Validate(ValidationInput{OrderSubTotal: decimal.NewFromInt(100)})
	assert.False(t, result.Valid)
	assert.Equal(t, "UNKNOWN_CONDITION", result.ErrorCode)
}
