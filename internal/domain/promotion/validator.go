package promotion

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidationInput carries the order facts a promotion is evaluated against
type ValidationInput struct {
	OrderSubTotal decimal.Decimal
	CustomerGroup string
	// UsageCount is how many times this customer has already redeemed the coupon
	UsageCount int
	Now        time.Time
}

// ValidationResult is the flat outcome of evaluating a coupon
type ValidationResult struct {
	Valid          bool            `json:"valid"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FreeShipping   bool            `json:"free_shipping"`
	ErrorCode      string          `json:"error_code,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

func invalid(code, message string) ValidationResult {
	return ValidationResult{
		Valid:          false,
		DiscountAmount: decimal.Zero,
		ErrorCode:      code,
		ErrorMessage:   message,
	}
}

// Validate evaluates the promotion against the input in a single pass:
// enabled flag, date window, usage limit, then each condition, then each
// action to accumulate the discount.
func (p *Promotion) Validate(input ValidationInput) ValidationResult {
	if !p.Enabled {
		return invalid("COUPON_INACTIVE", "This coupon is no longer active")
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	if !p.IsActiveAt(now) {
		return invalid("COUPON_EXPIRED", "This coupon is outside its valid date range")
	}

	if p.UsageLimitPerCustomer > 0 && input.UsageCount >= p.UsageLimitPerCustomer {
		return invalid("COUPON_LIMIT_REACHED", "This coupon has already been used the maximum number of times")
	}

	for _, cond := range p.Conditions {
		switch cond.Code {
		case ConditionMinimumOrderAmount:
			if input.OrderSubTotal.LessThan(cond.Amount) {
				return invalid("MINIMUM_NOT_MET",
					"Order subtotal must be at least "+cond.Amount.StringFixed(2))
			}
		case ConditionCustomerGroup:
			if input.CustomerGroup != cond.Group {
				return invalid("GROUP_REQUIRED", "This coupon is limited to a customer group")
			}
		default:
			// Unknown condition codes fail closed: a promotion we cannot
			// evaluate must not grant a discount.
			return invalid("UNKNOWN_CONDITION", "This coupon cannot be evaluated")
		}
	}

	result := ValidationResult{Valid: true, DiscountAmount: decimal.Zero}
	for _, action := range p.Actions {
		switch action.Code {
		case ActionPercentageDiscount:
			pct := action.Amount.Div(decimal.NewFromInt(100))
			result.DiscountAmount = result.DiscountAmount.Add(input.OrderSubTotal.Mul(pct).Round(2))
		case ActionFixedDiscount:
			result.DiscountAmount = result.DiscountAmount.Add(action.Amount)
		case ActionFreeShipping:
			result.FreeShipping = true
		}
	}

	// A discount can never exceed the order subtotal
	if result.DiscountAmount.GreaterThan(input.OrderSubTotal) {
		result.DiscountAmount = input.OrderSubTotal
	}

	return result
}
