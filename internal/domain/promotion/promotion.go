package promotion

import (
	"strings"
	"time"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConditionCode identifies a promotion precondition
type ConditionCode string

const (
	ConditionMinimumOrderAmount ConditionCode = "MINIMUM_ORDER_AMOUNT"
	ConditionCustomerGroup      ConditionCode = "CUSTOMER_GROUP"
)

// ActionCode identifies a promotion effect
type ActionCode string

const (
	ActionPercentageDiscount ActionCode = "PERCENTAGE_DISCOUNT"
	ActionFixedDiscount      ActionCode = "FIXED_DISCOUNT"
	ActionFreeShipping       ActionCode = "FREE_SHIPPING"
)

// Condition is a single precondition descriptor on a promotion
type Condition struct {
	ID          uuid.UUID
	PromotionID uuid.UUID
	Code        ConditionCode
	// Amount carries the threshold for MINIMUM_ORDER_AMOUNT
	Amount decimal.Decimal
	// Group carries the required segment for CUSTOMER_GROUP
	Group string `gorm:"column:customer_group"`
}

// TableName returns the database table name for conditions
func (Condition) TableName() string { return "promotion_conditions" }

// Action is a single effect descriptor on a promotion
type Action struct {
	ID          uuid.UUID
	PromotionID uuid.UUID
	Code        ActionCode
	// Amount is a percentage (0-100] for PERCENTAGE_DISCOUNT or a fixed
	// currency amount for FIXED_DISCOUNT; unused for FREE_SHIPPING
	Amount decimal.Decimal
}

// TableName returns the database table name for actions
func (Action) TableName() string { return "promotion_actions" }

// Promotion is a coupon-triggered discount definition
type Promotion struct {
	ID         uuid.UUID
	CouponCode string
	Name       string
	Enabled    bool
	StartsAt   *time.Time
	EndsAt     *time.Time
	// UsageLimitPerCustomer bounds redemptions per customer; zero means unlimited
	UsageLimitPerCustomer int
	Conditions            []Condition `gorm:"foreignKey:PromotionID"`
	Actions               []Action    `gorm:"foreignKey:PromotionID"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewPromotion creates an enabled promotion for a coupon code
func NewPromotion(couponCode, name string) (*Promotion, error) {
	couponCode = strings.ToUpper(strings.TrimSpace(couponCode))
	if couponCode == "" {
		return nil, shared.NewDomainError("INVALID_COUPON_CODE", "Coupon code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PROMOTION_NAME", "Promotion name cannot be empty")
	}
	now := time.Now()
	return &Promotion{
		ID:         uuid.New(),
		CouponCode: couponCode,
		Name:       name,
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AddCondition appends a condition descriptor
func (p *Promotion) AddCondition(code ConditionCode, amount decimal.Decimal, group string) {
	p.Conditions = append(p.Conditions, Condition{
		ID:          uuid.New(),
		PromotionID: p.ID,
		Code:        code,
		Amount:      amount,
		Group:       group,
	})
	p.UpdatedAt = time.Now()
}

// AddAction appends an action descriptor
func (p *Promotion) AddAction(code ActionCode, amount decimal.Decimal) {
	p.Actions = append(p.Actions, Action{
		ID:          uuid.New(),
		PromotionID: p.ID,
		Code:        code,
		Amount:      amount,
	})
	p.UpdatedAt = time.Now()
}

// IsActiveAt reports whether the promotion's date window contains t
func (p *Promotion) IsActiveAt(t time.Time) bool {
	if p.StartsAt != nil && t.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && t.After(*p.EndsAt) {
		return false
	}
	return true
}
