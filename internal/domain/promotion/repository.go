package promotion

import (
	"context"
	"time"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists promotions and redemption history
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
	FindByCouponCode(ctx context.Context, couponCode string) (*Promotion, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Promotion, error)
	Save(ctx context.Context, promotion *Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error

	// CountRedemptions returns how many times a customer has redeemed a promotion
	CountRedemptions(ctx context.Context, promotionID, customerID uuid.UUID) (int, error)
	// RecordRedemption records a redemption against an order
	RecordRedemption(ctx context.Context, redemption *Redemption) error
}

// Redemption records a single use of a promotion on an order
type Redemption struct {
	ID          uuid.UUID
	PromotionID uuid.UUID
	CustomerID  uuid.UUID
	OrderID     uuid.UUID
	RedeemedAt  time.Time
}

// TableName returns the database table name for redemptions
func (Redemption) TableName() string { return "promotion_redemptions" }

// NewRedemption creates a redemption record
func NewRedemption(promotionID, customerID, orderID uuid.UUID) *Redemption {
	return &Redemption{
		ID:          uuid.New(),
		PromotionID: promotionID,
		CustomerID:  customerID,
		OrderID:     orderID,
		RedeemedAt:  time.Now(),
	}
}
