package checkout

import (
	"context"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository persists orders and their lines
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByCode(ctx context.Context, code string) (*Order, error)
	FindActiveForCustomer(ctx context.Context, customerID uuid.UUID) (*Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)
	FindByState(ctx context.Context, state OrderState, filter shared.Filter) ([]Order, error)
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ShippingMethodRepository persists shipping methods
type ShippingMethodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ShippingMethod, error)
	FindAllEnabled(ctx context.Context) ([]ShippingMethod, error)
	Save(ctx context.Context, method *ShippingMethod) error
	Delete(ctx context.Context, id uuid.UUID) error
}
