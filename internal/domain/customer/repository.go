package customer

import (
	"context"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists customers and their addresses
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
