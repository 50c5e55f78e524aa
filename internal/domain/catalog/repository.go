package catalog

import (
	"context"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository persists products and their variants
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindVariant(ctx context.Context, variantID uuid.UUID) (*ProductVariant, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	FindByCollection(ctx context.Context, collectionID uuid.UUID, filter shared.Filter) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	SaveVariant(ctx context.Context, variant *ProductVariant) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// CollectionRepository persists collections
type CollectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Collection, error)
	FindBySlug(ctx context.Context, slug string) (*Collection, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Collection, error)
	Save(ctx context.Context, collection *Collection) error
	AddProduct(ctx context.Context, collectionID, productID uuid.UUID) error
	RemoveProduct(ctx context.Context, collectionID, productID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
