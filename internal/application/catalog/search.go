package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/damneddesigns/storefront/internal/domain/catalog"
)

// ProductSearcher indexes products in an external search engine and
// answers free-text queries. Implementations return the matching product
// IDs ranked by relevance.
type ProductSearcher interface {
	IndexProduct(ctx context.Context, product *catalog.Product) error
	RemoveProduct(ctx context.Context, productID uuid.UUID) error
	Search(ctx context.Context, query string, page, pageSize int) ([]uuid.UUID, int64, error)
}
