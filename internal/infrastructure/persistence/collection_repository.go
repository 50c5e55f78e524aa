package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/damneddesigns/storefront/internal/domain/catalog"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

// GormCollectionRepository implements catalog.CollectionRepository using GORM.
// Membership lives in the collection_products join table.
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewGormCollectionRepository creates a new GormCollectionRepository
func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

// FindByID finds a collection by ID, with its member product IDs
func (r *GormCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Collection, error) {
	var collection catalog.Collection
	if err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadProductIDs(ctx, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// FindBySlug finds a collection by slug, with its member product IDs
func (r *GormCollectionRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Collection, error) {
	var collection catalog.Collection
	if err := r.db.WithContext(ctx).First(&collection, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadProductIDs(ctx, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// FindAll finds all collections matching the filter, ordered by position
func (r *GormCollectionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Collection, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "position"
		filter.OrderDir = "asc"
	}
	var collections []catalog.Collection
	query := applyFilter(r.db.WithContext(ctx).Model(&catalog.Collection{}), filter)
	if err := query.Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

// Save persists a collection
func (r *GormCollectionRepository) Save(ctx context.Context, collection *catalog.Collection) error {
	return r.db.WithContext(ctx).Save(collection).Error
}

// AddProduct adds a product to a collection
func (r *GormCollectionRepository) AddProduct(ctx context.Context, collectionID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO collection_products (collection_id, product_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		collectionID, productID,
	).Error
}

// RemoveProduct removes a product from a collection
func (r *GormCollectionRepository) RemoveProduct(ctx context.Context, collectionID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM collection_products WHERE collection_id = ? AND product_id = ?",
		collectionID, productID,
	).Error
}

// Delete removes a collection and its memberships
func (r *GormCollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM collection_products WHERE collection_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&catalog.Collection{}, "id = ?", id).Error
	})
}

func (r *GormCollectionRepository) loadProductIDs(ctx context.Context, collection *catalog.Collection) error {
	return r.db.WithContext(ctx).
		Raw("SELECT product_id FROM collection_products WHERE collection_id = ?", collection.ID).
		Scan(&collection.ProductIDs).Error
}

// Ensure interface compliance
var _ catalog.CollectionRepository = (*GormCollectionRepository)(nil)
