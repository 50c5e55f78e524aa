package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

// GormShippingMethodRepository implements checkout.ShippingMethodRepository using GORM
type GormShippingMethodRepository struct {
	db *gorm.DB
}

// NewGormShippingMethodRepository creates a new GormShippingMethodRepository
func NewGormShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

// FindByID finds a shipping method by ID
func (r *GormShippingMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.ShippingMethod, error) {
	var method checkout.ShippingMethod
	if err := r.db.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &method, nil
}

// FindAllEnabled finds all enabled shipping methods
func (r *GormShippingMethodRepository) FindAllEnabled(ctx context.Context) ([]checkout.ShippingMethod, error) {
	var methods []checkout.ShippingMethod
	if err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("price ASC").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// Save persists a shipping method
func (r *GormShippingMethodRepository) Save(ctx context.Context, method *checkout.ShippingMethod) error {
	return r.db.WithContext(ctx).Save(method).Error
}

// Delete removes a shipping method
func (r *GormShippingMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&checkout.ShippingMethod{}, "id = ?", id).Error
}

// Ensure interface compliance
var _ checkout.ShippingMethodRepository = (*GormShippingMethodRepository)(nil)
