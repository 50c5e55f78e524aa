package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

// GormOrderRepository implements checkout.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its lines by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Order, error) {
	var order checkout.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByCode finds an order by its public code
func (r *GormOrderRepository) FindByCode(ctx context.Context, code string) (*checkout.Order, error) {
	var order checkout.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindActiveForCustomer finds the customer's cart, the one order still
// in the AddingItems state
func (r *GormOrderRepository) FindActiveForCustomer(ctx context.Context, customerID uuid.UUID) (*checkout.Order, error) {
	var order checkout.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("customer_id = ? AND state = ?", customerID, checkout.OrderStateAddingItems).
		Order("created_at DESC").
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByCustomer finds a customer's orders
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]checkout.Order, error) {
	var orders []checkout.Order
	query := applyFilter(
		r.db.WithContext(ctx).Model(&checkout.Order{}).
			Preload("Lines").
			Where("customer_id = ?", customerID),
		filter,
	)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByState finds orders in a given state
func (r *GormOrderRepository) FindByState(ctx context.Context, state checkout.OrderState, filter shared.Filter) ([]checkout.Order, error) {
	var orders []checkout.Order
	query := applyFilter(
		r.db.WithContext(ctx).Model(&checkout.Order{}).
			Preload("Lines").
			Where("state = ?", state),
		filter,
	)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save persists an order and its lines
func (r *GormOrderRepository) Save(ctx context.Context, order *checkout.Order) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(order).Error
}

// Delete removes an order and its lines
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&checkout.OrderLine{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&checkout.Order{}, "id = ?", id).Error
	})
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&checkout.Order{})
	for field, value := range filter.Filters {
		query = query.Where(field+" = ?", value)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure interface compliance
var _ checkout.OrderRepository = (*GormOrderRepository)(nil)
