package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/damneddesigns/storefront/internal/domain/promotion"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

// GormPromotionRepository implements promotion.Repository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// FindByID finds a promotion with its conditions and actions by ID
func (r *GormPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Promotion, error) {
	var promo promotion.Promotion
	if err := r.db.WithContext(ctx).
		Preload("Conditions").
		Preload("Actions").
		First(&promo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &promo, nil
}

// FindByCouponCode finds a promotion by coupon code, case-insensitively
func (r *GormPromotionRepository) FindByCouponCode(ctx context.Context, couponCode string) (*promotion.Promotion, error) {
	var promo promotion.Promotion
	if err := r.db.WithContext(ctx).
		Preload("Conditions").
		Preload("Actions").
		First(&promo, "upper(coupon_code) = ?", strings.ToUpper(couponCode)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &promo, nil
}

// FindAll finds all promotions matching the filter
func (r *GormPromotionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]promotion.Promotion, error) {
	var promos []promotion.Promotion
	query := applyFilter(
		r.db.WithContext(ctx).Model(&promotion.Promotion{}).
			Preload("Conditions").
			Preload("Actions"),
		filter,
	)
	if err := query.Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}

// Save persists a promotion with its conditions and actions
func (r *GormPromotionRepository) Save(ctx context.Context, promo *promotion.Promotion) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(promo).Error
}

// Delete removes a promotion and its conditions and actions
func (r *GormPromotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&promotion.Condition{}, "promotion_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&promotion.Action{}, "promotion_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&promotion.Promotion{}, "id = ?", id).Error
	})
}

// CountRedemptions returns how many times a customer has redeemed a promotion
func (r *GormPromotionRepository) CountRedemptions(ctx context.Context, promotionID, customerID uuid.UUID) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&promotion.Redemption{}).
		Where("promotion_id = ? AND customer_id = ?", promotionID, customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// RecordRedemption records a redemption against an order
func (r *GormPromotionRepository) RecordRedemption(ctx context.Context, redemption *promotion.Redemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

// Ensure interface compliance
var _ promotion.Repository = (*GormPromotionRepository)(nil)
