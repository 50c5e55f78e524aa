package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/damneddesigns/storefront/internal/domain/fulfillment"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

// GormFulfillmentRepository implements fulfillment.ConfigRepository using GORM
type GormFulfillmentRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentRepository creates a new GormFulfillmentRepository
func NewGormFulfillmentRepository(db *gorm.DB) *GormFulfillmentRepository {
	return &GormFulfillmentRepository{db: db}
}

// GetConfig returns the fulfillment configuration; at most one row exists
func (r *GormFulfillmentRepository) GetConfig(ctx context.Context) (*fulfillment.Config, error) {
	var cfg fulfillment.Config
	if err := r.db.WithContext(ctx).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig persists the fulfillment configuration
func (r *GormFulfillmentRepository) SaveConfig(ctx context.Context, cfg *fulfillment.Config) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// FindExportByOrderID finds the export record for an order
func (r *GormFulfillmentRepository) FindExportByOrderID(ctx context.Context, orderID uuid.UUID) (*fulfillment.ExportRecord, error) {
	var record fulfillment.ExportRecord
	if err := r.db.WithContext(ctx).
		First(&record, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindPendingExports finds export records still waiting to be sent
func (r *GormFulfillmentRepository) FindPendingExports(ctx context.Context, limit int) ([]fulfillment.ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []fulfillment.ExportRecord
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []fulfillment.ExportStatus{
			fulfillment.ExportStatusPending,
			fulfillment.ExportStatusFailed,
		}).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SaveExport persists an export record
func (r *GormFulfillmentRepository) SaveExport(ctx context.Context, record *fulfillment.ExportRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Ensure interface compliance
var _ fulfillment.ConfigRepository = (*GormFulfillmentRepository)(nil)
