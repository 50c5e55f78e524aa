package fulfillment

import (
	"context"
	"time"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// Config holds the connection settings for the external fulfillment house.
// Orders are exported there for pick/pack/ship once payment settles.
type Config struct {
	ID        uuid.UUID
	Endpoint  string
	OwnerID   string
	Username  string
	Password  string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name for the fulfillment configuration
func (Config) TableName() string { return "fulfillment_configs" }

// NewConfig creates an enabled fulfillment configuration
func NewConfig(endpoint, ownerID, username, password string) (*Config, error) {
	if endpoint == "" {
		return nil, shared.NewDomainError("INVALID_ENDPOINT", "Fulfillment endpoint is required")
	}
	if ownerID == "" {
		return nil, shared.NewDomainError("INVALID_OWNER_ID", "Fulfillment owner ID is required")
	}
	now := time.Now()
	return &Config{
		ID:        uuid.New(),
		Endpoint:  endpoint,
		OwnerID:   ownerID,
		Username:  username,
		Password:  password,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ExportStatus tracks the outcome of exporting one order
type ExportStatus string

const (
	ExportStatusPending ExportStatus = "PENDING"
	ExportStatusSent    ExportStatus = "SENT"
	ExportStatusFailed  ExportStatus = "FAILED"
)

// ExportRecord is the audit trail of an order export attempt
type ExportRecord struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	OrderCode  string
	Status     ExportStatus
	Attempts   int
	LastError  string
	ExportedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the database table name for export records
func (ExportRecord) TableName() string { return "fulfillment_exports" }

// NewExportRecord creates a pending export record for an order
func NewExportRecord(orderID uuid.UUID, orderCode string) *ExportRecord {
	now := time.Now()
	return &ExportRecord{
		ID:        uuid.New(),
		OrderID:   orderID,
		OrderCode: orderCode,
		Status:    ExportStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkSent records a successful export
func (r *ExportRecord) MarkSent() {
	now := time.Now()
	r.Status = ExportStatusSent
	r.ExportedAt = &now
	r.LastError = ""
	r.UpdatedAt = now
}

// MarkFailed records a failed attempt
func (r *ExportRecord) MarkFailed(reason string) {
	r.Status = ExportStatusFailed
	r.Attempts++
	r.LastError = reason
	r.UpdatedAt = time.Now()
}

// ConfigRepository persists the fulfillment configuration and export records
type ConfigRepository interface {
	GetConfig(ctx context.Context) (*Config, error)
	SaveConfig(ctx context.Context, cfg *Config) error
	FindExportByOrderID(ctx context.Context, orderID uuid.UUID) (*ExportRecord, error)
	FindPendingExports(ctx context.Context, limit int) ([]ExportRecord, error)
	SaveExport(ctx context.Context, record *ExportRecord) error
}
