package catalog

import (
	"time"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// Collection groups products for navigation and SEO pages
type Collection struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	Enabled     bool
	Position    int
	ProductIDs  []uuid.UUID `gorm:"-"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCollection creates a new enabled collection
func NewCollection(name, description string, position int) (*Collection, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_COLLECTION_NAME", "Collection name cannot be empty")
	}
	slug, err := Slugify(name)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Collection{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug,
		Description: description,
		Enabled:     true,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
