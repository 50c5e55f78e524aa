package catalog

import (
	"time"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item with one or more variants
type Product struct {
	ID               uuid.UUID
	Name             string
	Slug             string
	Description      string
	Enabled          bool
	FeaturedAssetURL string
	Variants         []ProductVariant `gorm:"foreignKey:ProductID"`
	Collections      []uuid.UUID      `gorm:"-"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProductVariant is a concrete purchasable SKU of a product
type ProductVariant struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	SKU        string
	Name       string
	Price      decimal.Decimal
	Currency   valueobject.Currency
	StockLevel int
	Enabled    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewProduct creates a new enabled product with a slug derived from its name
func NewProduct(name, description string) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	slug, err := Slugify(name)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug,
		Description: description,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AddVariant adds a new variant to the product
func (p *Product) AddVariant(sku, name string, price valueobject.Money, stockLevel int) (*ProductVariant, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if stockLevel < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock level cannot be negative")
	}
	for _, v := range p.Variants {
		if v.SKU == sku {
			return nil, shared.ErrAlreadyExists
		}
	}

	now := time.Now()
	variant := ProductVariant{
		ID:         uuid.New(),
		ProductID:  p.ID,
		SKU:        sku,
		Name:       name,
		Price:      price.Amount(),
		Currency:   price.Currency(),
		StockLevel: stockLevel,
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	p.Variants = append(p.Variants, variant)
	p.UpdatedAt = now
	return &p.Variants[len(p.Variants)-1], nil
}

// Variant returns the variant with the given ID, or nil
func (p *Product) Variant(variantID uuid.UUID) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// Disable hides the product from the storefront
func (p *Product) Disable() {
	p.Enabled = false
	p.UpdatedAt = time.Now()
}

// UnitPrice returns the variant price as Money
func (v *ProductVariant) UnitPrice() valueobject.Money {
	m, _ := valueobject.NewMoney(v.Price, v.Currency)
	return m
}

// InStock reports whether the requested quantity can be fulfilled
func (v *ProductVariant) InStock(quantity int) bool {
	return v.Enabled && v.StockLevel >= quantity
}

// AdjustStock changes the stock level by delta (negative to allocate).
// Returns ErrInsufficientStock when the result would be negative.
func (v *ProductVariant) AdjustStock(delta int) error {
	next := v.StockLevel + delta
	if next < 0 {
		return shared.ErrInsufficientStock
	}
	v.StockLevel = next
	v.UpdatedAt = time.Now()
	return nil
}
