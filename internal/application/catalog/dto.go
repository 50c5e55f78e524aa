package catalog

import (
	"time"

	"github.com/damneddesigns/storefront/internal/domain/catalog"
)

// ListProductsRequest filters the product listing
type ListProductsRequest struct {
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
	Search         string `form:"q"`
	CollectionSlug string `form:"collection"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir"`
}

// CreateProductRequest creates a product with its initial variants
type CreateProductRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Variants    []CreateVariantRequest `json:"variants" binding:"required,min=1,dive"`
}

// CreateVariantRequest describes a purchasable SKU
type CreateVariantRequest struct {
	SKU        string `json:"sku" binding:"required"`
	Name       string `json:"name"`
	Price      string `json:"price" binding:"required"`
	StockLevel int    `json:"stock_level" binding:"gte=0"`
}

// UploadURLRequest asks for a presigned asset upload URL
type UploadURLRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// UploadURLResponse carries a presigned PUT URL and the resulting public URL
type UploadURLResponse struct {
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VariantResponse is the public shape of a product variant
type VariantResponse struct {
	ID         string `json:"id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Currency   string `json:"currency"`
	InStock    bool   `json:"in_stock"`
	StockLevel int    `json:"stock_level"`
}

// ProductResponse is the public shape of a product
type ProductResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	Description      string            `json:"description"`
	Enabled          bool              `json:"enabled"`
	FeaturedAssetURL string            `json:"featured_asset_url,omitempty"`
	Variants         []VariantResponse `json:"variants"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// CollectionResponse is the public shape of a collection
type CollectionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToProductResponse maps a product aggregate to its public shape
func ToProductResponse(p *catalog.Product) *ProductResponse {
	variants := make([]VariantResponse, 0, len(p.Variants))
	for i := range p.Variants {
		variants = append(variants, ToVariantResponse(&p.Variants[i]))
	}
	return &ProductResponse{
		ID:               p.ID.String(),
		Name:             p.Name,
		Slug:             p.Slug,
		Description:      p.Description,
		Enabled:          p.Enabled,
		FeaturedAssetURL: p.FeaturedAssetURL,
		Variants:         variants,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ToVariantResponse maps a variant to its public shape
func ToVariantResponse(v *catalog.ProductVariant) VariantResponse {
	return VariantResponse{
		ID:         v.ID.String(),
		SKU:        v.SKU,
		Name:       v.Name,
		Price:      v.Price.StringFixed(2),
		Currency:   string(v.Currency),
		InStock:    v.InStock(1),
		StockLevel: v.StockLevel,
	}
}

// ToCollectionResponse maps a collection to its public shape
func ToCollectionResponse(c *catalog.Collection) *CollectionResponse {
	return &CollectionResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Position:    c.Position,
		CreatedAt:   c.CreatedAt,
	}
}
