package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/damneddesigns/storefront/internal/application/catalog"
)

// CatalogHandler serves the public product catalog.
type CatalogHandler struct {
	BaseHandler
	catalog *catalogapp.Service
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(catalog *catalogapp.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(logger),
		catalog:     catalog,
	}
}

// RegisterRoutes registers catalog routes.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:slug", h.GetProduct)
	}

	collections := rg.Group("/collections")
	{
		collections.GET("", h.ListCollections)
		collections.GET("/:slug", h.GetCollection)
	}
}

// ListProducts returns a page of enabled products. Supports free-text
// search via ?q= and collection filtering via ?collection=.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var req catalogapp.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	page, err := h.catalog.ListProducts(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetProduct returns a single product by slug.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListCollections returns all enabled collections in display order.
func (h *CatalogHandler) ListCollections(c *gin.Context) {
	collections, err := h.catalog.ListCollections(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collections)
}

// GetCollection returns a single collection by slug.
func (h *CatalogHandler) GetCollection(c *gin.Context) {
	collection, err := h.catalog.GetCollection(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collection)
}

// AdminCatalogHandler serves catalog management endpoints.
type AdminCatalogHandler struct {
	BaseHandler
	catalog *catalogapp.Service
}

// NewAdminCatalogHandler creates an admin catalog handler.
func NewAdminCatalogHandler(catalog *catalogapp.Service, logger *zap.Logger) *AdminCatalogHandler {
	return &AdminCatalogHandler{
		BaseHandler: NewBaseHandler(logger),
		catalog:     catalog,
	}
}

// RegisterRoutes registers admin catalog routes.
func (h *AdminCatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	{
		admin.POST("/products", h.CreateProduct)
		admin.POST("/assets/upload-url", h.GenerateUploadURL)
	}
}

// CreateProduct creates a product with its initial variants.
func (h *AdminCatalogHandler) CreateProduct(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GenerateUploadURL returns a presigned URL for direct asset upload.
func (h *AdminCatalogHandler) GenerateUploadURL(c *gin.Context) {
	var req catalogapp.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	resp, err := h.catalog.GenerateAssetUploadURL(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
