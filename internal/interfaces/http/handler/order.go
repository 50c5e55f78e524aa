package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	checkoutapp "github.com/damneddesigns/storefront/internal/application/checkout"
	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/interfaces/http/dto"
	"github.com/damneddesigns/storefront/internal/interfaces/http/middleware"
)

// InvoiceRenderer renders a placed order as a PDF invoice.
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, order *checkout.Order) ([]byte, error)
}

// OrderHandler serves placed orders. Order codes are unguessable and
// act as the retrieval capability, which keeps guest checkout working
// without an account.
type OrderHandler struct {
	BaseHandler
	checkout *checkoutapp.Service
	orders   checkout.OrderRepository
	invoices InvoiceRenderer
}

// NewOrderHandler creates an order handler. invoices may be nil when
// PDF rendering is disabled.
func NewOrderHandler(checkoutSvc *checkoutapp.Service, orders checkout.OrderRepository, invoices InvoiceRenderer, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(logger),
		checkout:    checkoutSvc,
		orders:      orders,
		invoices:    invoices,
	}
}

// RegisterRoutes registers order routes. The list route is wrapped with
// required auth by the caller.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("/:code", h.GetOrder)
		orders.GET("/:code/tracking", h.TrackOrder)
		orders.GET("/:code/invoice", h.GetInvoice)
	}
}

// RegisterAuthenticatedRoutes registers routes that need a logged-in
// customer.
func (h *OrderHandler) RegisterAuthenticatedRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders", h.ListOrders)
}

// ListOrders returns the authenticated customer's placed orders.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	customerID := middleware.GetCustomerID(c)
	if customerID == uuid.Nil {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}

	orders, err := h.checkout.ListOrders(c.Request.Context(), customerID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// GetOrder returns a placed order by code.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.checkout.GetOrder(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// TrackOrder returns the public tracking view of an order: state and
// carrier info only, no amounts or addresses.
func (h *OrderHandler) TrackOrder(c *gin.Context) {
	tracking, err := h.checkout.TrackOrder(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tracking)
}

// GetInvoice renders the order's invoice as a PDF download.
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	if h.invoices == nil {
		h.Error(c, "STORAGE_UNAVAILABLE", "Invoice rendering is not configured")
		return
	}

	code := c.Param("code")
	order, err := h.orders.FindByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if order.State == checkout.OrderStateAddingItems {
		h.NotFound(c, "Order not found")
		return
	}

	pdf, err := h.invoices.RenderInvoice(c.Request.Context(), order)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", code))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ShipOrderRequest records carrier tracking when an order leaves the
// warehouse.
type ShipOrderRequest struct {
	Carrier      string `json:"carrier" binding:"required"`
	TrackingCode string `json:"tracking_code" binding:"required"`
}

// AdminOrderHandler serves warehouse-side order operations.
type AdminOrderHandler struct {
	BaseHandler
	checkout *checkoutapp.Service
}

// NewAdminOrderHandler creates an admin order handler.
func NewAdminOrderHandler(checkoutSvc *checkoutapp.Service, logger *zap.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{
		BaseHandler: NewBaseHandler(logger),
		checkout:    checkoutSvc,
	}
}

// RegisterRoutes registers admin order routes.
func (h *AdminOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/orders/:code/ship", h.ShipOrder)
}

// ShipOrder marks a settled order as shipped with tracking details.
func (h *AdminOrderHandler) ShipOrder(c *gin.Context) {
	var req ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	order, err := h.checkout.MarkShipped(c.Request.Context(), c.Param("code"), req.Carrier, req.TrackingCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
