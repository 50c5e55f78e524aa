package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	checkoutapp "github.com/damneddesigns/storefront/internal/application/checkout"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/interfaces/http/middleware"
)

// CartHandler serves the active-order (cart) endpoints. Carts are
// addressed by ID so guests can check out without an account; the
// optional auth middleware attaches the customer when a token is sent.
type CartHandler struct {
	BaseHandler
	checkout   *checkoutapp.Service
	placeGuard []gin.HandlerFunc
}

// NewCartHandler creates a cart handler.
func NewCartHandler(checkout *checkoutapp.Service, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		BaseHandler: NewBaseHandler(logger),
		checkout:    checkout,
	}
}

// SetPlaceOrderGuard installs extra middleware on the place-order
// route, used for the tighter checkout rate limit.
func (h *CartHandler) SetPlaceOrderGuard(guards ...gin.HandlerFunc) {
	h.placeGuard = guards
}

// RegisterRoutes registers cart routes.
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	{
		cart.POST("", h.GetOrCreateCart)
		cart.GET("/:id", h.GetCart)
		cart.POST("/:id/items", h.AddItem)
		cart.PUT("/:id/items/:lineId", h.UpdateLine)
		cart.DELETE("/:id/items/:lineId", h.RemoveLine)
		cart.PUT("/:id/shipping-address", h.SetShippingAddress)
		cart.GET("/:id/shipping-methods", h.EligibleShippingMethods)
		cart.PUT("/:id/shipping-method", h.SetShippingMethod)
		cart.POST("/:id/coupon", h.ApplyCoupon)
		cart.DELETE("/:id/coupon", h.RemoveCoupon)
		cart.POST("/:id/place", append(h.placeGuard, h.PlaceOrder)...)
	}
}

// GetOrCreateCart returns the caller's active cart, creating one when
// none exists. Anonymous callers always get a fresh cart.
func (h *CartHandler) GetOrCreateCart(c *gin.Context) {
	cart, err := h.checkout.GetOrCreateCart(c.Request.Context(), middleware.GetCustomerID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cart)
}

// GetCart returns a cart by ID.
func (h *CartHandler) GetCart(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	cart, err := h.checkout.GetCart(c.Request.Context(), cartID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem adds a variant to the cart, merging with an existing line.
func (h *CartHandler) AddItem(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	var req checkoutapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	cart, err := h.checkout.AddItem(c.Request.Context(), cartID, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateLine changes a line's quantity. Quantity zero removes the line.
func (h *CartHandler) UpdateLine(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.HandleError(c, shared.ErrInvalidInput)
		return
	}
	var req checkoutapp.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	cart, err := h.checkout.UpdateLine(c.Request.Context(), cartID, lineID, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveLine removes a line from the cart.
func (h *CartHandler) RemoveLine(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.HandleError(c, shared.ErrInvalidInput)
		return
	}

	cart, err := h.checkout.RemoveLine(c.Request.Context(), cartID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// SetShippingAddress sets the cart's shipping address.
func (h *CartHandler) SetShippingAddress(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	var req checkoutapp.SetShippingAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	cart, err := h.checkout.SetShippingAddress(c.Request.Context(), cartID, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// EligibleShippingMethods lists methods available for the cart's
// destination and total.
func (h *CartHandler) EligibleShippingMethods(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	methods, err := h.checkout.EligibleShippingMethods(c.Request.Context(), cartID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, methods)
}

// SetShippingMethod selects a shipping method for the cart.
func (h *CartHandler) SetShippingMethod(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	var req checkoutapp.SetShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	cart, err := h.checkout.SetShippingMethod(c.Request.Context(), cartID, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// ApplyCoupon validates and applies a coupon code to the cart.
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	var req checkoutapp.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	cart, err := h.checkout.ApplyCoupon(c.Request.Context(), cartID, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveCoupon removes the applied coupon from the cart.
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	cart, err := h.checkout.RemoveCoupon(c.Request.Context(), cartID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// PlaceOrder finalizes the cart: allocates stock, guards against
// duplicate submissions and moves the order to ARRANGING_PAYMENT.
func (h *CartHandler) PlaceOrder(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	var req checkoutapp.PlaceOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err)
			return
		}
	}

	order, err := h.checkout.PlaceOrder(c.Request.Context(), cartID, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *CartHandler) cartID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.HandleError(c, shared.ErrInvalidInput)
		return uuid.Nil, false
	}
	return id, true
}
