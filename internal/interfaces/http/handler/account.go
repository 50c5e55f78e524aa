package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	customerapp "github.com/damneddesigns/storefront/internal/application/customer"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/interfaces/http/dto"
	"github.com/damneddesigns/storefront/internal/interfaces/http/middleware"
)

// AccountHandler serves customer registration, login and profile
// management.
type AccountHandler struct {
	BaseHandler
	accounts *customerapp.Service
}

// NewAccountHandler creates an account handler.
func NewAccountHandler(accounts *customerapp.Service, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		BaseHandler: NewBaseHandler(logger),
		accounts:    accounts,
	}
}

// RegisterRoutes registers the public auth routes.
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// RegisterAuthenticatedRoutes registers routes that need a logged-in
// customer.
func (h *AccountHandler) RegisterAuthenticatedRoutes(rg *gin.RouterGroup) {
	account := rg.Group("/account")
	{
		account.GET("", h.GetProfile)
		account.PUT("", h.UpdateProfile)
		account.PUT("/password", h.ChangePassword)
		account.POST("/addresses", h.AddAddress)
		account.DELETE("/addresses/:id", h.RemoveAddress)
		account.PUT("/addresses/:id/default", h.SetDefaultAddress)
	}
}

// Register creates a customer account.
func (h *AccountHandler) Register(c *gin.Context) {
	var req customerapp.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	cust, err := h.accounts.Register(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cust)
}

// Login exchanges credentials for a bearer token.
func (h *AccountHandler) Login(c *gin.Context) {
	var req customerapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	resp, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetProfile returns the authenticated customer's profile.
func (h *AccountHandler) GetProfile(c *gin.Context) {
	cust, err := h.accounts.GetProfile(c.Request.Context(), middleware.GetCustomerID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cust)
}

// UpdateProfile updates name and phone. Empty fields are kept.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req customerapp.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	cust, err := h.accounts.UpdateProfile(c.Request.Context(), middleware.GetCustomerID(c), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cust)
}

// ChangePassword changes the password after verifying the current one.
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req customerapp.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), middleware.GetCustomerID(c), &req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddAddress adds an address to the customer's address book.
func (h *AccountHandler) AddAddress(c *gin.Context) {
	var req customerapp.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	cust, err := h.accounts.AddAddress(c.Request.Context(), middleware.GetCustomerID(c), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cust)
}

// RemoveAddress removes an address from the address book.
func (h *AccountHandler) RemoveAddress(c *gin.Context) {
	addressID, ok := h.addressID(c)
	if !ok {
		return
	}
	cust, err := h.accounts.RemoveAddress(c.Request.Context(), middleware.GetCustomerID(c), addressID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cust)
}

// SetDefaultAddress marks an address as the default.
func (h *AccountHandler) SetDefaultAddress(c *gin.Context) {
	addressID, ok := h.addressID(c)
	if !ok {
		return
	}
	cust, err := h.accounts.SetDefaultAddress(c.Request.Context(), middleware.GetCustomerID(c), addressID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cust)
}

func (h *AccountHandler) addressID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.HandleError(c, shared.ErrInvalidInput)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.HandleError(c, shared.ErrInvalidInput)
		return uuid.Nil, false
	}
	return id, true
}
