package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	paymentapp "github.com/damneddesigns/storefront/internal/application/payment"
	"github.com/damneddesigns/storefront/internal/infrastructure/gateway"
	"github.com/damneddesigns/storefront/internal/interfaces/http/dto"
)

// PaymentHandler serves payment creation, status and webhook endpoints.
type PaymentHandler struct {
	BaseHandler
	payments    *paymentapp.Service
	stripe      *gateway.StripeAdapter
	createGuard []gin.HandlerFunc
}

// NewPaymentHandler creates a payment handler. stripe may be nil when
// the Stripe gateway is disabled; the webhook route then rejects calls.
func NewPaymentHandler(payments *paymentapp.Service, stripe *gateway.StripeAdapter, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler: NewBaseHandler(logger),
		payments:    payments,
		stripe:      stripe,
	}
}

// SetCreatePaymentGuard installs extra middleware on the payment
// creation route, used for the tighter checkout rate limit.
func (h *PaymentHandler) SetCreatePaymentGuard(guards ...gin.HandlerFunc) {
	h.createGuard = guards
}

// RegisterRoutes registers payment routes.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", append(h.createGuard, h.CreatePayment)...)
		payments.GET("/:code", h.QueryPayment)
	}
	rg.POST("/webhooks/stripe", h.StripeWebhook)
}

// CreatePayment starts a payment against a placed order.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req paymentapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	resp, err := h.payments.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// QueryPayment returns the latest payment attempt for an order.
func (h *PaymentHandler) QueryPayment(c *gin.Context) {
	resp, err := h.payments.QueryPayment(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StripeWebhook receives asynchronous settlement events from Stripe.
// Signature verification happens before any state change; replayed
// events settle idempotently.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	if h.stripe == nil {
		c.JSON(http.StatusNotImplemented, dto.NewErrorResponse(dto.ErrCodeBadRequest, "Stripe is not configured"))
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	event, err := h.stripe.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("Rejected Stripe webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid webhook signature"))
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		intent, err := parseIntent(event)
		if err != nil {
			h.BadRequest(c, err)
			return
		}
		if err := h.payments.SettleByTransaction(c.Request.Context(), intent.ID); err != nil {
			h.HandleError(c, err)
			return
		}
	case "payment_intent.payment_failed":
		intent, err := parseIntent(event)
		if err != nil {
			h.BadRequest(c, err)
			return
		}
		reason := "payment failed"
		if intent.LastPaymentError != nil {
			reason = intent.LastPaymentError.Msg
		}
		if err := h.payments.DeclineByTransaction(c.Request.Context(), intent.ID, reason); err != nil {
			h.HandleError(c, err)
			return
		}
	default:
		h.logger.Debug("Ignoring Stripe event", zap.String("type", string(event.Type)))
	}

	c.Status(http.StatusOK)
}

func parseIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// AdminPaymentHandler serves refund operations.
type AdminPaymentHandler struct {
	BaseHandler
	payments *paymentapp.Service
}

// NewAdminPaymentHandler creates an admin payment handler.
func NewAdminPaymentHandler(payments *paymentapp.Service, logger *zap.Logger) *AdminPaymentHandler {
	return &AdminPaymentHandler{
		BaseHandler: NewBaseHandler(logger),
		payments:    payments,
	}
}

// RegisterRoutes registers admin payment routes.
func (h *AdminPaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/orders/:code/refund", h.Refund)
}

// Refund refunds a settled payment, fully or partially.
func (h *AdminPaymentHandler) Refund(c *gin.Context) {
	var req paymentapp.RefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err)
			return
		}
	}

	resp, err := h.payments.Refund(c.Request.Context(), c.Param("code"), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
