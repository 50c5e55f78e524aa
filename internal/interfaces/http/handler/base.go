package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/payment"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/interfaces/http/dto"
	"github.com/damneddesigns/storefront/internal/interfaces/http/middleware"
)

// BaseHandler provides common response helpers for all handlers.
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a base handler.
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// Success writes a 200 response with the given payload.
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta writes a 200 response with pagination metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created writes a 201 response with the given payload.
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error response with the status derived from the code.
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	status := dto.GetHTTPStatus(code)
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest writes a 400 response for malformed input.
func (h *BaseHandler) BadRequest(c *gin.Context, err error) {
	h.Error(c, dto.ErrCodeValidation, err.Error())
}

// NotFound writes a 404 response.
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeNotFound, message)
}

// HandleError maps domain errors to API responses. Unrecognized errors
// are logged and reported as 500 without leaking internals.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	switch {
	case errors.Is(err, payment.ErrInvalidMethod):
		h.Error(c, dto.ErrCodeInvalidInput, "Unknown payment method")
	case errors.Is(err, payment.ErrRefundExceedsTotal):
		h.Error(c, dto.ErrCodeInvalidInput, "Refund amount exceeds the captured total")
	case errors.Is(err, payment.ErrAlreadySettled):
		h.Error(c, dto.ErrCodeInvalidState, "Payment is already settled")
	default:
		h.logger.Error("Unhandled error",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		h.Error(c, dto.ErrCodeInternal, "An internal error occurred")
	}
}
