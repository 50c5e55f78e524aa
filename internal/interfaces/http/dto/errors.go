package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState         = "ERR_INVALID_STATE"
	ErrCodeBusinessRule         = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock    = "ERR_INSUFFICIENT_STOCK"
	ErrCodeDuplicateSubmission  = "ERR_DUPLICATE_SUBMISSION"
	ErrCodePaymentDeclined      = "ERR_PAYMENT_DECLINED"
	ErrCodeCouponNotApplicable  = "ERR_COUPON_NOT_APPLICABLE"
	ErrCodeShippingNotAvailable = "ERR_SHIPPING_NOT_AVAILABLE"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,
	ErrCodeCouponNotApplicable:  http.StatusUnprocessableEntity,
	ErrCodeShippingNotAvailable: http.StatusUnprocessableEntity,

	// A duplicate submission is a conflict with the in-flight original
	ErrCodeDuplicateSubmission: http.StatusConflict,

	// 402 mirrors what the gateway told us
	ErrCodePaymentDeclined: http.StatusPaymentRequired,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	// Coupon validation codes pass through unmapped so clients can
	// tell why a code was rejected
	"COUPON_REQUIRED":      http.StatusUnprocessableEntity,
	"COUPON_NOT_FOUND":     http.StatusUnprocessableEntity,
	"COUPON_EXPIRED":       http.StatusUnprocessableEntity,
	"COUPON_INACTIVE":      http.StatusUnprocessableEntity,
	"UNKNOWN_CONDITION":    http.StatusUnprocessableEntity,
	"COUPON_LIMIT_REACHED": http.StatusUnprocessableEntity,
	"GROUP_REQUIRED":       http.StatusUnprocessableEntity,
	"MINIMUM_NOT_MET":      http.StatusUnprocessableEntity,

	"EMPTY_ORDER":    http.StatusUnprocessableEntity,
	"EMAIL_REQUIRED": http.StatusUnprocessableEntity,

	"STORAGE_UNAVAILABLE": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to API error codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_STATE":          ErrCodeInvalidState,
	"UNAUTHORIZED":           ErrCodeUnauthorized,
	"FORBIDDEN":              ErrCodeForbidden,
	"INSUFFICIENT_STOCK":     ErrCodeInsufficientStock,
	"DUPLICATE_SUBMISSION":   ErrCodeDuplicateSubmission,
	"PAYMENT_DECLINED":       ErrCodePaymentDeclined,
	"COUPON_NOT_APPLICABLE":  ErrCodeCouponNotApplicable,
	"SHIPPING_NOT_AVAILABLE": ErrCodeShippingNotAvailable,
	"INVALID_CREDENTIALS":    ErrCodeUnauthorized,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes without a mapping pass through unchanged so coupon validation
// codes like COUPON_EXPIRED keep their specific meaning for clients.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
