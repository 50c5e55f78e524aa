package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrUnauthorized         = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden            = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInsufficientStock    = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrDuplicateSubmission  = NewDomainError("DUPLICATE_SUBMISSION", "An identical order was just submitted")
	ErrCouponNotApplicable  = NewDomainError("COUPON_NOT_APPLICABLE", "Coupon code cannot be applied to this order")
	ErrPaymentDeclined      = NewDomainError("PAYMENT_DECLINED", "Payment was declined by the gateway")
	ErrShippingNotAvailable = NewDomainError("SHIPPING_NOT_AVAILABLE", "No shipping method is available for this order")
)
