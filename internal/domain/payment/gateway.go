package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment gateway errors
var (
	ErrInvalidOrderID     = errors.New("payment: invalid order ID")
	ErrInvalidOrderCode   = errors.New("payment: invalid order code")
	ErrInvalidAmount      = errors.New("payment: invalid payment amount")
	ErrInvalidMethod      = errors.New("payment: invalid payment method")
	ErrDeclined           = errors.New("payment: declined by gateway")
	ErrNotFound           = errors.New("payment: payment not found")
	ErrAlreadySettled     = errors.New("payment: payment already settled")
	ErrRefundExceedsTotal = errors.New("payment: refund amount exceeds captured total")

	ErrGatewayNotConfigured   = errors.New("payment: gateway not configured")
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
	ErrInvalidCallback        = errors.New("payment: invalid callback signature")
)

// GatewayType identifies a supported payment gateway
type GatewayType string

const (
	GatewayTypeStripe GatewayType = "STRIPE"
	GatewayTypeNMI    GatewayType = "NMI"
	GatewayTypeSezzle GatewayType = "SEZZLE"
)

// IsValid returns true if the gateway type is known
func (t GatewayType) IsValid() bool {
	switch t {
	case GatewayTypeStripe, GatewayTypeNMI, GatewayTypeSezzle:
		return true
	}
	return false
}

// String returns the string representation of GatewayType
func (t GatewayType) String() string {
	return string(t)
}

// GatewayStatus is the gateway-side state of a payment
type GatewayStatus string

const (
	GatewayStatusPending  GatewayStatus = "PENDING"
	GatewayStatusSettled  GatewayStatus = "SETTLED"
	GatewayStatusDeclined GatewayStatus = "DECLINED"
	GatewayStatusRefunded GatewayStatus = "REFUNDED"
	GatewayStatusError    GatewayStatus = "ERROR"
)

// CreatePaymentRequest asks a gateway to start collecting a payment
type CreatePaymentRequest struct {
	OrderID       uuid.UUID
	OrderCode     string
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
	// CardToken carries a tokenized card for direct-capture gateways (NMI)
	CardToken string
	// ReturnURL / CancelURL are used by redirect-based gateways (Sezzle)
	ReturnURL string
	CancelURL string
	Metadata  map[string]string
}

// Validate checks required request fields
func (r *CreatePaymentRequest) Validate() error {
	if r.OrderID == uuid.Nil {
		return ErrInvalidOrderID
	}
	if r.OrderCode == "" {
		return ErrInvalidOrderCode
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// CreatePaymentResponse reports what the gateway returned
type CreatePaymentResponse struct {
	GatewayType      GatewayType
	Status           GatewayStatus
	TransactionID    string
	ClientSecret     string // Stripe client secret for the frontend
	RedirectURL      string // Sezzle checkout URL
	AuthCode         string // NMI authorization code
	DeclineReason    string
	AmountAuthorized decimal.Decimal
	RawResponse      string
}

// QueryPaymentRequest looks up a payment's current state at the gateway
type QueryPaymentRequest struct {
	TransactionID string
	OrderCode     string
}

// QueryPaymentResponse reports the gateway-side state of a payment
type QueryPaymentResponse struct {
	GatewayType   GatewayType
	Status        GatewayStatus
	TransactionID string
	Amount        decimal.Decimal
	RawResponse   string
}

// RefundRequest asks a gateway to refund part or all of a settled payment
type RefundRequest struct {
	TransactionID string
	OrderCode     string
	Amount        decimal.Decimal
	Currency      string
	Reason        string
}

// Validate checks required refund fields
func (r *RefundRequest) Validate() error {
	if r.TransactionID == "" {
		return ErrNotFound
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// RefundResponse reports the outcome of a refund
type RefundResponse struct {
	GatewayType GatewayType
	Status      GatewayStatus
	RefundID    string
	Amount      decimal.Decimal
	RawResponse string
}

// Gateway is implemented by each payment provider adapter
type Gateway interface {
	GatewayType() GatewayType
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error)
	QueryPayment(ctx context.Context, req *QueryPaymentRequest) (*QueryPaymentResponse, error)
	Refund(ctx context.Context, req *RefundRequest) (*RefundResponse, error)
}
