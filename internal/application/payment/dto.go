package payment

import (
	"time"

	"github.com/damneddesigns/storefront/internal/domain/payment"
)

// CreatePaymentRequest starts collecting payment for a placed order
type CreatePaymentRequest struct {
	OrderCode string `json:"order_code" binding:"required"`
	Gateway   string `json:"gateway" binding:"required"`
	// CardToken carries a tokenized card for direct-capture gateways
	CardToken string `json:"card_token"`
	// ReturnURL / CancelURL are used by redirect-based gateways
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

// RefundRequest refunds part or all of a settled payment
type RefundRequest struct {
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}

// PaymentResponse is the public shape of a payment attempt
type PaymentResponse struct {
	ID             string `json:"id"`
	OrderCode      string `json:"order_code"`
	Gateway        string `json:"gateway"`
	State          string `json:"state"`
	Amount         string `json:"amount"`
	RefundedAmount string `json:"refunded_amount"`
	Currency       string `json:"currency"`
	TransactionID  string `json:"transaction_id,omitempty"`
	// ClientSecret lets the frontend confirm a Stripe payment intent
	ClientSecret string `json:"client_secret,omitempty"`
	// RedirectURL sends the customer to a hosted checkout (Sezzle)
	RedirectURL  string     `json:"redirect_url,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToPaymentResponse maps a payment record to its public shape
func ToPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:             p.ID.String(),
		OrderCode:      p.OrderCode,
		Gateway:        p.GatewayType.String(),
		State:          string(p.State),
		Amount:         p.Amount.StringFixed(2),
		RefundedAmount: p.RefundedAmount.StringFixed(2),
		Currency:       p.Currency,
		TransactionID:  p.TransactionID,
		ErrorMessage:   p.ErrorMessage,
		SettledAt:      p.SettledAt,
		CreatedAt:      p.CreatedAt,
	}
}
