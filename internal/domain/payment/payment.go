package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is the locally persisted state of a payment attempt
type State string

const (
	StateCreated  State = "CREATED"
	StateSettled  State = "SETTLED"
	StateDeclined State = "DECLINED"
	StateRefunded State = "REFUNDED"
	StateError    State = "ERROR"
)

// Payment records one payment attempt against an order
type Payment struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	OrderCode   string
	GatewayType GatewayType
	State       State
	Amount      decimal.Decimal
	// RefundedAmount accumulates across partial refunds
	RefundedAmount decimal.Decimal
	Currency       string
	TransactionID  string
	ErrorMessage   string
	// Metadata captured at creation time (channel, order code, etc.)
	Metadata  map[string]string `gorm:"serializer:json"`
	SettledAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPayment records a payment attempt in CREATED state
func NewPayment(orderID uuid.UUID, orderCode string, gateway GatewayType, amount decimal.Decimal, currency string) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, ErrInvalidOrderID
	}
	if orderCode == "" {
		return nil, ErrInvalidOrderCode
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	now := time.Now()
	return &Payment{
		ID:          uuid.New(),
		OrderID:     orderID,
		OrderCode:   orderCode,
		GatewayType: gateway,
		State:       StateCreated,
		Amount:      amount,
		Currency:    currency,
		Metadata:    map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Settle marks the payment as captured
func (p *Payment) Settle(transactionID string) error {
	if p.State == StateSettled {
		return ErrAlreadySettled
	}
	now := time.Now()
	p.State = StateSettled
	p.TransactionID = transactionID
	p.SettledAt = &now
	p.UpdatedAt = now
	return nil
}

// Decline marks the payment as declined with a reason
func (p *Payment) Decline(reason string) {
	p.State = StateDeclined
	p.ErrorMessage = reason
	p.UpdatedAt = time.Now()
}

// Fail marks the payment as errored with a reason
func (p *Payment) Fail(reason string) {
	p.State = StateError
	p.ErrorMessage = reason
	p.UpdatedAt = time.Now()
}

// RefundableAmount is what remains refundable against the capture
func (p *Payment) RefundableAmount() decimal.Decimal {
	return p.Amount.Sub(p.RefundedAmount)
}

// RecordRefund applies a refund against the captured amount. The sum of
// refunds can never exceed the capture; the payment moves to REFUNDED
// once it has been refunded in full.
func (p *Payment) RecordRefund(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(p.RefundableAmount()) {
		return ErrRefundExceedsTotal
	}
	p.RefundedAmount = p.RefundedAmount.Add(amount)
	if p.RefundedAmount.Equal(p.Amount) {
		p.State = StateRefunded
	}
	p.UpdatedAt = time.Now()
	return nil
}

// Repository persists payment attempts
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	Save(ctx context.Context, payment *Payment) error
}
