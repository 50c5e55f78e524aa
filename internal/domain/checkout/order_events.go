package checkout

import (
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

// Event types emitted by the checkout domain
const (
	EventTypeOrderPlaced    = "checkout.order_placed"
	EventTypePaymentSettled = "checkout.payment_settled"
	EventTypeOrderShipped   = "checkout.order_shipped"
	EventTypeOrderCancelled = "checkout.order_cancelled"
)

// OrderPlacedEvent fires when a cart transitions to ArrangingPayment
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderCode     string `json:"order_code"`
	CustomerEmail string `json:"customer_email"`
	Total         string `json:"total"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent from an order
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, "Order", o.ID),
		OrderCode:       o.Code,
		CustomerEmail:   o.CustomerEmail,
		Total:           o.Total.String(),
	}
}

// PaymentSettledEvent fires when a payment is captured for an order
type PaymentSettledEvent struct {
	shared.BaseDomainEvent
	OrderCode     string `json:"order_code"`
	CustomerEmail string `json:"customer_email"`
	Gateway       string `json:"gateway"`
	Amount        string `json:"amount"`
}

// NewPaymentSettledEvent creates a PaymentSettledEvent from an order
func NewPaymentSettledEvent(o *Order, gateway string) *PaymentSettledEvent {
	return &PaymentSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentSettled, "Order", o.ID),
		OrderCode:       o.Code,
		CustomerEmail:   o.CustomerEmail,
		Gateway:         gateway,
		Amount:          o.Total.String(),
	}
}

// OrderShippedEvent fires when tracking is assigned and the order ships
type OrderShippedEvent struct {
	shared.BaseDomainEvent
	OrderCode     string `json:"order_code"`
	CustomerEmail string `json:"customer_email"`
	Carrier       string `json:"carrier"`
	TrackingCode  string `json:"tracking_code"`
}

// NewOrderShippedEvent creates an OrderShippedEvent from an order
func NewOrderShippedEvent(o *Order) *OrderShippedEvent {
	return &OrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderShipped, "Order", o.ID),
		OrderCode:       o.Code,
		CustomerEmail:   o.CustomerEmail,
		Carrier:         o.Carrier,
		TrackingCode:    o.TrackingCode,
	}
}

// OrderCancelledEvent fires when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderCode string `json:"order_code"`
	Reason    string `json:"reason"`
}

// NewOrderCancelledEvent creates an OrderCancelledEvent from an order
func NewOrderCancelledEvent(o *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, "Order", o.ID),
		OrderCode:       o.Code,
		Reason:          reason,
	}
}
