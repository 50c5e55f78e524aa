package checkout

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/damneddesigns/storefront/internal/domain/customer"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderState represents the lifecycle state of an order
type OrderState string

const (
	OrderStateAddingItems      OrderState = "ADDING_ITEMS"
	OrderStateArrangingPayment OrderState = "ARRANGING_PAYMENT"
	OrderStatePaymentSettled   OrderState = "PAYMENT_SETTLED"
	OrderStateShipped          OrderState = "SHIPPED"
	OrderStateDelivered        OrderState = "DELIVERED"
	OrderStateCancelled        OrderState = "CANCELLED"
)

// IsValid checks if the state is a known OrderState
func (s OrderState) IsValid() bool {
	switch s {
	case OrderStateAddingItems, OrderStateArrangingPayment, OrderStatePaymentSettled,
		OrderStateShipped, OrderStateDelivered, OrderStateCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderState
func (s OrderState) String() string {
	return string(s)
}

// CanTransitionTo checks if the state can transition to the target state
func (s OrderState) CanTransitionTo(target OrderState) bool {
	switch s {
	case OrderStateAddingItems:
		return target == OrderStateArrangingPayment || target == OrderStateCancelled
	case OrderStateArrangingPayment:
		return target == OrderStatePaymentSettled || target == OrderStateAddingItems || target == OrderStateCancelled
	case OrderStatePaymentSettled:
		return target == OrderStateShipped || target == OrderStateCancelled
	case OrderStateShipped:
		return target == OrderStateDelivered
	case OrderStateDelivered, OrderStateCancelled:
		return false // terminal
	}
	return false
}

// OrderLine is a purchasable variant with a quantity in an order
type OrderLine struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	VariantID   uuid.UUID
	ProductName string
	SKU         string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Order is the cart/checkout aggregate. An order in AddingItems state is the
// customer's active cart; placing it moves it through the payment states.
type Order struct {
	ID            uuid.UUID
	Code          string
	State         OrderState
	CustomerID    *uuid.UUID
	CustomerEmail string
	Lines         []OrderLine `gorm:"foreignKey:OrderID"`
	Currency      valueobject.Currency

	SubTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	ShippingTotal decimal.Decimal
	Total         decimal.Decimal

	CouponCode   string
	FreeShipping bool

	ShippingAddress  customer.Address `gorm:"embedded;embeddedPrefix:ship_"`
	ShippingMethodID *uuid.UUID

	TrackingCode string
	Carrier      string

	PlacedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder creates an empty order in the AddingItems state
func NewOrder(customerEmail string) *Order {
	now := time.Now()
	return &Order{
		ID:            uuid.New(),
		Code:          generateOrderCode(),
		State:         OrderStateAddingItems,
		CustomerEmail: strings.ToLower(strings.TrimSpace(customerEmail)),
		Currency:      valueobject.DefaultCurrency,
		SubTotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		ShippingTotal: decimal.Zero,
		Total:         decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// generateOrderCode produces a short, human-readable order code
func generateOrderCode() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// fall back to uuid-derived entropy
		copy(buf, uuid.New().NodeID())
	}
	return "DD-" + strings.ToUpper(hex.EncodeToString(buf))
}

// AddLine adds a variant to the order, merging quantity if already present
func (o *Order) AddLine(variantID uuid.UUID, productName, sku string, quantity int, unitPrice valueobject.Money) (*OrderLine, error) {
	if o.State != OrderStateAddingItems {
		return nil, shared.ErrInvalidState
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	for i := range o.Lines {
		if o.Lines[i].VariantID == variantID {
			o.Lines[i].Quantity += quantity
			o.Lines[i].LineTotal = o.Lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(o.Lines[i].Quantity)))
			o.Lines[i].UpdatedAt = now
			o.recalculate()
			return &o.Lines[i], nil
		}
	}

	line := OrderLine{
		ID:          uuid.New(),
		OrderID:     o.ID,
		VariantID:   variantID,
		ProductName: productName,
		SKU:         sku,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		LineTotal:   unitPrice.Amount().Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	o.Lines = append(o.Lines, line)
	o.recalculate()
	return &o.Lines[len(o.Lines)-1], nil
}

// UpdateLineQuantity changes a line's quantity; zero removes the line
func (o *Order) UpdateLineQuantity(lineID uuid.UUID, quantity int) error {
	if o.State != OrderStateAddingItems {
		return shared.ErrInvalidState
	}
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			if quantity == 0 {
				o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			} else {
				o.Lines[i].Quantity = quantity
				o.Lines[i].LineTotal = o.Lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
				o.Lines[i].UpdatedAt = time.Now()
			}
			o.recalculate()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RemoveLine removes a line from the order
func (o *Order) RemoveLine(lineID uuid.UUID) error {
	return o.UpdateLineQuantity(lineID, 0)
}

// IsEmpty reports whether the order has no lines
func (o *Order) IsEmpty() bool {
	return len(o.Lines) == 0
}

// TotalQuantity returns the total number of units in the order
func (o *Order) TotalQuantity() int {
	total := 0
	for i := range o.Lines {
		total += o.Lines[i].Quantity
	}
	return total
}

// ApplyCoupon records a validated coupon's effect on the order totals
func (o *Order) ApplyCoupon(code string, discount decimal.Decimal, freeShipping bool) error {
	if o.State != OrderStateAddingItems && o.State != OrderStateArrangingPayment {
		return shared.ErrInvalidState
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	o.CouponCode = code
	o.DiscountTotal = discount
	o.FreeShipping = freeShipping
	o.recalculate()
	return nil
}

// RemoveCoupon clears any applied coupon and restores totals
func (o *Order) RemoveCoupon() {
	o.CouponCode = ""
	o.DiscountTotal = decimal.Zero
	o.FreeShipping = false
	o.recalculate()
}

// SetShippingAddress stores the destination for shipping eligibility checks
func (o *Order) SetShippingAddress(addr customer.Address) error {
	if o.State != OrderStateAddingItems && o.State != OrderStateArrangingPayment {
		return shared.ErrInvalidState
	}
	if addr.CountryCode == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Country code is required")
	}
	o.ShippingAddress = addr
	o.UpdatedAt = time.Now()
	return nil
}

// SetShippingMethod applies a shipping method and its price to the order
func (o *Order) SetShippingMethod(methodID uuid.UUID, price decimal.Decimal) error {
	if o.State != OrderStateAddingItems && o.State != OrderStateArrangingPayment {
		return shared.ErrInvalidState
	}
	o.ShippingMethodID = &methodID
	o.ShippingTotal = price
	o.recalculate()
	return nil
}

// TransitionTo moves the order to the target state if the transition is legal
func (o *Order) TransitionTo(target OrderState) error {
	if !target.IsValid() {
		return shared.ErrInvalidInput
	}
	if !o.State.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition order from "+o.State.String()+" to "+target.String())
	}
	o.State = target
	if target == OrderStateArrangingPayment && o.PlacedAt == nil {
		now := time.Now()
		o.PlacedAt = &now
	}
	o.UpdatedAt = time.Now()
	return nil
}

// SetTracking records fulfillment tracking details on a shipped order
func (o *Order) SetTracking(carrier, trackingCode string) error {
	if o.State != OrderStatePaymentSettled && o.State != OrderStateShipped {
		return shared.ErrInvalidState
	}
	o.Carrier = carrier
	o.TrackingCode = trackingCode
	o.UpdatedAt = time.Now()
	return nil
}

// recalculate recomputes the order totals from its lines and adjustments.
// Discounts never push the total below the shipping cost, and free shipping
// zeroes the shipping contribution without clearing the selected method.
func (o *Order) recalculate() {
	subTotal := decimal.Zero
	for i := range o.Lines {
		subTotal = subTotal.Add(o.Lines[i].LineTotal)
	}
	o.SubTotal = subTotal

	discounted := subTotal.Sub(o.DiscountTotal)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	shipping := o.ShippingTotal
	if o.FreeShipping {
		shipping = decimal.Zero
	}

	o.Total = discounted.Add(shipping)
	o.UpdatedAt = time.Now()
}

// EffectiveShippingTotal returns the shipping amount actually charged
func (o *Order) EffectiveShippingTotal() decimal.Decimal {
	if o.FreeShipping {
		return decimal.Zero
	}
	return o.ShippingTotal
}
