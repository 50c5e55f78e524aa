package checkout

import (
	"time"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingMethod is a deliverable shipping option with eligibility rules.
// A method is eligible when the order subtotal falls inside its band and the
// destination country is allowed (an empty country list allows everywhere).
type ShippingMethod struct {
	ID               uuid.UUID
	Code             string
	Name             string
	Price            decimal.Decimal
	MinOrderSubTotal decimal.Decimal
	MaxOrderSubTotal decimal.Decimal // zero means no upper bound
	AllowedCountries []string       `gorm:"serializer:json"`
	Enabled          bool
	Position         int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewShippingMethod creates an enabled shipping method
func NewShippingMethod(code, name string, price decimal.Decimal) (*ShippingMethod, error) {
	if code == "" || name == "" {
		return nil, shared.NewDomainError("INVALID_SHIPPING_METHOD", "Code and name are required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Shipping price cannot be negative")
	}
	now := time.Now()
	return &ShippingMethod{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		Price:     price,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsEligible reports whether this method can ship the given order
func (m *ShippingMethod) IsEligible(o *Order) bool {
	if !m.Enabled {
		return false
	}
	if o.SubTotal.LessThan(m.MinOrderSubTotal) {
		return false
	}
	if m.MaxOrderSubTotal.IsPositive() && o.SubTotal.GreaterThan(m.MaxOrderSubTotal) {
		return false
	}
	if len(m.AllowedCountries) > 0 {
		if o.ShippingAddress.CountryCode == "" {
			return false
		}
		allowed := false
		for _, c := range m.AllowedCountries {
			if c == o.ShippingAddress.CountryCode {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return true
}

// EligibleMethods filters methods down to the ones that can ship the order,
// ordered by display position
func EligibleMethods(methods []ShippingMethod, o *Order) []ShippingMethod {
	eligible := make([]ShippingMethod, 0, len(methods))
	for i := range methods {
		if methods[i].IsEligible(o) {
			eligible = append(eligible, methods[i])
		}
	}
	return eligible
}
