package checkout

import (
	"time"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
)

// AddItemRequest adds a variant to the active cart
type AddItemRequest struct {
	VariantID string `json:"variant_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// UpdateLineRequest changes an order line's quantity; zero removes it
type UpdateLineRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}

// SetShippingAddressRequest sets the order's destination
type SetShippingAddressRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	StreetLine1 string `json:"street_line1" binding:"required"`
	StreetLine2 string `json:"street_line2"`
	City        string `json:"city" binding:"required"`
	Province    string `json:"province"`
	PostalCode  string `json:"postal_code" binding:"required"`
	CountryCode string `json:"country_code" binding:"required,len=2"`
	Phone       string `json:"phone"`
}

// SetShippingMethodRequest selects a shipping method for the order
type SetShippingMethodRequest struct {
	ShippingMethodID string `json:"shipping_method_id" binding:"required,uuid"`
}

// ApplyCouponRequest applies a coupon code to the order
type ApplyCouponRequest struct {
	CouponCode string `json:"coupon_code" binding:"required"`
}

// PlaceOrderRequest finalizes the cart into a placed order
type PlaceOrderRequest struct {
	// CustomerEmail is required for guest checkouts that have not yet
	// attached an email to the cart
	CustomerEmail string `json:"customer_email" binding:"omitempty,email"`
}

// OrderLineResponse is the public shape of an order line
type OrderLineResponse struct {
	ID          string `json:"id"`
	VariantID   string `json:"variant_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// OrderResponse is the public shape of an order or active cart
type OrderResponse struct {
	ID               string              `json:"id"`
	Code             string              `json:"code"`
	State            string              `json:"state"`
	CustomerEmail    string              `json:"customer_email,omitempty"`
	Currency         string              `json:"currency"`
	Lines            []OrderLineResponse `json:"lines"`
	SubTotal         string              `json:"sub_total"`
	DiscountTotal    string              `json:"discount_total"`
	ShippingTotal    string              `json:"shipping_total"`
	Total            string              `json:"total"`
	CouponCode       string              `json:"coupon_code,omitempty"`
	FreeShipping     bool                `json:"free_shipping"`
	ShippingMethodID string              `json:"shipping_method_id,omitempty"`
	TrackingCode     string              `json:"tracking_code,omitempty"`
	Carrier          string              `json:"carrier,omitempty"`
	PlacedAt         *time.Time          `json:"placed_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ShippingMethodResponse is a selectable shipping option
type ShippingMethodResponse struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// TrackingResponse is the public order-tracking view. It deliberately
// omits amounts and addresses so the tracking page can be shared.
type TrackingResponse struct {
	Code         string     `json:"code"`
	State        string     `json:"state"`
	Carrier      string     `json:"carrier,omitempty"`
	TrackingCode string     `json:"tracking_code,omitempty"`
	PlacedAt     *time.Time `json:"placed_at,omitempty"`
}

// ToOrderResponse maps an order aggregate to its public shape
func ToOrderResponse(o *checkout.Order) *OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ID:          o.Lines[i].ID.String(),
			VariantID:   o.Lines[i].VariantID.String(),
			ProductName: o.Lines[i].ProductName,
			SKU:         o.Lines[i].SKU,
			Quantity:    o.Lines[i].Quantity,
			UnitPrice:   o.Lines[i].UnitPrice.StringFixed(2),
			LineTotal:   o.Lines[i].LineTotal.StringFixed(2),
		})
	}

	resp := &OrderResponse{
		ID:            o.ID.String(),
		Code:          o.Code,
		State:         o.State.String(),
		CustomerEmail: o.CustomerEmail,
		Currency:      string(o.Currency),
		Lines:         lines,
		SubTotal:      o.SubTotal.StringFixed(2),
		DiscountTotal: o.DiscountTotal.StringFixed(2),
		ShippingTotal: o.EffectiveShippingTotal().StringFixed(2),
		Total:         o.Total.StringFixed(2),
		CouponCode:    o.CouponCode,
		FreeShipping:  o.FreeShipping,
		TrackingCode:  o.TrackingCode,
		Carrier:       o.Carrier,
		PlacedAt:      o.PlacedAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.ShippingMethodID != nil {
		resp.ShippingMethodID = o.ShippingMethodID.String()
	}
	return resp
}

// ToShippingMethodResponse maps a shipping method to its public shape
func ToShippingMethodResponse(m *checkout.ShippingMethod) ShippingMethodResponse {
	return ShippingMethodResponse{
		ID:    m.ID.String(),
		Code:  m.Code,
		Name:  m.Name,
		Price: m.Price.StringFixed(2),
	}
}

// ToTrackingResponse maps an order to its public tracking view
func ToTrackingResponse(o *checkout.Order) *TrackingResponse {
	return &TrackingResponse{
		Code:         o.Code,
		State:        o.State.String(),
		Carrier:      o.Carrier,
		TrackingCode: o.TrackingCode,
		PlacedAt:     o.PlacedAt,
	}
}
