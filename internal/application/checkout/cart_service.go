// Package checkout exposes the cart and order placement use cases.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	promotionapp "github.com/damneddesigns/storefront/internal/application/promotion"
	"github.com/damneddesigns/storefront/internal/domain/catalog"
	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/customer"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

const defaultDedupTTL = 30 * time.Second

// CouponService validates coupons and records redemptions
type CouponService interface {
	ValidateCoupon(ctx context.Context, req *promotionapp.ValidateCouponRequest) (*promotionapp.CouponResult, error)
	RecordRedemption(ctx context.Context, couponCode string, customerID, orderID uuid.UUID) error
}

// DedupConfig controls duplicate submission suppression on order placement
type DedupConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

// Service implements cart manipulation, shipping selection, coupon
// application and order placement
type Service struct {
	orders    checkout.OrderRepository
	products  catalog.ProductRepository
	shipping  checkout.ShippingMethodRepository
	customers customer.Repository
	coupons   CouponService
	dedup     shared.IdempotencyStore
	dedupCfg  DedupConfig
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a checkout service
func NewService(
	orders checkout.OrderRepository,
	products catalog.ProductRepository,
	shipping checkout.ShippingMethodRepository,
	customers customer.Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		shipping:  shipping,
		customers: customers,
		logger:    logger,
	}
}

// SetEventPublisher wires a domain event publisher into the service
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetCouponService wires the promotion service for coupon handling
func (s *Service) SetCouponService(coupons CouponService) {
	s.coupons = coupons
}

// SetDedupStore wires duplicate-submission suppression for order placement
func (s *Service) SetDedupStore(store shared.IdempotencyStore, cfg DedupConfig) {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultDedupTTL
	}
	s.dedup = store
	s.dedupCfg = cfg
}

// GetOrCreateCart returns the customer's active cart, creating one if
// needed. Guests pass uuid.Nil and get a fresh anonymous cart.
func (s *Service) GetOrCreateCart(ctx context.Context, customerID uuid.UUID) (*OrderResponse, error) {
	if customerID != uuid.Nil {
		order, err := s.orders.FindActiveForCustomer(ctx, customerID)
		if err == nil {
			return ToOrderResponse(order), nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("find active cart: %w", err)
		}
	}

	order, err := s.newCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// GetCart returns an order by ID while it is still a cart
func (s *Service) GetCart(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// AddItem adds a variant to the cart after checking stock
func (s *Service) AddItem(ctx context.Context, orderID uuid.UUID, req *AddItemRequest) (*OrderResponse, error) {
	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		return nil, shared.ErrInvalidInput
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	variant, err := s.products.FindVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}

	requested := req.Quantity
	for i := range order.Lines {
		if order.Lines[i].VariantID == variantID {
			requested += order.Lines[i].Quantity
		}
	}
	if !variant.InStock(requested) {
		return nil, shared.ErrInsufficientStock
	}

	product, err := s.products.FindByID(ctx, variant.ProductID)
	if err != nil {
		return nil, err
	}

	if _, err := order.AddLine(variantID, product.Name, variant.SKU, req.Quantity, variant.UnitPrice()); err != nil {
		return nil, err
	}
	if err := s.reapplyCoupon(ctx, order); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return ToOrderResponse(order), nil
}

// UpdateLine changes a line's quantity; zero removes the line
func (s *Service) UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, req *UpdateLineRequest) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if req.Quantity > 0 {
		for i := range order.Lines {
			if order.Lines[i].ID == lineID {
				variant, vErr := s.products.FindVariant(ctx, order.Lines[i].VariantID)
				if vErr != nil {
					return nil, vErr
				}
				if !variant.InStock(req.Quantity) {
					return nil, shared.ErrInsufficientStock
				}
			}
		}
	}

	if err := order.UpdateLineQuantity(lineID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.reapplyCoupon(ctx, order); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return ToOrderResponse(order), nil
}

// RemoveLine removes a line from the cart
func (s *Service) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*OrderResponse, error) {
	return s.UpdateLine(ctx, orderID, lineID, &UpdateLineRequest{Quantity: 0})
}

// SetShippingAddress stores the destination address on the order
func (s *Service) SetShippingAddress(ctx context.Context, orderID uuid.UUID, req *SetShippingAddressRequest) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	addr := customer.Address{
		FullName:    req.FullName,
		StreetLine1: req.StreetLine1,
		StreetLine2: req.StreetLine2,
		City:        req.City,
		Province:    req.Province,
		PostalCode:  req.PostalCode,
		CountryCode: req.CountryCode,
		Phone:       req.Phone,
	}
	if err := order.SetShippingAddress(addr); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return ToOrderResponse(order), nil
}

// EligibleShippingMethods returns the shipping options that can serve the
// order's subtotal and destination, in display order
func (s *Service) EligibleShippingMethods(ctx context.Context, orderID uuid.UUID) ([]ShippingMethodResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	methods, err := s.shipping.FindAllEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shipping methods: %w", err)
	}

	eligible := checkout.EligibleMethods(methods, order)
	out := make([]ShippingMethodResponse, 0, len(eligible))
	for i := range eligible {
		out = append(out, ToShippingMethodResponse(&eligible[i]))
	}
	return out, nil
}

// SetShippingMethod selects a shipping method, re-checking eligibility
func (s *Service) SetShippingMethod(ctx context.Context, orderID uuid.UUID, req *SetShippingMethodRequest) (*OrderResponse, error) {
	methodID, err := uuid.Parse(req.ShippingMethodID)
	if err != nil {
		return nil, shared.ErrInvalidInput
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	method, err := s.shipping.FindByID(ctx, methodID)
	if err != nil {
		return nil, err
	}
	if !method.IsEligible(order) {
		return nil, shared.ErrShippingNotAvailable
	}

	if err := order.SetShippingMethod(method.ID, method.Price); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return ToOrderResponse(order), nil
}

// ApplyCoupon validates and applies a coupon code to the order
func (s *Service) ApplyCoupon(ctx context.Context, orderID uuid.UUID, req *ApplyCouponRequest) (*OrderResponse, error) {
	if s.coupons == nil {
		return nil, shared.ErrCouponNotApplicable
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result, err := s.validateCoupon(ctx, order, req.CouponCode)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, shared.NewDomainError(result.ErrorCode, result.ErrorMessage)
	}

	if err := order.ApplyCoupon(result.CouponCode, result.DiscountAmount, result.FreeShipping); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return ToOrderResponse(order), nil
}

// RemoveCoupon clears any applied coupon from the order
func (s *Service) RemoveCoupon(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.RemoveCoupon()
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return ToOrderResponse(order), nil
}

// PlaceOrder finalizes the cart: it suppresses duplicate submissions,
// allocates stock, moves the order to ArrangingPayment and publishes an
// OrderPlacedEvent. Stock already allocated is rolled back when a later
// line cannot be fulfilled.
func (s *Service) PlaceOrder(ctx context.Context, orderID uuid.UUID, req *PlaceOrderRequest) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Cannot place an empty order")
	}

	if req != nil && req.CustomerEmail != "" && order.CustomerEmail == "" {
		order.CustomerEmail = strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	}
	if order.CustomerEmail == "" {
		return nil, shared.NewDomainError("EMAIL_REQUIRED", "An email address is required to place an order")
	}

	dedupKey, err := s.acquireDedup(ctx, order)
	if err != nil {
		return nil, err
	}

	if err := s.allocateStock(ctx, order); err != nil {
		s.releaseDedup(ctx, dedupKey)
		return nil, err
	}

	if err := order.TransitionTo(checkout.OrderStateArrangingPayment); err != nil {
		s.releaseDedup(ctx, dedupKey)
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		s.releaseDedup(ctx, dedupKey)
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.recordCouponRedemption(ctx, order)
	s.publishEvent(ctx, checkout.NewOrderPlacedEvent(order))

	s.logger.Info("Order placed",
		zap.String("order_code", order.Code),
		zap.String("total", order.Total.StringFixed(2)))
	return ToOrderResponse(order), nil
}

// GetOrder returns a placed order by its code
func (s *Service) GetOrder(ctx context.Context, code string) (*OrderResponse, error) {
	order, err := s.orders.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// TrackOrder returns the public tracking view for an order code
func (s *Service) TrackOrder(ctx context.Context, code string) (*TrackingResponse, error) {
	order, err := s.orders.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if order.State == checkout.OrderStateAddingItems {
		return nil, shared.ErrNotFound
	}
	return ToTrackingResponse(order), nil
}

// ListOrders returns a customer's placed orders
func (s *Service) ListOrders(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]OrderResponse, error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	orders, err := s.orders.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		if orders[i].State == checkout.OrderStateAddingItems {
			continue
		}
		out = append(out, *ToOrderResponse(&orders[i]))
	}
	return out, nil
}

// MarkShipped records tracking on a settled order and publishes the
// shipped event
func (s *Service) MarkShipped(ctx context.Context, code, carrier, trackingCode string) (*OrderResponse, error) {
	order, err := s.orders.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := order.SetTracking(carrier, trackingCode); err != nil {
		return nil, err
	}
	if order.State == checkout.OrderStatePaymentSettled {
		if err := order.TransitionTo(checkout.OrderStateShipped); err != nil {
			return nil, err
		}
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.publishEvent(ctx, checkout.NewOrderShippedEvent(order))
	return ToOrderResponse(order), nil
}

func (s *Service) newCart(ctx context.Context, customerID uuid.UUID) (*checkout.Order, error) {
	email := ""
	if customerID != uuid.Nil {
		cust, err := s.customers.FindByID(ctx, customerID)
		if err != nil {
			return nil, err
		}
		email = cust.Email
	}

	order := checkout.NewOrder(email)
	if customerID != uuid.Nil {
		id := customerID
		order.CustomerID = &id
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return order, nil
}

// reapplyCoupon revalidates an applied coupon after the cart changed.
// A coupon that no longer qualifies is silently dropped from the order.
func (s *Service) reapplyCoupon(ctx context.Context, order *checkout.Order) error {
	if order.CouponCode == "" || s.coupons == nil {
		return nil
	}

	result, err := s.validateCoupon(ctx, order, order.CouponCode)
	if err != nil {
		return err
	}
	if !result.Valid {
		order.RemoveCoupon()
		return nil
	}
	return order.ApplyCoupon(result.CouponCode, result.DiscountAmount, result.FreeShipping)
}

func (s *Service) validateCoupon(ctx context.Context, order *checkout.Order, code string) (*promotionapp.CouponResult, error) {
	req := &promotionapp.ValidateCouponRequest{
		CouponCode:    code,
		OrderSubTotal: order.SubTotal,
	}
	if order.CustomerID != nil {
		req.CustomerID = *order.CustomerID
		cust, err := s.customers.FindByID(ctx, *order.CustomerID)
		if err == nil {
			req.CustomerGroup = string(cust.Group)
		}
	}
	return s.coupons.ValidateCoupon(ctx, req)
}

// allocateStock decrements stock for every line, rolling back already
// allocated lines on failure
func (s *Service) allocateStock(ctx context.Context, order *checkout.Order) error {
	type allocation struct {
		variant  *catalog.ProductVariant
		quantity int
	}
	allocated := make([]allocation, 0, len(order.Lines))
	rollback := func() {
		for _, a := range allocated {
			_ = a.variant.AdjustStock(a.quantity)
			if err := s.products.SaveVariant(ctx, a.variant); err != nil {
				s.logger.Error("Failed to roll back stock allocation",
					zap.String("variant_id", a.variant.ID.String()),
					zap.Error(err))
			}
		}
	}

	for i := range order.Lines {
		variant, err := s.products.FindVariant(ctx, order.Lines[i].VariantID)
		if err != nil {
			rollback()
			return err
		}
		if err := variant.AdjustStock(-order.Lines[i].Quantity); err != nil {
			rollback()
			return err
		}
		if err := s.products.SaveVariant(ctx, variant); err != nil {
			rollback()
			return fmt.Errorf("save stock level: %w", err)
		}
		allocated = append(allocated, allocation{variant: variant, quantity: order.Lines[i].Quantity})
	}
	return nil
}

// acquireDedup claims the order's fingerprint key; a held key means an
// identical submission is already in flight
func (s *Service) acquireDedup(ctx context.Context, order *checkout.Order) (string, error) {
	if s.dedup == nil || !s.dedupCfg.Enabled {
		return "", nil
	}

	key := s.dedupCfg.KeyPrefix + order.Fingerprint()
	ok, err := s.dedup.Acquire(ctx, key, s.dedupCfg.TTL)
	if err != nil {
		// dedup is protective, not load-bearing: a store outage must not
		// block checkout
		s.logger.Warn("Dedup store unavailable, skipping duplicate check", zap.Error(err))
		return "", nil
	}
	if !ok {
		return "", shared.ErrDuplicateSubmission
	}
	return key, nil
}

func (s *Service) releaseDedup(ctx context.Context, key string) {
	if key == "" || s.dedup == nil {
		return
	}
	if err := s.dedup.Release(ctx, key); err != nil {
		s.logger.Warn("Failed to release dedup key", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) recordCouponRedemption(ctx context.Context, order *checkout.Order) {
	if order.CouponCode == "" || order.CustomerID == nil || s.coupons == nil {
		return
	}
	if err := s.coupons.RecordRedemption(ctx, order.CouponCode, *order.CustomerID, order.ID); err != nil {
		s.logger.Warn("Failed to record coupon redemption",
			zap.String("coupon_code", order.CouponCode),
			zap.String("order_code", order.Code),
			zap.Error(err))
	}
}

func (s *Service) publishEvent(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
