// Package promotion exposes coupon validation and redemption tracking.
package promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/promotion"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

// ValidateCouponRequest carries what a coupon is evaluated against
type ValidateCouponRequest struct {
	CouponCode    string
	OrderSubTotal decimal.Decimal
	CustomerID    uuid.UUID
	CustomerGroup string
}

// CouponResult is the outcome of validating a coupon against an order
type CouponResult struct {
	PromotionID    uuid.UUID       `json:"promotion_id"`
	CouponCode     string          `json:"coupon_code"`
	Valid          bool            `json:"valid"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FreeShipping   bool            `json:"free_shipping"`
	ErrorCode      string          `json:"error_code,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

// Service validates coupons and records redemptions
type Service struct {
	promotions promotion.Repository
	logger     *zap.Logger
}

// NewService creates a promotion service
func NewService(promotions promotion.Repository, logger *zap.Logger) *Service {
	return &Service{promotions: promotions, logger: logger}
}

// ValidateCoupon evaluates a coupon code against the customer's order.
// An unknown code is reported as an invalid result, not an error: the
// storefront treats it the same way as a disabled or expired coupon.
func (s *Service) ValidateCoupon(ctx context.Context, req *ValidateCouponRequest) (*CouponResult, error) {
	code := strings.ToUpper(strings.TrimSpace(req.CouponCode))
	if code == "" {
		return invalidResult(code, "COUPON_REQUIRED", "A coupon code is required"), nil
	}

	promo, err := s.promotions.FindByCouponCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return invalidResult(code, "COUPON_NOT_FOUND", "This coupon code does not exist"), nil
		}
		return nil, fmt.Errorf("look up coupon: %w", err)
	}

	usageCount := 0
	if req.CustomerID != uuid.Nil {
		usageCount, err = s.promotions.CountRedemptions(ctx, promo.ID, req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("count redemptions: %w", err)
		}
	}

	result := promo.Validate(promotion.ValidationInput{
		OrderSubTotal: req.OrderSubTotal,
		CustomerGroup: req.CustomerGroup,
		UsageCount:    usageCount,
		Now:           time.Now(),
	})

	return &CouponResult{
		PromotionID:    promo.ID,
		CouponCode:     code,
		Valid:          result.Valid,
		DiscountAmount: result.DiscountAmount,
		FreeShipping:   result.FreeShipping,
		ErrorCode:      result.ErrorCode,
		ErrorMessage:   result.ErrorMessage,
	}, nil
}

// RecordRedemption records that a placed order consumed a coupon
func (s *Service) RecordRedemption(ctx context.Context, couponCode string, customerID, orderID uuid.UUID) error {
	code := strings.ToUpper(strings.TrimSpace(couponCode))
	promo, err := s.promotions.FindByCouponCode(ctx, code)
	if err != nil {
		return fmt.Errorf("look up coupon: %w", err)
	}

	redemption := promotion.NewRedemption(promo.ID, customerID, orderID)
	if err := s.promotions.RecordRedemption(ctx, redemption); err != nil {
		return fmt.Errorf("record redemption: %w", err)
	}

	s.logger.Info("Coupon redeemed",
		zap.String("coupon_code", code),
		zap.String("order_id", orderID.String()))
	return nil
}

func invalidResult(code, errorCode, message string) *CouponResult {
	return &CouponResult{
		CouponCode:     code,
		Valid:          false,
		DiscountAmount: decimal.Zero,
		ErrorCode:      errorCode,
		ErrorMessage:   message,
	}
}
