// Package payment exposes payment collection, settlement and refunds
// across the configured gateways.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/fulfillment"
	"github.com/damneddesigns/storefront/internal/domain/payment"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

// GatewayResolver looks up a configured gateway adapter by type
type GatewayResolver interface {
	Get(gatewayType payment.GatewayType) (payment.Gateway, error)
}

// DedupReleaser frees an order's duplicate-submission key so a declined
// checkout can be retried immediately
type DedupReleaser interface {
	Release(ctx context.Context, key string) error
}

// Service implements payment collection and settlement
type Service struct {
	payments    payment.Repository
	orders      checkout.OrderRepository
	fulfillment fulfillment.ConfigRepository
	gateways    GatewayResolver
	publisher   shared.EventPublisher
	dedup       DedupReleaser
	dedupPrefix string
	logger      *zap.Logger
}

// NewService creates a payment service
func NewService(
	payments payment.Repository,
	orders checkout.OrderRepository,
	gateways GatewayResolver,
	logger *zap.Logger,
) *Service {
	return &Service{
		payments: payments,
		orders:   orders,
		gateways: gateways,
		logger:   logger,
	}
}

// SetEventPublisher wires a domain event publisher into the service
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetFulfillmentRepository wires export-record creation on settlement
func (s *Service) SetFulfillmentRepository(repo fulfillment.ConfigRepository) {
	s.fulfillment = repo
}

// SetDedupReleaser wires dedup key release on declined payments
func (s *Service) SetDedupReleaser(releaser DedupReleaser, keyPrefix string) {
	s.dedup = releaser
	s.dedupPrefix = keyPrefix
}

// CreatePayment asks the chosen gateway to start collecting payment for
// an order in ArrangingPayment. A direct-capture gateway may settle the
// order in the same call; redirect and client-secret flows settle later
// through HandleGatewayResult or a webhook.
func (s *Service) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*PaymentResponse, error) {
	gatewayType := payment.GatewayType(strings.ToUpper(req.Gateway))
	if !gatewayType.IsValid() {
		return nil, payment.ErrInvalidMethod
	}

	order, err := s.orders.FindByCode(ctx, req.OrderCode)
	if err != nil {
		return nil, err
	}
	if order.State != checkout.OrderStateArrangingPayment {
		return nil, shared.ErrInvalidState
	}

	gateway, err := s.gateways.Get(gatewayType)
	if err != nil {
		return nil, err
	}

	record, err := payment.NewPayment(order.ID, order.Code, gatewayType, order.Total, string(order.Currency))
	if err != nil {
		return nil, err
	}

	resp, err := gateway.CreatePayment(ctx, &payment.CreatePaymentRequest{
		OrderID:       order.ID,
		OrderCode:     order.Code,
		Amount:        order.Total,
		Currency:      string(order.Currency),
		CustomerEmail: order.CustomerEmail,
		CardToken:     req.CardToken,
		ReturnURL:     req.ReturnURL,
		CancelURL:     req.CancelURL,
		Metadata:      map[string]string{"order_code": order.Code},
	})
	if err != nil {
		record.Fail(err.Error())
		if saveErr := s.payments.Save(ctx, record); saveErr != nil {
			s.logger.Error("Failed to save errored payment", zap.Error(saveErr))
		}
		return nil, err
	}

	record.TransactionID = resp.TransactionID

	switch resp.Status {
	case payment.GatewayStatusSettled:
		if err := s.settle(ctx, record, order, resp.TransactionID); err != nil {
			return nil, err
		}
	case payment.GatewayStatusDeclined:
		s.decline(ctx, record, order, resp.DeclineReason)
		if err := s.payments.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("save payment: %w", err)
		}
		return nil, shared.ErrPaymentDeclined
	default:
		if err := s.payments.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("save payment: %w", err)
		}
	}

	out := ToPaymentResponse(record)
	out.ClientSecret = resp.ClientSecret
	out.RedirectURL = resp.RedirectURL
	return out, nil
}

// SettleByTransaction settles the payment matching a gateway transaction.
// Webhook handlers call this once the gateway confirms capture; replayed
// notifications for an already settled payment are ignored.
func (s *Service) SettleByTransaction(ctx context.Context, transactionID string) error {
	record, err := s.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	if record.State == payment.StateSettled {
		return nil
	}

	order, err := s.orders.FindByID(ctx, record.OrderID)
	if err != nil {
		return err
	}
	return s.settle(ctx, record, order, transactionID)
}

// DeclineByTransaction records a gateway-side decline for a payment
func (s *Service) DeclineByTransaction(ctx context.Context, transactionID, reason string) error {
	record, err := s.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	if record.State != payment.StateCreated {
		return nil
	}

	order, err := s.orders.FindByID(ctx, record.OrderID)
	if err != nil {
		return err
	}
	s.decline(ctx, record, order, reason)
	return s.payments.Save(ctx, record)
}

// QueryPayment returns the gateway-side state of an order's latest payment
func (s *Service) QueryPayment(ctx context.Context, orderCode string) (*PaymentResponse, error) {
	order, err := s.orders.FindByCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}

	records, err := s.payments.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, payment.ErrNotFound
	}

	latest := &records[len(records)-1]
	return ToPaymentResponse(latest), nil
}

// Refund refunds a settled payment through its gateway. An empty amount
// refunds the full captured total.
func (s *Service) Refund(ctx context.Context, orderCode string, req *RefundRequest) (*PaymentResponse, error) {
	order, err := s.orders.FindByCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}

	records, err := s.payments.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	var settled *payment.Payment
	for i := range records {
		if records[i].State == payment.StateSettled {
			settled = &records[i]
			break
		}
	}
	if settled == nil {
		return nil, payment.ErrNotFound
	}

	available := settled.RefundableAmount()
	amount := available
	if req != nil && req.Amount != "" {
		amount, err = decimal.NewFromString(req.Amount)
		if err != nil {
			return nil, payment.ErrInvalidAmount
		}
	}
	if !amount.IsPositive() {
		return nil, payment.ErrInvalidAmount
	}
	if amount.GreaterThan(available) {
		return nil, payment.ErrRefundExceedsTotal
	}

	gateway, err := s.gateways.Get(settled.GatewayType)
	if err != nil {
		return nil, err
	}

	reason := ""
	if req != nil {
		reason = req.Reason
	}
	if _, err := gateway.Refund(ctx, &payment.RefundRequest{
		TransactionID: settled.TransactionID,
		OrderCode:     settled.OrderCode,
		Amount:        amount,
		Currency:      settled.Currency,
		Reason:        reason,
	}); err != nil {
		return nil, err
	}

	if err := settled.RecordRefund(amount); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, settled); err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}

	s.logger.Info("Payment refunded",
		zap.String("order_code", orderCode),
		zap.String("amount", amount.StringFixed(2)))
	return ToPaymentResponse(settled), nil
}

// settle captures the payment, moves the order to PaymentSettled, queues
// the fulfillment export and publishes the settled event
func (s *Service) settle(ctx context.Context, record *payment.Payment, order *checkout.Order, transactionID string) error {
	if err := record.Settle(transactionID); err != nil {
		if errors.Is(err, payment.ErrAlreadySettled) {
			return nil
		}
		return err
	}
	if err := s.payments.Save(ctx, record); err != nil {
		return fmt.Errorf("save payment: %w", err)
	}

	if err := order.TransitionTo(checkout.OrderStatePaymentSettled); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return fmt.Errorf("save order: %w", err)
	}

	s.queueFulfillmentExport(ctx, order)
	s.publishEvent(ctx, checkout.NewPaymentSettledEvent(order, record.GatewayType.String()))

	s.logger.Info("Payment settled",
		zap.String("order_code", order.Code),
		zap.String("gateway", record.GatewayType.String()),
		zap.String("transaction_id", transactionID))
	return nil
}

// decline records the decline and frees the order's dedup key so the
// customer can retry checkout right away
func (s *Service) decline(ctx context.Context, record *payment.Payment, order *checkout.Order, reason string) {
	record.Decline(reason)
	s.releaseDedup(ctx, order)
	s.logger.Warn("Payment declined",
		zap.String("order_code", order.Code),
		zap.String("reason", reason))
}

func (s *Service) queueFulfillmentExport(ctx context.Context, order *checkout.Order) {
	if s.fulfillment == nil {
		return
	}
	if _, err := s.fulfillment.FindExportByOrderID(ctx, order.ID); err == nil {
		return
	}
	record := fulfillment.NewExportRecord(order.ID, order.Code)
	if err := s.fulfillment.SaveExport(ctx, record); err != nil {
		s.logger.Error("Failed to queue fulfillment export",
			zap.String("order_code", order.Code),
			zap.Error(err))
	}
}

func (s *Service) releaseDedup(ctx context.Context, order *checkout.Order) {
	if s.dedup == nil {
		return
	}
	key := s.dedupPrefix + order.Fingerprint()
	if err := s.dedup.Release(ctx, key); err != nil {
		s.logger.Warn("Failed to release dedup key",
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
