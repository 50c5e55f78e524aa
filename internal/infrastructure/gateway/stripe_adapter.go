package gateway

import (
	"context"
	"fmt"
	"maps"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/refund"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/payment"
)

// StripeAdapter implements the payment.Gateway interface using Payment
// Intents. CreatePayment returns a client secret; the frontend confirms the
// intent and settlement arrives through the webhook.
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// GatewayType returns the gateway type
func (a *StripeAdapter) GatewayType() payment.GatewayType {
	return payment.GatewayTypeStripe
}

// CreatePayment creates a payment intent for the order total
func (a *StripeAdapter) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountToCents(req.Amount)),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}

	// order identifiers ride along so the webhook can settle the right order
	params.Metadata = map[string]string{
		"order_id":   req.OrderID.String(),
		"order_code": req.OrderCode,
	}
	maps.Copy(params.Metadata, req.Metadata)

	intent, err := paymentintent.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe payment intent",
			zap.String("order_code", req.OrderCode),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayRequestFailed, err)
	}

	a.logger.Info("Created Stripe payment intent",
		zap.String("order_code", req.OrderCode),
		zap.String("intent_id", intent.ID))

	return &payment.CreatePaymentResponse{
		GatewayType:      payment.GatewayTypeStripe,
		Status:           mapStripeIntentStatus(intent.Status),
		TransactionID:    intent.ID,
		ClientSecret:     intent.ClientSecret,
		AmountAuthorized: req.Amount,
	}, nil
}

// QueryPayment fetches the current state of a payment intent
func (a *StripeAdapter) QueryPayment(ctx context.Context, req *payment.QueryPaymentRequest) (*payment.QueryPaymentResponse, error) {
	if req.TransactionID == "" {
		return nil, payment.ErrNotFound
	}

	intent, err := paymentintent.Get(req.TransactionID, nil)
	if err != nil {
		a.logger.Error("Failed to get Stripe payment intent",
			zap.String("intent_id", req.TransactionID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayRequestFailed, err)
	}

	return &payment.QueryPaymentResponse{
		GatewayType:   payment.GatewayTypeStripe,
		Status:        mapStripeIntentStatus(intent.Status),
		TransactionID: intent.ID,
		Amount:        centsToAmount(intent.Amount),
	}, nil
}

// Refund refunds part or all of a settled payment intent
func (a *StripeAdapter) Refund(ctx context.Context, req *payment.RefundRequest) (*payment.RefundResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.TransactionID),
		Amount:        stripe.Int64(amountToCents(req.Amount)),
	}
	if req.Reason != "" {
		params.Reason = stripe.String(req.Reason)
	}

	ref, err := refund.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe refund",
			zap.String("intent_id", req.TransactionID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayRequestFailed, err)
	}

	a.logger.Info("Created Stripe refund",
		zap.String("intent_id", req.TransactionID),
		zap.String("refund_id", ref.ID))

	return &payment.RefundResponse{
		GatewayType: payment.GatewayTypeStripe,
		Status:      payment.GatewayStatusRefunded,
		RefundID:    ref.ID,
		Amount:      centsToAmount(ref.Amount),
	}, nil
}

// VerifyWebhook checks the event signature and returns the parsed event
func (a *StripeAdapter) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, a.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidCallback, err)
	}
	return &event, nil
}

// mapStripeIntentStatus maps a payment intent status to our gateway status
func mapStripeIntentStatus(status stripe.PaymentIntentStatus) payment.GatewayStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return payment.GatewayStatusSettled
	case stripe.PaymentIntentStatusCanceled:
		return payment.GatewayStatusDeclined
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresCapture:
		return payment.GatewayStatusPending
	default:
		return payment.GatewayStatusPending
	}
}

// Ensure StripeAdapter implements the Gateway interface
var _ payment.Gateway = (*StripeAdapter)(nil)
