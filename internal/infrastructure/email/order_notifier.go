package email

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

// OrderNotifier subscribes to checkout events and emails the customer.
// Send failures are logged and reported to the bus error callback; they
// never block order processing.
type OrderNotifier struct {
	sender  Sender
	shopURL string
	logger  *zap.Logger
}

// NewOrderNotifier creates an event handler that emails order updates
func NewOrderNotifier(sender Sender, shopURL string, logger *zap.Logger) *OrderNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderNotifier{
		sender:  sender,
		shopURL: strings.TrimRight(shopURL, "/"),
		logger:  logger,
	}
}

// EventTypes returns the checkout events this notifier reacts to
func (n *OrderNotifier) EventTypes() []string {
	return []string{
		checkout.EventTypeOrderPlaced,
		checkout.EventTypePaymentSettled,
		checkout.EventTypeOrderShipped,
	}
}

// Handle renders and sends the email for a checkout event
func (n *OrderNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *checkout.OrderPlacedEvent:
		return n.sendOrderConfirmation(ctx, e)
	case *checkout.PaymentSettledEvent:
		return n.sendPaymentReceipt(ctx, e)
	case *checkout.OrderShippedEvent:
		return n.sendShippingNotice(ctx, e)
	default:
		n.logger.Debug("Ignoring event with no email template",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}
}

func (n *OrderNotifier) sendOrderConfirmation(ctx context.Context, e *checkout.OrderPlacedEvent) error {
	if e.CustomerEmail == "" {
		return nil
	}
	body, err := renderTemplate(templateOrderConfirmation, orderConfirmationData{
		OrderCode: e.OrderCode,
		Total:     e.Total,
		ShopURL:   n.shopURL,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Order %s confirmed", e.OrderCode)
	return n.send(ctx, e.CustomerEmail, subject, body, e.OrderCode)
}

func (n *OrderNotifier) sendPaymentReceipt(ctx context.Context, e *checkout.PaymentSettledEvent) error {
	if e.CustomerEmail == "" {
		return nil
	}
	body, err := renderTemplate(templatePaymentReceipt, paymentReceiptData{
		OrderCode: e.OrderCode,
		Amount:    e.Amount,
		Gateway:   e.Gateway,
		ShopURL:   n.shopURL,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Payment received for order %s", e.OrderCode)
	return n.send(ctx, e.CustomerEmail, subject, body, e.OrderCode)
}

func (n *OrderNotifier) sendShippingNotice(ctx context.Context, e *checkout.OrderShippedEvent) error {
	if e.CustomerEmail == "" {
		return nil
	}
	body, err := renderTemplate(templateShippingNotice, shippingNoticeData{
		OrderCode:    e.OrderCode,
		Carrier:      e.Carrier,
		TrackingCode: e.TrackingCode,
		ShopURL:      n.shopURL,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Order %s has shipped", e.OrderCode)
	return n.send(ctx, e.CustomerEmail, subject, body, e.OrderCode)
}

func (n *OrderNotifier) send(ctx context.Context, to, subject, body, orderCode string) error {
	if err := n.sender.Send(ctx, to, subject, body); err != nil {
		n.logger.Error("Failed to send order email",
			zap.String("order_code", orderCode),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}
	n.logger.Info("Order email sent",
		zap.String("order_code", orderCode),
		zap.String("subject", subject),
	)
	return nil
}

var _ shared.EventHandler = (*OrderNotifier)(nil)
