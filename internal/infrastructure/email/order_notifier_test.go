package email

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/infrastructure/config"
)

type capturedEmail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	sent []capturedEmail
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, capturedEmail{to: to, subject: subject, body: htmlBody})
	return nil
}

func placedEvent(email string) *checkout.OrderPlacedEvent {
	return &checkout.OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(checkout.EventTypeOrderPlaced, "Order", uuid.New()),
		OrderCode:       "DD-10042",
		CustomerEmail:   email,
		Total:           "129.95",
	}
}

func TestOrderNotifier_OrderPlaced(t *testing.T) {
	sender := &fakeSender{}
	n := NewOrderNotifier(sender, "https://damneddesigns.com/", zap.NewNop())

	err := n.Handle(context.Background(), placedEvent("buyer@example.com"))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "buyer@example.com", msg.to)
	assert.Equal(t, "Order DD-10042 confirmed", msg.subject)
	assert.Contains(t, msg.body, "DD-10042")
	assert.Contains(t, msg.body, "129.95")
	assert.Contains(t, msg.body, "https://damneddesigns.com/orders/DD-10042")
}

func TestOrderNotifier_PaymentSettled(t *testing.T) {
	sender := &fakeSender{}
	n := NewOrderNotifier(sender, "https://damneddesigns.com", zap.NewNop())

	err := n.Handle(context.Background(), &checkout.PaymentSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(checkout.EventTypePaymentSettled, "Order", uuid.New()),
		OrderCode:       "DD-10042",
		CustomerEmail:   "buyer@example.com",
		Gateway:         "stripe",
		Amount:          "129.95",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Payment received for order DD-10042", sender.sent[0].subject)
	assert.Contains(t, sender.sent[0].body, "stripe")
}

func TestOrderNotifier_OrderShipped(t *testing.T) {
	sender := &fakeSender{}
	n := NewOrderNotifier(sender, "https://damneddesigns.com", zap.NewNop())

	err := n.Handle(context.Background(), &checkout.OrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(checkout.EventTypeOrderShipped, "Order", uuid.New()),
		OrderCode:       "DD-10042",
		CustomerEmail:   "buyer@example.com",
		Carrier:         "USPS",
		TrackingCode:    "9400100000000000000000",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Order DD-10042 has shipped", sender.sent[0].subject)
	assert.Contains(t, sender.sent[0].body, "USPS")
	assert.Contains(t, sender.sent[0].body, "9400100000000000000000")
}

func TestOrderNotifier_SkipsMissingEmail(t *testing.T) {
	sender := &fakeSender{}
	n := NewOrderNotifier(sender, "https://damneddesigns.com", zap.NewNop())

	err := n.Handle(context.Background(), placedEvent(""))
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestOrderNotifier_PropagatesSendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay unavailable")}
	n := NewOrderNotifier(sender, "https://damneddesigns.com", zap.NewNop())

	err := n.Handle(context.Background(), placedEvent("buyer@example.com"))
	require.Error(t, err)
}

func TestOrderNotifier_EventTypes(t *testing.T) {
	n := NewOrderNotifier(&fakeSender{}, "https://damneddesigns.com", nil)
	assert.ElementsMatch(t, []string{
		checkout.EventTypeOrderPlaced,
		checkout.EventTypePaymentSettled,
		checkout.EventTypeOrderShipped,
	}, n.EventTypes())
}

func TestSMTPSender_Validation(t *testing.T) {
	t.Run("missing host returns error", func(t *testing.T) {
		_, err := NewSMTPSender(configWith("", "no-reply@damneddesigns.com"), nil)
		require.Error(t, err)
	})

	t.Run("missing from address returns error", func(t *testing.T) {
		_, err := NewSMTPSender(configWith("smtp.example.com", ""), nil)
		require.Error(t, err)
	})

	t.Run("builds message with headers", func(t *testing.T) {
		s, err := NewSMTPSender(configWith("smtp.example.com", "no-reply@damneddesigns.com"), nil)
		require.NoError(t, err)

		msg := string(s.buildMessage("buyer@example.com", "Hello", "<p>Hi</p>"))
		assert.Contains(t, msg, "From: Damned Designs <no-reply@damneddesigns.com>\r\n")
		assert.Contains(t, msg, "To: buyer@example.com\r\n")
		assert.Contains(t, msg, "Subject: Hello\r\n")
		assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n")
		assert.Contains(t, msg, "<p>Hi</p>")
	})
}

func configWith(host, from string) config.EmailConfig {
	return config.EmailConfig{
		Enabled:     true,
		Host:        host,
		Port:        587,
		FromAddress: from,
		FromName:    "Damned Designs",
	}
}
