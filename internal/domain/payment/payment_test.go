package payment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	p, err := NewPayment(uuid.New(), "DD-ABC123", GatewayTypeStripe, decimal.NewFromInt(100), "USD")
	require.NoError(t, err)
	assert.Equal(t, StateCreated, p.State)
	assert.Nil(t, p.SettledAt)

	_, err = NewPayment(uuid.Nil, "DD-ABC123", GatewayTypeStripe, decimal.NewFromInt(100), "USD")
	assert.ErrorIs(t, err, ErrInvalidOrderID)

	_, err = NewPayment(uuid.New(), "", GatewayTypeStripe, decimal.NewFromInt(100), "USD")
	assert.ErrorIs(t, err, ErrInvalidOrderCode)

	_, err = NewPayment(uuid.New(), "DD-ABC123", GatewayTypeStripe, decimal.Zero, "USD")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPaymentSettle(t *testing.T) {
	p, _ := NewPayment(uuid.New(), "DD-ABC123", GatewayTypeNMI, decimal.NewFromInt(50), "USD")

	require.NoError(t, p.Settle("txn_123"))
	assert.Equal(t, StateSettled, p.State)
	assert.Equal(t, "txn_123", p.TransactionID)
	assert.NotNil(t, p.SettledAt)

	assert.ErrorIs(t, p.Settle("txn_123"), ErrAlreadySettled)
}

func TestPaymentRecordRefund(t *testing.T) {
	p, _ := NewPayment(uuid.New(), "DD-ABC123", GatewayTypeStripe, decimal.RequireFromString("129.90"), "USD")
	require.NoError(t, p.Settle("pi_123"))

	require.NoError(t, p.RecordRefund(decimal.RequireFromString("100.00")))
	assert.Equal(t, StateSettled, p.State)
	assert.True(t, p.RefundableAmount().Equal(decimal.RequireFromString("29.90")))

	// refunds are capped at the capture, not rechecked from zero
	assert.ErrorIs(t, p.RecordRefund(decimal.RequireFromString("100.00")), ErrRefundExceedsTotal)
	assert.ErrorIs(t, p.RecordRefund(decimal.Zero), ErrInvalidAmount)

	require.NoError(t, p.RecordRefund(decimal.RequireFromString("29.90")))
	assert.Equal(t, StateRefunded, p.State)
	assert.True(t, p.RefundableAmount().IsZero())
}

func TestPaymentDecline(t *testing.T) {
	p, _ := NewPayment(uuid.New(), "DD-ABC123", GatewayTypeNMI, decimal.NewFromInt(50), "USD")
	p.Decline("insufficient funds")
	assert.Equal(t, StateDeclined, p.State)
	assert.Equal(t, "insufficient funds", p.ErrorMessage)
}

func TestCreatePaymentRequestValidate(t *testing.T) {
	req := &CreatePaymentRequest{}
	assert.ErrorIs(t, req.Validate(), ErrInvalidOrderID)

	req.OrderID = uuid.New()
	assert.ErrorIs(t, req.Validate(), ErrInvalidOrderCode)

	req.OrderCode = "DD-ABC123"
	assert.ErrorIs(t, req.Validate(), ErrInvalidAmount)

	req.Amount = decimal.NewFromInt(10)
	assert.NoError(t, req.Validate())
}

func TestGatewayTypeIsValid(t *testing.T) {
	assert.True(t, GatewayTypeStripe.IsValid())
	assert.True(t, GatewayTypeNMI.IsValid())
	assert.True(t, GatewayTypeSezzle.IsValid())
	assert.False(t, GatewayType("PAYPAL").IsValid())
}
