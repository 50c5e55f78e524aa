package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damneddesigns/storefront/internal/domain/payment"
)

func newNMITestAdapter(t *testing.T, handler http.HandlerFunc) *NMIAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewNMIAdapter(&NMIConfig{
		SecurityKey:   "test_security_key",
		Endpoint:      server.URL,
		QueryEndpoint: server.URL,
	}, nil)
	require.NoError(t, err)
	return adapter
}

func nmiSaleRequest() *payment.CreatePaymentRequest {
	return &payment.CreatePaymentRequest{
		OrderID:       uuid.New(),
		OrderCode:     "DD-0001",
		Amount:        decimal.NewFromFloat(49.99),
		Currency:      "USD",
		CustomerEmail: "buyer@example.com",
		CardToken:     "00000000-0000-0000-0000-000000000000",
	}
}

func TestNMIConfig_Validate(t *testing.T) {
	config := &NMIConfig{}
	assert.ErrorIs(t, config.Validate(), ErrNMIMissingSecurityKey)

	config.SecurityKey = "key"
	require.NoError(t, config.Validate())
	assert.Equal(t, nmiDefaultEndpoint, config.Endpoint)
	assert.Equal(t, nmiDefaultQueryEndpoint, config.QueryEndpoint)
}

func TestNMIAdapter_CreatePayment_Approved(t *testing.T) {
	var gotForm url.Values
	adapter := newNMITestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_, _ = w.Write([]byte("response=1&responsetext=SUCCESS&authcode=123456&transactionid=9876543210&orderid=DD-0001&response_code=100"))
	})

	resp, err := adapter.CreatePayment(context.Background(), nmiSaleRequest())
	require.NoError(t, err)

	assert.Equal(t, payment.GatewayStatusSettled, resp.Status)
	assert.Equal(t, "9876543210", resp.TransactionID)
	assert.Equal(t, "123456", resp.AuthCode)

	assert.Equal(t, "sale", gotForm.Get("type"))
	assert.Equal(t, "49.99", gotForm.Get("amount"))
	assert.Equal(t, "test_security_key", gotForm.Get("security_key"))
	assert.Equal(t, "DD-0001", gotForm.Get("orderid"))
}

func TestNMIAdapter_CreatePayment_Declined(t *testing.T) {
	adapter := newNMITestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("response=2&responsetext=DECLINE&authcode=&transactionid=111&response_code=200"))
	})

	resp, err := adapter.CreatePayment(context.Background(), nmiSaleRequest())
	require.NoError(t, err)

	assert.Equal(t, payment.GatewayStatusDeclined, resp.Status)
	assert.Equal(t, "DECLINE", resp.DeclineReason)
}

func TestNMIAdapter_CreatePayment_Error(t *testing.T) {
	adapter := newNMITestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("response=3&responsetext=Invalid+Security+Key&response_code=300"))
	})

	resp, err := adapter.CreatePayment(context.Background(), nmiSaleRequest())
	require.NoError(t, err)

	assert.Equal(t, payment.GatewayStatusError, resp.Status)
	assert.Equal(t, "Invalid Security Key", resp.DeclineReason)
}

func TestNMIAdapter_CreatePayment_RequiresToken(t *testing.T) {
	adapter := newNMITestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the gateway")
	})

	req := nmiSaleRequest()
	req.CardToken = ""
	_, err := adapter.CreatePayment(context.Background(), req)
	assert.ErrorIs(t, err, payment.ErrInvalidMethod)
}

func TestNMIAdapter_QueryPayment(t *testing.T) {
	adapter := newNMITestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<nm_response>
			<transaction>
				<transaction_id>9876543210</transaction_id>
				<condition>complete</condition>
				<order_id>DD-0001</order_id>
				<action>
					<action_type>sale</action_type>
					<amount>49.99</amount>
					<success>1</success>
				</action>
			</transaction>
		</nm_response>`))
	})

	resp, err := adapter.QueryPayment(context.Background(), &payment.QueryPaymentRequest{
		TransactionID: "9876543210",
	})
	require.NoError(t, err)

	assert.Equal(t, payment.GatewayStatusSettled, resp.Status)
	assert.Equal(t, "9876543210", resp.TransactionID)
	assert.True(t, resp.Amount.Equal(decimal.NewFromFloat(49.99)))
}

func TestNMIAdapter_QueryPayment_NotFound(t *testing.T) {
	adapter := newNMITestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<nm_response></nm_response>`))
	})

	_, err := adapter.QueryPayment(context.Background(), &payment.QueryPaymentRequest{
		TransactionID: "missing",
	})
	assert.ErrorIs(t, err, payment.ErrNotFound)
}

func TestNMIAdapter_Refund(t *testing.T) {
	var gotForm url.Values
	adapter := newNMITestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_, _ = w.Write([]byte("response=1&responsetext=SUCCESS&transactionid=5555"))
	})

	resp, err := adapter.Refund(context.Background(), &payment.RefundRequest{
		TransactionID: "9876543210",
		Amount:        decimal.NewFromFloat(10.00),
	})
	require.NoError(t, err)

	assert.Equal(t, payment.GatewayStatusRefunded, resp.Status)
	assert.Equal(t, "5555", resp.RefundID)
	assert.Equal(t, "refund", gotForm.Get("type"))
	assert.Equal(t, "9876543210", gotForm.Get("transactionid"))
	assert.Equal(t, "10.00", gotForm.Get("amount"))
}

func TestNMIAdapter_Refund_Rejected(t *testing.T) {
	adapter := newNMITestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("response=3&responsetext=Transaction+not+found"))
	})

	_, err := adapter.Refund(context.Background(), &payment.RefundRequest{
		TransactionID: "bogus",
		Amount:        decimal.NewFromFloat(10.00),
	})
	assert.ErrorIs(t, err, payment.ErrGatewayRequestFailed)
}

func TestMapNMICondition(t *testing.T) {
	assert.Equal(t, payment.GatewayStatusSettled, mapNMICondition("complete"))
	assert.Equal(t, payment.GatewayStatusSettled, mapNMICondition("pendingsettlement"))
	assert.Equal(t, payment.GatewayStatusDeclined, mapNMICondition("failed"))
	assert.Equal(t, payment.GatewayStatusDeclined, mapNMICondition("canceled"))
	assert.Equal(t, payment.GatewayStatusPending, mapNMICondition("pending"))
	assert.Equal(t, payment.GatewayStatusPending, mapNMICondition("unknown"))
}
