package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damneddesigns/storefront/internal/domain/payment"
)

// sezzleTestServer answers /authentication and delegates everything else
func sezzleTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/authentication", func(w http.ResponseWriter, r *http.Request) {
		var auth sezzleAuthRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&auth))
		assert.Equal(t, "pub_key", auth.PublicKey)
		assert.Equal(t, "priv_key", auth.PrivateKey)
		_ = json.NewEncoder(w).Encode(sezzleAuthResponse{
			Token:          "test-bearer-token",
			ExpirationDate: time.Now().Add(2 * time.Hour),
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-bearer-token", r.Header.Get("Authorization"))
		handler(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newSezzleTestAdapter(t *testing.T, handler http.HandlerFunc) *SezzleAdapter {
	t.Helper()
	server := sezzleTestServer(t, handler)
	adapter, err := NewSezzleAdapter(&SezzleConfig{
		PublicKey:  "pub_key",
		PrivateKey: "priv_key",
		BaseURL:    server.URL,
	}, nil)
	require.NoError(t, err)
	return adapter
}

func TestSezzleConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, (&SezzleConfig{}).Validate(), ErrSezzleMissingPublicKey)
	assert.ErrorIs(t, (&SezzleConfig{PublicKey: "p"}).Validate(), ErrSezzleMissingPrivateKey)

	config := &SezzleConfig{PublicKey: "p", PrivateKey: "s"}
	require.NoError(t, config.Validate())
	assert.Equal(t, sezzleDefaultBaseURL, config.BaseURL)
}

func TestSezzleAdapter_CreatePayment(t *testing.T) {
	adapter := newSezzleTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session", r.URL.Path)

		var session sezzleSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&session))
		assert.Equal(t, "CAPTURE", session.Order.Intent)
		assert.Equal(t, "DD-0002", session.Order.ReferenceID)
		assert.Equal(t, int64(12550), session.Order.OrderAmount.AmountInCents)
		assert.Equal(t, "https://shop.example.com/checkout/confirm", session.CompleteURL.Href)

		resp := sezzleSessionResponse{UUID: "session-uuid"}
		resp.Order.UUID = "order-uuid"
		resp.Order.CheckoutURL = "https://checkout.sezzle.com/?id=order-uuid"
		_ = json.NewEncoder(w).Encode(resp)
	})

	resp, err := adapter.CreatePayment(context.Background(), &payment.CreatePaymentRequest{
		OrderID:   uuid.New(),
		OrderCode: "DD-0002",
		Amount:    decimal.NewFromFloat(125.50),
		Currency:  "USD",
		ReturnURL: "https://shop.example.com/checkout/confirm",
	})
	require.NoError(t, err)

	assert.Equal(t, payment.GatewayStatusPending, resp.Status)
	assert.Equal(t, "order-uuid", resp.TransactionID)
	assert.Equal(t, "https://checkout.sezzle.com/?id=order-uuid", resp.RedirectURL)
}

func TestSezzleAdapter_CreatePayment_RequiresReturnURL(t *testing.T) {
	adapter := newSezzleTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the gateway")
	})

	_, err := adapter.CreatePayment(context.Background(), &payment.CreatePaymentRequest{
		OrderID:   uuid.New(),
		OrderCode: "DD-0002",
		Amount:    decimal.NewFromFloat(125.50),
	})
	assert.ErrorIs(t, err, payment.ErrInvalidMethod)
}

func TestSezzleAdapter_QueryPayment_Captured(t *testing.T) {
	adapter := newSezzleTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/order-uuid", r.URL.Path)
		_ = json.NewEncoder(w).Encode(sezzleOrderResponse{
			UUID:           "order-uuid",
			ReferenceID:    "DD-0002",
			OrderAmount:    sezzlePrice{AmountInCents: 12550, Currency: "USD"},
			CapturedAmount: sezzlePrice{AmountInCents: 12550, Currency: "USD"},
		})
	})

	resp, err := adapter.QueryPayment(context.Background(), &payment.QueryPaymentRequest{
		TransactionID: "order-uuid",
	})
	require.NoError(t, err)

	assert.Equal(t, payment.GatewayStatusSettled, resp.Status)
	assert.True(t, resp.Amount.Equal(decimal.NewFromFloat(125.50)))
}

func TestSezzleAdapter_QueryPayment_Pending(t *testing.T) {
	adapter := newSezzleTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sezzleOrderResponse{
			UUID:        "order-uuid",
			OrderAmount: sezzlePrice{AmountInCents: 12550, Currency: "USD"},
		})
	})

	resp, err := adapter.QueryPayment(context.Background(), &payment.QueryPaymentRequest{
		TransactionID: "order-uuid",
	})
	require.NoError(t, err)
	assert.Equal(t, payment.GatewayStatusPending, resp.Status)
}

func TestSezzleAdapter_QueryPayment_NotFound(t *testing.T) {
	adapter := newSezzleTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := adapter.QueryPayment(context.Background(), &payment.QueryPaymentRequest{
		TransactionID: "missing",
	})
	assert.ErrorIs(t, err, payment.ErrNotFound)
}

func TestSezzleAdapter_Refund(t *testing.T) {
	adapter := newSezzleTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/order-uuid/refund", r.URL.Path)

		var refundReq sezzlePrice
		require.NoError(t, json.NewDecoder(r.Body).Decode(&refundReq))
		assert.Equal(t, int64(2500), refundReq.AmountInCents)
		assert.Equal(t, "EUR", refundReq.Currency)

		_ = json.NewEncoder(w).Encode(sezzleRefundResponse{UUID: "refund-uuid"})
	})

	resp, err := adapter.Refund(context.Background(), &payment.RefundRequest{
		TransactionID: "order-uuid",
		Amount:        decimal.NewFromFloat(25.00),
		Currency:      "EUR",
	})
	require.NoError(t, err)

	assert.Equal(t, payment.GatewayStatusRefunded, resp.Status)
	assert.Equal(t, "refund-uuid", resp.RefundID)
}

func TestSezzleAdapter_ReusesBearerToken(t *testing.T) {
	authCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/authentication", func(w http.ResponseWriter, r *http.Request) {
		authCalls++
		_ = json.NewEncoder(w).Encode(sezzleAuthResponse{
			Token:          "test-bearer-token",
			ExpirationDate: time.Now().Add(2 * time.Hour),
		})
	})
	mux.HandleFunc("/order/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sezzleOrderResponse{UUID: "order-uuid"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	adapter, err := NewSezzleAdapter(&SezzleConfig{
		PublicKey:  "pub_key",
		PrivateKey: "priv_key",
		BaseURL:    server.URL,
	}, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := adapter.QueryPayment(context.Background(), &payment.QueryPaymentRequest{
			TransactionID: "order-uuid",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, authCalls)
}

func TestAmountCentsRoundTrip(t *testing.T) {
	assert.Equal(t, int64(12550), amountToCents(decimal.NewFromFloat(125.50)))
	assert.Equal(t, int64(1), amountToCents(decimal.NewFromFloat(0.01)))
	assert.True(t, centsToAmount(12550).Equal(decimal.NewFromFloat(125.50)))
}
