package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/customer"
	"github.com/damneddesigns/storefront/internal/domain/fulfillment"
	"github.com/damneddesigns/storefront/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

func testOrder(t *testing.T) *checkout.Order {
	t.Helper()
	order := checkout.NewOrder("buyer@example.com")
	price, err := valueobject.NewMoneyFromString("64.95", "USD")
	require.NoError(t, err)
	_, err = order.AddLine(uuid.New(), "Osiris Knife", "OSIRIS-TI", 2, price)
	require.NoError(t, err)
	require.NoError(t, order.SetShippingAddress(customer.Address{
		FullName:    "Jo Buyer",
		StreetLine1: "1 Forge Lane",
		City:        "Austin",
		Province:    "TX",
		PostalCode:  "78701",
		CountryCode: "US",
	}))
	return order
}

func testFulfillmentConfig(t *testing.T, endpoint string) *fulfillment.Config {
	t.Helper()
	cfg, err := fulfillment.NewConfig(endpoint, "DAMNED", "api-user", "api-pass")
	require.NoError(t, err)
	return cfg
}

func TestHTTPExporter_ExportOrder(t *testing.T) {
	var gotPayload exportRequest
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		fmt.Fprint(w, `{"accepted":true}`)
	}))
	defer server.Close()

	exporter := NewHTTPExporter(zap.NewNop())
	order := testOrder(t)

	err := exporter.ExportOrder(context.Background(), testFulfillmentConfig(t, server.URL), order)
	require.NoError(t, err)

	assert.Equal(t, "api-user", gotUser)
	assert.Equal(t, "api-pass", gotPass)
	assert.Equal(t, "DAMNED", gotPayload.OwnerID)
	assert.Equal(t, order.Code, gotPayload.OrderCode)
	assert.Equal(t, "buyer@example.com", gotPayload.CustomerEmail)
	assert.Equal(t, "Jo Buyer", gotPayload.ShipTo.FullName)
	assert.Equal(t, "US", gotPayload.ShipTo.CountryCode)
	require.Len(t, gotPayload.Lines, 1)
	assert.Equal(t, "OSIRIS-TI", gotPayload.Lines[0].SKU)
	assert.Equal(t, 2, gotPayload.Lines[0].Quantity)
	assert.Equal(t, "64.95", gotPayload.Lines[0].UnitPrice)
	assert.Equal(t, "129.90", gotPayload.OrderTotal)
}

func TestHTTPExporter_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"accepted":false,"message":"unknown sku"}`)
	}))
	defer server.Close()

	exporter := NewHTTPExporter(zap.NewNop())
	err := exporter.ExportOrder(context.Background(), testFulfillmentConfig(t, server.URL), testOrder(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExportRejected)
	assert.Contains(t, err.Error(), "unknown sku")
}

func TestHTTPExporter_RejectedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"accepted":false,"message":"owner suspended"}`)
	}))
	defer server.Close()

	exporter := NewHTTPExporter(zap.NewNop())
	err := exporter.ExportOrder(context.Background(), testFulfillmentConfig(t, server.URL), testOrder(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExportRejected)
}

func TestHTTPExporter_RequiresEnabledConfig(t *testing.T) {
	exporter := NewHTTPExporter(zap.NewNop())

	cfg := testFulfillmentConfig(t, "https://fulfillment.example.com")
	cfg.Enabled = false

	err := exporter.ExportOrder(context.Background(), cfg, testOrder(t))
	require.Error(t, err)

	err = exporter.ExportOrder(context.Background(), nil, testOrder(t))
	require.Error(t, err)
}
