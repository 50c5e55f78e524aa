// Package fulfillment exports settled orders to the external fulfillment house.
package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/fulfillment"
)

// ErrExportRejected is returned when the fulfillment API rejects an order
var ErrExportRejected = errors.New("fulfillment export rejected")

// Exporter sends one order to the fulfillment house
type Exporter interface {
	ExportOrder(ctx context.Context, cfg *fulfillment.Config, order *checkout.Order) error
}

// exportLine is one SKU/quantity pair in the export payload
type exportLine struct {
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// exportShipTo is the destination address in the export payload
type exportShipTo struct {
	FullName    string `json:"full_name"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2,omitempty"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone,omitempty"`
}

// exportRequest is the order payload posted to the fulfillment API
type exportRequest struct {
	OwnerID       string       `json:"owner_id"`
	OrderCode     string       `json:"order_code"`
	CustomerEmail string       `json:"customer_email"`
	ShipTo        exportShipTo `json:"ship_to"`
	Lines         []exportLine `json:"lines"`
	ShippingTotal string       `json:"shipping_total"`
	OrderTotal    string       `json:"order_total"`
}

type exportResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// HTTPExporter posts orders to the fulfillment house over HTTPS
type HTTPExporter struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPExporter creates an order exporter
func NewHTTPExporter(logger *zap.Logger) *HTTPExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPExporter{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// ExportOrder posts one order for pick/pack/ship
func (e *HTTPExporter) ExportOrder(ctx context.Context, cfg *fulfillment.Config, order *checkout.Order) error {
	if cfg == nil || !cfg.Enabled {
		return errors.New("fulfillment is not configured")
	}

	payload := buildExportRequest(cfg, order)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode export payload: %w", err)
	}

	url := strings.TrimRight(cfg.Endpoint, "/") + "/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create export request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.Username != "" {
		req.SetBasicAuth(cfg.Username, cfg.Password)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach fulfillment API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read export response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrExportRejected, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed exportResponse
	if err := json.Unmarshal(respBody, &parsed); err == nil && !parsed.Accepted && parsed.Message != "" {
		return fmt.Errorf("%w: %s", ErrExportRejected, parsed.Message)
	}

	e.logger.Info("Order exported to fulfillment",
		zap.String("order_code", order.Code),
		zap.Int("lines", len(order.Lines)),
	)
	return nil
}

func buildExportRequest(cfg *fulfillment.Config, order *checkout.Order) exportRequest {
	req := exportRequest{
		OwnerID:       cfg.OwnerID,
		OrderCode:     order.Code,
		CustomerEmail: order.CustomerEmail,
		ShipTo: exportShipTo{
			FullName:    order.ShippingAddress.FullName,
			Street1:     order.ShippingAddress.StreetLine1,
			Street2:     order.ShippingAddress.StreetLine2,
			City:        order.ShippingAddress.City,
			Province:    order.ShippingAddress.Province,
			PostalCode:  order.ShippingAddress.PostalCode,
			CountryCode: order.ShippingAddress.CountryCode,
			Phone:       order.ShippingAddress.Phone,
		},
		ShippingTotal: order.EffectiveShippingTotal().StringFixed(2),
		OrderTotal:    order.Total.StringFixed(2),
	}
	for _, line := range order.Lines {
		req.Lines = append(req.Lines, exportLine{
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(2),
		})
	}
	return req
}

var _ Exporter = (*HTTPExporter)(nil)
