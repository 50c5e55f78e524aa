package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/payment"
)

// SezzleAdapter implements the payment.Gateway interface for Sezzle
// pay-in-four checkouts. Sezzle is redirect based: CreatePayment opens a
// checkout session and the customer completes payment on Sezzle's page.
type SezzleAdapter struct {
	config     *SezzleConfig
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	bearerToken string
	tokenExpiry time.Time
}

// NewSezzleAdapter creates a new Sezzle adapter
func NewSezzleAdapter(config *SezzleConfig, logger *zap.Logger) (*SezzleAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SezzleAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// GatewayType returns the gateway type
func (a *SezzleAdapter) GatewayType() payment.GatewayType {
	return payment.GatewayTypeSezzle
}

// CreatePayment opens a checkout session and returns its redirect URL
func (a *SezzleAdapter) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ReturnURL == "" {
		return nil, payment.ErrInvalidMethod
	}

	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = req.ReturnURL
	}

	sessionReq := sezzleSessionRequest{
		CompleteURL: sezzleURL{Href: req.ReturnURL},
		CancelURL:   sezzleURL{Href: cancelURL},
		Order: sezzleSessionOrder{
			Intent:      "CAPTURE",
			ReferenceID: req.OrderCode,
			OrderAmount: sezzlePrice{
				AmountInCents: amountToCents(req.Amount),
				Currency:      req.Currency,
			},
		},
	}

	var sessionResp sezzleSessionResponse
	if err := a.doJSON(ctx, http.MethodPost, "/session", sessionReq, &sessionResp); err != nil {
		return nil, err
	}
	if sessionResp.Order.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: session has no checkout URL", payment.ErrGatewayInvalidResponse)
	}

	a.logger.Info("Sezzle checkout session created",
		zap.String("order_code", req.OrderCode),
		zap.String("order_uuid", sessionResp.Order.UUID))

	return &payment.CreatePaymentResponse{
		GatewayType:      payment.GatewayTypeSezzle,
		Status:           payment.GatewayStatusPending,
		TransactionID:    sessionResp.Order.UUID,
		RedirectURL:      sessionResp.Order.CheckoutURL,
		AmountAuthorized: req.Amount,
	}, nil
}

// QueryPayment fetches the order's capture state from Sezzle
func (a *SezzleAdapter) QueryPayment(ctx context.Context, req *payment.QueryPaymentRequest) (*payment.QueryPaymentResponse, error) {
	if req.TransactionID == "" {
		return nil, payment.ErrNotFound
	}

	var orderResp sezzleOrderResponse
	if err := a.doJSON(ctx, http.MethodGet, "/order/"+req.TransactionID, nil, &orderResp); err != nil {
		return nil, err
	}

	status := payment.GatewayStatusPending
	if orderResp.CapturedAmount.AmountInCents > 0 {
		status = payment.GatewayStatusSettled
	}

	return &payment.QueryPaymentResponse{
		GatewayType:   payment.GatewayTypeSezzle,
		Status:        status,
		TransactionID: orderResp.UUID,
		Amount:        centsToAmount(orderResp.OrderAmount.AmountInCents),
	}, nil
}

// Refund refunds part or all of a captured order
func (a *SezzleAdapter) Refund(ctx context.Context, req *payment.RefundRequest) (*payment.RefundResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	refundReq := sezzlePrice{
		AmountInCents: amountToCents(req.Amount),
		Currency:      currency,
	}

	var refundResp sezzleRefundResponse
	path := "/order/" + req.TransactionID + "/refund"
	if err := a.doJSON(ctx, http.MethodPost, path, refundReq, &refundResp); err != nil {
		return nil, err
	}

	a.logger.Info("Sezzle refund created",
		zap.String("order_uuid", req.TransactionID),
		zap.String("refund_uuid", refundResp.UUID))

	return &payment.RefundResponse{
		GatewayType: payment.GatewayTypeSezzle,
		Status:      payment.GatewayStatusRefunded,
		RefundID:    refundResp.UUID,
		Amount:      req.Amount,
	}, nil
}

// authenticate fetches a bearer token, reusing the cached one until it expires
func (a *SezzleAdapter) authenticate(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.bearerToken != "" && time.Now().Before(a.tokenExpiry.Add(-time.Minute)) {
		return a.bearerToken, nil
	}

	authReq := sezzleAuthRequest{
		PublicKey:  a.config.PublicKey,
		PrivateKey: a.config.PrivateKey,
	}
	body, err := json.Marshal(authReq)
	if err != nil {
		return "", fmt.Errorf("sezzle: failed to marshal auth request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.BaseURL+"/authentication", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("sezzle: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: authentication returned HTTP %d",
			payment.ErrGatewayRequestFailed, resp.StatusCode)
	}

	var authResp sezzleAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}
	if authResp.Token == "" {
		return "", fmt.Errorf("%w: empty token", payment.ErrGatewayInvalidResponse)
	}

	a.bearerToken = authResp.Token
	a.tokenExpiry = authResp.ExpirationDate
	return a.bearerToken, nil
}

// doJSON performs an authenticated JSON request against the v2 API
func (a *SezzleAdapter) doJSON(ctx context.Context, method, path string, in, out any) error {
	token, err := a.authenticate(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("sezzle: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("sezzle: failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sezzle: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return payment.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var errResp sezzleErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && len(errResp) > 0 {
			return fmt.Errorf("%w: %s", payment.ErrGatewayRequestFailed, errResp[0].Message)
		}
		return fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
		}
	}
	return nil
}

// amountToCents converts a decimal dollar amount to integer cents
func amountToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// centsToAmount converts integer cents back to a decimal dollar amount
func centsToAmount(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

// Ensure SezzleAdapter implements the Gateway interface
var _ payment.Gateway = (*SezzleAdapter)(nil)
