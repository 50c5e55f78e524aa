package gateway

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/payment"
)

// NMIAdapter implements the payment.Gateway interface for NMI card payments.
// NMI speaks form-encoded requests against transact.php and answers with a
// query-string body whose "response" field is 1 (approved), 2 (declined) or
// 3 (error).
type NMIAdapter struct {
	config     *NMIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewNMIAdapter creates a new NMI adapter
func NewNMIAdapter(config *NMIConfig, logger *zap.Logger) (*NMIAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NMIAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// GatewayType returns the gateway type
func (a *NMIAdapter) GatewayType() payment.GatewayType {
	return payment.GatewayTypeNMI
}

// CreatePayment runs a sale transaction against the tokenized card
func (a *NMIAdapter) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.CardToken == "" {
		return nil, payment.ErrInvalidMethod
	}

	form := url.Values{}
	form.Set("security_key", a.config.SecurityKey)
	form.Set("type", nmiTransactionTypeSale)
	form.Set("amount", req.Amount.StringFixed(2))
	form.Set("payment_token", req.CardToken)
	form.Set("orderid", req.OrderCode)
	if req.Currency != "" {
		form.Set("currency", req.Currency)
	}
	if req.CustomerEmail != "" {
		form.Set("email", req.CustomerEmail)
	}
	for key, value := range req.Metadata {
		// merchant defined fields carry order metadata through to reports
		form.Set("merchant_defined_field_"+key, value)
	}

	body, err := a.postForm(ctx, a.config.Endpoint, form)
	if err != nil {
		return nil, err
	}

	parsed, err := parseNMITransactResponse(body)
	if err != nil {
		return nil, err
	}

	response := &payment.CreatePaymentResponse{
		GatewayType:      payment.GatewayTypeNMI,
		TransactionID:    parsed.TransactionID,
		AuthCode:         parsed.AuthCode,
		AmountAuthorized: req.Amount,
		RawResponse:      string(body),
	}

	switch parsed.Response {
	case nmiResponseApproved:
		response.Status = payment.GatewayStatusSettled
		a.logger.Info("NMI sale approved",
			zap.String("order_code", req.OrderCode),
			zap.String("transaction_id", parsed.TransactionID),
			zap.String("auth_code", parsed.AuthCode))
	case nmiResponseDeclined:
		response.Status = payment.GatewayStatusDeclined
		response.DeclineReason = parsed.ResponseText
		a.logger.Warn("NMI sale declined",
			zap.String("order_code", req.OrderCode),
			zap.String("response_code", parsed.ResponseCode),
			zap.String("reason", parsed.ResponseText))
	case nmiResponseError:
		response.Status = payment.GatewayStatusError
		response.DeclineReason = parsed.ResponseText
		a.logger.Error("NMI sale error",
			zap.String("order_code", req.OrderCode),
			zap.String("response_code", parsed.ResponseCode),
			zap.String("reason", parsed.ResponseText))
	default:
		return nil, fmt.Errorf("%w: unexpected response code %q",
			payment.ErrGatewayInvalidResponse, parsed.Response)
	}

	return response, nil
}

// QueryPayment looks up a transaction's condition via query.php
func (a *NMIAdapter) QueryPayment(ctx context.Context, req *payment.QueryPaymentRequest) (*payment.QueryPaymentResponse, error) {
	if req.TransactionID == "" && req.OrderCode == "" {
		return nil, payment.ErrNotFound
	}

	form := url.Values{}
	form.Set("security_key", a.config.SecurityKey)
	if req.TransactionID != "" {
		form.Set("transaction_id", req.TransactionID)
	} else {
		form.Set("order_id", req.OrderCode)
	}

	body, err := a.postForm(ctx, a.config.QueryEndpoint, form)
	if err != nil {
		return nil, err
	}

	var parsed nmiQueryResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}
	if len(parsed.Transactions) == 0 {
		return nil, payment.ErrNotFound
	}

	tx := parsed.Transactions[0]
	response := &payment.QueryPaymentResponse{
		GatewayType:   payment.GatewayTypeNMI,
		Status:        mapNMICondition(tx.Condition),
		TransactionID: tx.TransactionID,
		RawResponse:   string(body),
	}

	for _, action := range tx.Actions {
		if action.ActionType != nmiTransactionTypeSale {
			continue
		}
		if amount, err := decimal.NewFromString(action.Amount); err == nil {
			response.Amount = amount
		}
		break
	}

	return response, nil
}

// Refund issues a refund against a settled transaction
func (a *NMIAdapter) Refund(ctx context.Context, req *payment.RefundRequest) (*payment.RefundResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("security_key", a.config.SecurityKey)
	form.Set("type", nmiTransactionTypeRefund)
	form.Set("transactionid", req.TransactionID)
	form.Set("amount", req.Amount.StringFixed(2))

	body, err := a.postForm(ctx, a.config.Endpoint, form)
	if err != nil {
		return nil, err
	}

	parsed, err := parseNMITransactResponse(body)
	if err != nil {
		return nil, err
	}

	if parsed.Response != nmiResponseApproved {
		a.logger.Warn("NMI refund rejected",
			zap.String("transaction_id", req.TransactionID),
			zap.String("reason", parsed.ResponseText))
		return nil, fmt.Errorf("%w: %s", payment.ErrGatewayRequestFailed, parsed.ResponseText)
	}

	a.logger.Info("NMI refund approved",
		zap.String("transaction_id", req.TransactionID),
		zap.String("refund_id", parsed.TransactionID))

	return &payment.RefundResponse{
		GatewayType: payment.GatewayTypeNMI,
		Status:      payment.GatewayStatusRefunded,
		RefundID:    parsed.TransactionID,
		Amount:      req.Amount,
		RawResponse: string(body),
	}, nil
}

// postForm sends a form-encoded POST and returns the raw response body
func (a *NMIAdapter) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("nmi: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nmi: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
	}

	return body, nil
}

// parseNMITransactResponse parses the query-string body from transact.php
func parseNMITransactResponse(body []byte) (*nmiTransactResponse, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}
	if values.Get("response") == "" {
		return nil, fmt.Errorf("%w: missing response field", payment.ErrGatewayInvalidResponse)
	}

	return &nmiTransactResponse{
		Response:      values.Get("response"),
		ResponseText:  values.Get("responsetext"),
		AuthCode:      values.Get("authcode"),
		TransactionID: values.Get("transactionid"),
		OrderID:       values.Get("orderid"),
		ResponseCode:  values.Get("response_code"),
		AVSResponse:   values.Get("avsresponse"),
		CVVResponse:   values.Get("cvvresponse"),
	}, nil
}

// mapNMICondition maps a query API condition to our gateway status
func mapNMICondition(condition string) payment.GatewayStatus {
	switch condition {
	case nmiConditionComplete, nmiConditionPendingSettlement:
		return payment.GatewayStatusSettled
	case nmiConditionFailed, nmiConditionCanceled, nmiConditionAbandoned:
		return payment.GatewayStatusDeclined
	case nmiConditionPending:
		return payment.GatewayStatusPending
	default:
		return payment.GatewayStatusPending
	}
}

// Ensure NMIAdapter implements the Gateway interface
var _ payment.Gateway = (*NMIAdapter)(nil)
