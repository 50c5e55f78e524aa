package gateway

import "time"

// sezzleAuthRequest is the body for POST /authentication
type sezzleAuthRequest struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// sezzleAuthResponse carries the bearer token for subsequent calls
type sezzleAuthResponse struct {
	Token          string    `json:"token"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// sezzlePrice is an amount expressed in minor units
type sezzlePrice struct {
	AmountInCents int64  `json:"amount_in_cents"`
	Currency      string `json:"currency"`
}

// sezzleURL wraps a link with an HTTP method hint
type sezzleURL struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

// sezzleSessionRequest is the body for POST /session
type sezzleSessionRequest struct {
	CancelURL   sezzleURL          `json:"cancel_url"`
	CompleteURL sezzleURL          `json:"complete_url"`
	Order       sezzleSessionOrder `json:"order"`
}

type sezzleSessionOrder struct {
	Intent      string      `json:"intent"`
	ReferenceID string      `json:"reference_id"`
	Description string      `json:"description,omitempty"`
	OrderAmount sezzlePrice `json:"order_amount"`
}

// sezzleSessionResponse is the answer to POST /session
type sezzleSessionResponse struct {
	UUID  string `json:"uuid"`
	Order struct {
		UUID        string `json:"uuid"`
		CheckoutURL string `json:"checkout_url"`
	} `json:"order"`
}

// sezzleOrderResponse is the answer to GET /order/{uuid}
type sezzleOrderResponse struct {
	UUID           string      `json:"uuid"`
	ReferenceID    string      `json:"reference_id"`
	OrderAmount    sezzlePrice `json:"order_amount"`
	CapturedAmount sezzlePrice `json:"captured_amount"`
	Authorization  struct {
		ApprovedAmount sezzlePrice `json:"approved_amount"`
	} `json:"authorization"`
}

// sezzleRefundResponse is the answer to POST /order/{uuid}/refund
type sezzleRefundResponse struct {
	UUID          string      `json:"uuid"`
	AmountInCents sezzlePrice `json:"amount"`
}

// sezzleErrorResponse is the error envelope Sezzle returns on 4xx
type sezzleErrorResponse []struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Location string `json:"location"`
}
