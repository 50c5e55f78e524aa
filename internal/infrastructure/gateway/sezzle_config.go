package gateway

import "errors"

const sezzleDefaultBaseURL = "https://gateway.sezzle.com/v2"

// Sezzle configuration errors
var (
	ErrSezzleMissingPublicKey  = errors.New("sezzle: public key is required")
	ErrSezzleMissingPrivateKey = errors.New("sezzle: private key is required")
)

// SezzleConfig holds configuration for the Sezzle pay-in-four gateway
type SezzleConfig struct {
	// PublicKey and PrivateKey authenticate against the v2 API
	PublicKey  string
	PrivateKey string

	// BaseURL is the v2 API root, defaults to the production gateway
	BaseURL string
}

// Validate validates the Sezzle configuration and applies the URL default
func (c *SezzleConfig) Validate() error {
	if c.PublicKey == "" {
		return ErrSezzleMissingPublicKey
	}
	if c.PrivateKey == "" {
		return ErrSezzleMissingPrivateKey
	}
	if c.BaseURL == "" {
		c.BaseURL = sezzleDefaultBaseURL
	}
	return nil
}
