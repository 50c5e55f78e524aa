package gateway

import "errors"

const (
	nmiDefaultEndpoint      = "https://secure.networkmerchants.com/api/transact.php"
	nmiDefaultQueryEndpoint = "https://secure.networkmerchants.com/api/query.php"
)

// NMI configuration errors
var (
	ErrNMIMissingSecurityKey = errors.New("nmi: security key is required")
)

// NMIConfig holds configuration for the NMI card gateway
type NMIConfig struct {
	// SecurityKey authenticates API requests to transact.php and query.php
	SecurityKey string

	// Endpoint is the transaction API URL, defaults to the production gateway
	Endpoint string

	// QueryEndpoint is the transaction lookup API URL
	QueryEndpoint string
}

// Validate validates the NMI configuration and applies endpoint defaults
func (c *NMIConfig) Validate() error {
	if c.SecurityKey == "" {
		return ErrNMIMissingSecurityKey
	}
	if c.Endpoint == "" {
		c.Endpoint = nmiDefaultEndpoint
	}
	if c.QueryEndpoint == "" {
		c.QueryEndpoint = nmiDefaultQueryEndpoint
	}
	return nil
}
