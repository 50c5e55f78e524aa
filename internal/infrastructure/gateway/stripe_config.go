package gateway

import (
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v81"
)

// Stripe configuration errors
var (
	ErrStripeMissingSecretKey = errors.New("stripe: secret key is required")
	ErrStripeInvalidSecretKey = errors.New("stripe: secret key must start with sk_")
)

// StripeConfig holds configuration for the Stripe card gateway
type StripeConfig struct {
	// SecretKey is the API key (sk_test_xxx or sk_live_xxx)
	SecretKey string

	// WebhookSecret verifies webhook event signatures
	WebhookSecret string
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrStripeMissingSecretKey
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") {
		return ErrStripeInvalidSecretKey
	}
	return nil
}

// InitStripeClient installs the API key on the global Stripe client
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
}
