package gateway

import (
	"fmt"

	"github.com/damneddesigns/storefront/internal/domain/payment"
)

// Registry holds the configured gateway adapters keyed by type
type Registry struct {
	gateways map[payment.GatewayType]payment.Gateway
}

// NewRegistry creates an empty gateway registry
func NewRegistry() *Registry {
	return &Registry{
		gateways: make(map[payment.GatewayType]payment.Gateway),
	}
}

// Register adds a gateway adapter to the registry
func (r *Registry) Register(gw payment.Gateway) {
	r.gateways[gw.GatewayType()] = gw
}

// Get returns the adapter for the given type
func (r *Registry) Get(gatewayType payment.GatewayType) (payment.Gateway, error) {
	gw, ok := r.gateways[gatewayType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", payment.ErrGatewayNotConfigured, gatewayType)
	}
	return gw, nil
}

// Types lists the registered gateway types
func (r *Registry) Types() []payment.GatewayType {
	types := make([]payment.GatewayType, 0, len(r.gateways))
	for t := range r.gateways {
		types = append(types, t)
	}
	return types
}
