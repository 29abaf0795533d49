package payment

import (
	"context"
	"fmt"

	"trip-booking/internal/services/payment/paylao"
)

// Factory creates gateway instances by provider type.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateGateway creates a gateway for the given provider and configuration.
func (f *Factory) CreateGateway(ctx context.Context, provider Provider, config any) (Gateway, error) {
	switch provider {
	case ProviderPayLao:
		cfg, ok := config.(*paylao.Config)
		if !ok {
			return nil, fmt.Errorf("invalid PayLao config type, expected *paylao.Config")
		}
		return newPayLaoAdapter(ctx, cfg)

	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", provider)
	}
}

// GetSupportedProviders returns the providers this factory can create.
func (f *Factory) GetSupportedProviders() []Provider {
	return []Provider{ProviderPayLao}
}
