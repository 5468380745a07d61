package factory

import (
	"fmt"

	"github.com/oselz/ai-gateway/internal/core/domain"
	"github.com/oselz/ai-gateway/internal/core/ports"
	"github.com/oselz/ai-gateway/internal/registry"
)

type ProviderFactory struct{}

func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

func (f *ProviderFactory) CreateProvider(cfg domain.ProviderConfig) (ports.ChatProvider, error) {
	// Look up the factory function in the registry
	factoryFunc, err := registry.Get(cfg.Type)
	if err != nil {
		return nil, fmt.Errorf("factory lookup failed for type %s: %w", cfg.Type, err)
	}

	// Create the provider instance
	return factoryFunc(cfg)
}
