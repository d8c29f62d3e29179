package analyzer

import (
	"fmt"

	"claimrisk/internal/config"
	"claimrisk/internal/port"
)

// ProviderFactory creates a ModelClient from the model config.
type ProviderFactory func(cfg *config.ModelConfig) (port.ModelClient, error)

// registry of model providers, populated by init() in each provider package.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a model provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewClient creates a ModelClient for cfg.Provider using the registered factory.
func NewClient(cfg *config.ModelConfig) (port.ModelClient, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
