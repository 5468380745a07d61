package domain

// ProviderConfig represents the runtime configuration for a single AI provider.
// A provider is only constructed (and therefore available) when its
// credential is present; see config.LoadConfig.
type ProviderConfig struct {
	ID      string            `json:"id" yaml:"id" mapstructure:"id"`
	Type    string            `json:"type" yaml:"type" mapstructure:"type"`
	Name    string            `json:"name" yaml:"name" mapstructure:"name"`
	APIKey  string            `json:"api_key" yaml:"api_key" mapstructure:"api_key"`
	BaseURL string            `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Config  map[string]string `json:"config" yaml:"config" mapstructure:"config"`
}

// AutoProvider is the selection mode that lets the router choose.
const AutoProvider = "auto"

// RouterOptions controls provider selection. Immutable per router instance.
type RouterOptions struct {
	// DefaultProvider is either a provider ID or "auto".
	DefaultProvider string `json:"default_provider" yaml:"default_provider" mapstructure:"default_provider"`

	// Fallback enables sequential failover to alternate providers when the
	// selected provider's call fails.
	Fallback bool `json:"fallback" yaml:"fallback" mapstructure:"fallback"`

	// CostOptimization selects the cheapest available provider.
	CostOptimization bool `json:"cost_optimization" yaml:"cost_optimization" mapstructure:"cost_optimization"`

	// LoadBalancing selects the provider with the fewest requests so far.
	LoadBalancing bool `json:"load_balancing" yaml:"load_balancing" mapstructure:"load_balancing"`
}

// DefaultRouterOptions mirrors the documented defaults.
func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		DefaultProvider: AutoProvider,
		Fallback:        true,
	}
}
