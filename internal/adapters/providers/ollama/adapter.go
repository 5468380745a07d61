package ollama

import (
	"github.com/oselz/ai-gateway/internal/adapters/providers/openai"
	"github.com/oselz/ai-gateway/internal/core/domain"
	"github.com/oselz/ai-gateway/internal/core/ports"
	"github.com/oselz/ai-gateway/internal/registry"
)

func init() {
	registry.Register("ollama", NewAdapter)
}

// NewAdapter creates an Ollama adapter. Ollama exposes an OpenAI-compatible
// API at /v1, so the OpenAI adapter does all the work.
func NewAdapter(config domain.ProviderConfig) (ports.ChatProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434/v1"
	}
	return openai.NewAdapter(config)
}
