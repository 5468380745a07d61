// Package catalog holds the static descriptors for every chat provider the
// gateway knows how to talk to. Descriptors are configuration, not state:
// whether a provider is actually usable at runtime depends solely on its
// credential being present in the process environment.
package catalog

// Speed is a coarse latency class used by the selection heuristic.
type Speed string

const (
	Fast   Speed = "fast"
	Medium Speed = "medium"
	Slow   Speed = "slow"
)

// Capabilities describes what a provider's chat endpoint can do.
type Capabilities struct {
	Streaming       bool `json:"streaming"`
	FunctionCalling bool `json:"function_calling"`
	Vision          bool `json:"vision"`
	MaxContext      int  `json:"max_context"`
}

// Descriptor is the static profile of one chat provider.
type Descriptor struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Speed        Speed        `json:"speed"`
	CostPerToken float64      `json:"cost_per_token"`
	Capabilities Capabilities `json:"capabilities"`
}

// chatProviders is the declaration order callers observe everywhere:
// available-provider listings, fallback iteration and score tie-breaks.
var chatProviders = []Descriptor{
	{
		ID:           "anthropic",
		Name:         "Anthropic",
		Speed:        Medium,
		CostPerToken: 0.00002,
		Capabilities: Capabilities{
			Streaming:  true,
			Vision:     true,
			MaxContext: 200000,
		},
	},
	{
		ID:           "ollama",
		Name:         "Ollama (local)",
		Speed:        Slow,
		CostPerToken: 0,
		Capabilities: Capabilities{
			Streaming:  true,
			MaxContext: 8192,
		},
	},
	{
		ID:           "openai",
		Name:         "OpenAI",
		Speed:        Fast,
		CostPerToken: 0.00003,
		Capabilities: Capabilities{
			Streaming:       true,
			FunctionCalling: true,
			Vision:          true,
			MaxContext:      128000,
		},
	},
}

// ChatProviders returns all known chat provider descriptors in declaration
// order. The returned slice is a copy.
func ChatProviders() []Descriptor {
	out := make([]Descriptor, len(chatProviders))
	copy(out, chatProviders)
	return out
}

// Lookup returns the descriptor for id.
func Lookup(id string) (Descriptor, bool) {
	for _, d := range chatProviders {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Index returns the declaration position of id, or -1 when unknown.
// Selection uses it as the stable tie-break key.
func Index(id string) int {
	for i, d := range chatProviders {
		if d.ID == id {
			return i
		}
	}
	return -1
}
