// Package services holds the provider router: the policy that decides which
// backend serves a chat request, and the sequential failover that keeps a
// request alive when the chosen backend errors out.
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/oselz/ai-gateway/internal/catalog"
	"github.com/oselz/ai-gateway/internal/core/domain"
	"github.com/oselz/ai-gateway/internal/core/ports"
	"github.com/oselz/ai-gateway/pkg/schema"
)

// ProviderStats is one entry of the router's usage bookkeeping.
type ProviderStats struct {
	RequestCount int64              `json:"request_count"`
	Descriptor   catalog.Descriptor `json:"descriptor"`
}

// Router selects a provider per request and retries alternates on failure.
// Construct one at process start and share it across request handlers; the
// usage counters are process-lifetime, in-memory state.
type Router struct {
	opts   domain.RouterOptions
	logger *zap.Logger

	mu        sync.Mutex
	providers map[string]ports.ChatProvider
	order     []string // catalog declaration order, available providers only
	usage     map[string]int64
}

func NewRouter(opts domain.RouterOptions, logger *zap.Logger) *Router {
	if opts.DefaultProvider == "" {
		opts.DefaultProvider = domain.AutoProvider
	}
	return &Router{
		opts:      opts,
		logger:    logger,
		providers: make(map[string]ports.ChatProvider),
		usage:     make(map[string]int64),
	}
}

// RegisterProvider makes p selectable. Registration order does not matter;
// the router always iterates providers in catalog declaration order.
func (r *Router) RegisterProvider(p ports.ChatProvider) error {
	if catalog.Index(p.Name()) < 0 {
		return fmt.Errorf("provider %q is not in the catalog", p.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.Name()]; !exists {
		r.order = append(r.order, p.Name())
		sort.Slice(r.order, func(i, j int) bool {
			return catalog.Index(r.order[i]) < catalog.Index(r.order[j])
		})
	}
	r.providers[p.Name()] = p

	return nil
}

// Available returns descriptors for every provider whose credential was
// configured, in declaration order. Providers without credentials are
// omitted entirely; absence from this list is the unavailability signal.
func (r *Router) Available() []catalog.Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.availableLocked()
}

func (r *Router) availableLocked() []catalog.Descriptor {
	out := make([]catalog.Descriptor, 0, len(r.order))
	for _, id := range r.order {
		if d, ok := catalog.Lookup(id); ok {
			out = append(out, d)
		}
	}
	return out
}

// SelectProvider picks one available provider for req and increments its
// usage counter. It fails with a configuration error when no provider is
// available at all.
func (r *Router) SelectProvider(req *schema.ChatRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.selectLocked(req)
	if err != nil {
		return "", err
	}

	r.usage[id]++
	return id, nil
}

func (r *Router) selectLocked(req *schema.ChatRequest) (string, error) {
	candidates := r.availableLocked()
	if len(candidates) == 0 {
		return "", domain.ConfigurationError("no AI provider is configured; set at least one provider credential")
	}

	// Explicit configuration always wins over automatic heuristics. An
	// unavailable or unknown default falls through to automatic selection.
	if r.opts.DefaultProvider != domain.AutoProvider {
		if _, ok := r.providers[r.opts.DefaultProvider]; ok {
			return r.opts.DefaultProvider, nil
		}
	}

	switch {
	case r.opts.CostOptimization:
		return cheapest(candidates), nil
	case r.opts.LoadBalancing:
		return r.leastUsedLocked(candidates), nil
	default:
		return bestByScore(candidates, req), nil
	}
}

// cheapest returns the lowest cost-per-token candidate, earliest declared on ties.
func cheapest(candidates []catalog.Descriptor) string {
	best := candidates[0]
	for _, d := range candidates[1:] {
		if d.CostPerToken < best.CostPerToken {
			best = d
		}
	}
	return best.ID
}

// leastUsedLocked is a least-requests-so-far balancer. It does not account
// for in-flight requests, only completed selections.
func (r *Router) leastUsedLocked(candidates []catalog.Descriptor) string {
	best := candidates[0].ID
	for _, d := range candidates[1:] {
		if r.usage[d.ID] < r.usage[best] {
			best = d.ID
		}
	}
	return best
}

// Chat routes req to the selected provider. When the call fails and
// fallback is enabled, the remaining available providers are attempted in
// order; the first success wins. When every provider fails, the error of
// the primarily-selected provider is the one surfaced to the caller.
func (r *Router) Chat(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error) {
	primary, err := r.SelectProvider(req)
	if err != nil {
		return nil, err
	}

	resp, primaryErr := r.invokeChat(ctx, primary, req)
	if primaryErr == nil {
		return resp, nil
	}

	if !r.opts.Fallback {
		return nil, primaryErr
	}

	r.logger.Warn("provider call failed, attempting fallback",
		zap.String("provider", primary),
		zap.Error(primaryErr),
	)

	for _, d := range r.Available() {
		if d.ID == primary {
			continue
		}

		r.recordUse(d.ID)

		resp, err := r.invokeChat(ctx, d.ID, req)
		if err == nil {
			return resp, nil
		}

		r.logger.Warn("fallback provider failed",
			zap.String("provider", d.ID),
			zap.Error(err),
		)
	}

	return nil, primaryErr
}

// StreamChat is Chat for SSE consumers. Failover covers stream
// establishment only; once a stream is open, mid-stream errors are
// delivered on the channel and not retried.
func (r *Router) StreamChat(ctx context.Context, req *schema.ChatRequest) (<-chan ports.StreamResult, error) {
	primary, err := r.SelectProvider(req)
	if err != nil {
		return nil, err
	}

	ch, primaryErr := r.invokeStream(ctx, primary, req)
	if primaryErr == nil {
		return ch, nil
	}

	if !r.opts.Fallback {
		return nil, primaryErr
	}

	r.logger.Warn("provider stream failed, attempting fallback",
		zap.String("provider", primary),
		zap.Error(primaryErr),
	)

	for _, d := range r.Available() {
		if d.ID == primary {
			continue
		}

		r.recordUse(d.ID)

		ch, err := r.invokeStream(ctx, d.ID, req)
		if err == nil {
			return ch, nil
		}

		r.logger.Warn("fallback provider stream failed",
			zap.String("provider", d.ID),
			zap.Error(err),
		)
	}

	return nil, primaryErr
}

func (r *Router) invokeChat(ctx context.Context, id string, req *schema.ChatRequest) (*schema.ChatResponse, error) {
	p := r.provider(id)
	if p == nil {
		return nil, domain.ConfigurationError(fmt.Sprintf("provider %q is not available", id))
	}

	// Provider errors are forwarded unchanged so callers keep the original
	// diagnostic detail; recovery is the fallback loop's job.
	resp, err := p.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	resp.Provider = id
	return resp, nil
}

func (r *Router) invokeStream(ctx context.Context, id string, req *schema.ChatRequest) (<-chan ports.StreamResult, error) {
	p := r.provider(id)
	if p == nil {
		return nil, domain.ConfigurationError(fmt.Sprintf("provider %q is not available", id))
	}
	return p.Stream(ctx, req)
}

func (r *Router) provider(id string) ports.ChatProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.providers[id]
}

func (r *Router) recordUse(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage[id]++
}

// Statistics reports, per provider that has ever been selected, its
// cumulative request count and static descriptor.
func (r *Router) Statistics() map[string]ProviderStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]ProviderStats, len(r.usage))
	for id, n := range r.usage {
		d, _ := catalog.Lookup(id)
		out[id] = ProviderStats{RequestCount: n, Descriptor: d}
	}
	return out
}

// ResetStatistics clears all usage counters.
func (r *Router) ResetStatistics() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage = make(map[string]int64)
}
