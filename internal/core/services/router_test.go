package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oselz/ai-gateway/internal/core/domain"
	"github.com/oselz/ai-gateway/internal/core/ports"
	"github.com/oselz/ai-gateway/pkg/schema"
)

// stubProvider implements ports.ChatProvider for testing.
type stubProvider struct {
	id        string
	chatErr   error
	chatCalls int
}

func (s *stubProvider) Name() string { return s.id }
func (s *stubProvider) Type() string { return s.id }

func (s *stubProvider) Chat(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error) {
	s.chatCalls++
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return &schema.ChatResponse{ID: "resp-" + s.id, Model: req.Model}, nil
}

func (s *stubProvider) Stream(ctx context.Context, req *schema.ChatRequest) (<-chan ports.StreamResult, error) {
	s.chatCalls++
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	ch := make(chan ports.StreamResult, 1)
	ch <- ports.StreamResult{Response: &schema.ChatResponse{ID: "resp-" + s.id}}
	close(ch)
	return ch, nil
}

func newTestRouter(t *testing.T, opts domain.RouterOptions, providers ...*stubProvider) *Router {
	t.Helper()
	r := NewRouter(opts, zap.NewNop())
	for _, p := range providers {
		require.NoError(t, r.RegisterProvider(p))
	}
	return r
}

func textRequest(text string) *schema.ChatRequest {
	return &schema.ChatRequest{
		Messages: []schema.ChatMessage{
			{Role: "user", Content: schema.Content{Text: text}},
		},
	}
}

func TestSelectProvider_NoneConfigured(t *testing.T) {
	r := newTestRouter(t, domain.DefaultRouterOptions())

	_, err := r.SelectProvider(textRequest("hi"))
	require.Error(t, err)
	assert.True(t, domain.IsConfiguration(err))
}

func TestChat_NoneConfigured_NeverInvokes(t *testing.T) {
	p := &stubProvider{id: "openai"}
	r := newTestRouter(t, domain.DefaultRouterOptions())

	_, err := r.Chat(context.Background(), textRequest("hi"))
	require.Error(t, err)
	assert.True(t, domain.IsConfiguration(err))
	assert.Zero(t, p.chatCalls)
}

func TestRegisterProvider_UnknownID(t *testing.T) {
	r := NewRouter(domain.DefaultRouterOptions(), zap.NewNop())
	err := r.RegisterProvider(&stubProvider{id: "skynet"})
	assert.Error(t, err)
}

func TestAvailable_DeclarationOrder(t *testing.T) {
	// Register out of order; Available must come back in catalog order.
	r := newTestRouter(t, domain.DefaultRouterOptions(),
		&stubProvider{id: "openai"},
		&stubProvider{id: "ollama"},
		&stubProvider{id: "anthropic"},
	)

	var ids []string
	for _, d := range r.Available() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"anthropic", "ollama", "openai"}, ids)
}

func TestSelectProvider_ExplicitDefaultWins(t *testing.T) {
	opts := domain.RouterOptions{
		DefaultProvider: "openai",
		// Flags that would otherwise pick anthropic (cheaper, least used).
		CostOptimization: true,
		LoadBalancing:    true,
	}
	r := newTestRouter(t, opts,
		&stubProvider{id: "anthropic"},
		&stubProvider{id: "openai"},
	)

	for i := 0; i < 3; i++ {
		id, err := r.SelectProvider(textRequest("hi"))
		require.NoError(t, err)
		assert.Equal(t, "openai", id)
	}
}

func TestSelectProvider_UnavailableDefaultFallsThrough(t *testing.T) {
	opts := domain.RouterOptions{DefaultProvider: "openai", CostOptimization: true}
	r := newTestRouter(t, opts, &stubProvider{id: "anthropic"})

	id, err := r.SelectProvider(textRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "anthropic", id)
}

func TestSelectProvider_UnknownDefaultFallsThrough(t *testing.T) {
	opts := domain.RouterOptions{DefaultProvider: "skynet"}
	r := newTestRouter(t, opts, &stubProvider{id: "openai"})

	id, err := r.SelectProvider(textRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "openai", id)
}

func TestSelectProvider_CostOptimization(t *testing.T) {
	// anthropic (0.00002) undercuts openai (0.00003)
	opts := domain.RouterOptions{DefaultProvider: domain.AutoProvider, CostOptimization: true}
	r := newTestRouter(t, opts,
		&stubProvider{id: "openai"},
		&stubProvider{id: "anthropic"},
	)

	id, err := r.SelectProvider(textRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "anthropic", id)
}

func TestSelectProvider_CostOptimization_LocalIsFree(t *testing.T) {
	opts := domain.RouterOptions{DefaultProvider: domain.AutoProvider, CostOptimization: true}
	r := newTestRouter(t, opts,
		&stubProvider{id: "openai"},
		&stubProvider{id: "ollama"},
		&stubProvider{id: "anthropic"},
	)

	id, err := r.SelectProvider(textRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "ollama", id)
}

func TestSelectProvider_LoadBalancing_EvenSpread(t *testing.T) {
	opts := domain.RouterOptions{DefaultProvider: domain.AutoProvider, LoadBalancing: true}
	r := newTestRouter(t, opts,
		&stubProvider{id: "anthropic"},
		&stubProvider{id: "ollama"},
		&stubProvider{id: "openai"},
	)

	const n = 31
	for i := 0; i < n; i++ {
		_, err := r.SelectProvider(textRequest("hi"))
		require.NoError(t, err)
	}

	stats := r.Statistics()
	var lo, hi int64 = int64(n), 0
	var total int64
	for _, s := range stats {
		if s.RequestCount < lo {
			lo = s.RequestCount
		}
		if s.RequestCount > hi {
			hi = s.RequestCount
		}
		total += s.RequestCount
	}
	assert.Equal(t, int64(n), total)
	assert.LessOrEqual(t, hi-lo, int64(1), "least-used balancing must keep counters within 1")
}

func TestSelectProvider_LongContextPrefersAnthropic(t *testing.T) {
	// 12,000 chars exceeds the long-prompt threshold; both qualify for the
	// long-context bonus, and the tie resolves to anthropic by declaration
	// order (its lower cost cancels its slower speed base exactly).
	r := newTestRouter(t, domain.DefaultRouterOptions(),
		&stubProvider{id: "openai"},
		&stubProvider{id: "anthropic"},
	)

	id, err := r.SelectProvider(textRequest(strings.Repeat("a", 12000)))
	require.NoError(t, err)
	assert.Equal(t, "anthropic", id)
}

func TestSelectProvider_VisionDisqualifiesBlindProviders(t *testing.T) {
	r := newTestRouter(t, domain.DefaultRouterOptions(),
		&stubProvider{id: "ollama"},
		&stubProvider{id: "anthropic"},
	)

	// Short text request: the free local provider scores highest.
	id, err := r.SelectProvider(textRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "ollama", id)

	// An image flips it: ollama takes the vision penalty.
	req := &schema.ChatRequest{
		Messages: []schema.ChatMessage{
			{Role: "user", Content: schema.Content{Parts: []schema.ContentPart{
				{Type: "text", Text: "what is this?"},
				{Type: "image_url", ImageURL: &schema.ImageURL{URL: "https://example.com/cat.png"}},
			}}},
		},
	}
	id, err = r.SelectProvider(req)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", id)
}

func TestChat_FallbackDisabled_ErrorPropagates(t *testing.T) {
	boom := errors.New("upstream exploded")
	primary := &stubProvider{id: "anthropic", chatErr: boom}
	secondary := &stubProvider{id: "openai"}

	opts := domain.RouterOptions{DefaultProvider: "anthropic", Fallback: false}
	r := newTestRouter(t, opts, primary, secondary)

	_, err := r.Chat(context.Background(), textRequest("hi"))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, secondary.chatCalls)
}

func TestChat_FallbackRecovers(t *testing.T) {
	primary := &stubProvider{id: "anthropic", chatErr: errors.New("anthropic down")}
	secondary := &stubProvider{id: "openai"}

	opts := domain.RouterOptions{DefaultProvider: "anthropic", Fallback: true}
	r := newTestRouter(t, opts, primary, secondary)

	resp, err := r.Chat(context.Background(), textRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "resp-openai", resp.ID)
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, 1, primary.chatCalls)
	assert.Equal(t, 1, secondary.chatCalls)
}

func TestChat_AllFail_PrimaryErrorWins(t *testing.T) {
	primaryErr := errors.New("primary failure")
	secondaryErr := errors.New("secondary failure")

	primary := &stubProvider{id: "anthropic", chatErr: primaryErr}
	secondary := &stubProvider{id: "openai", chatErr: secondaryErr}

	opts := domain.RouterOptions{DefaultProvider: "anthropic", Fallback: true}
	r := newTestRouter(t, opts, primary, secondary)

	_, err := r.Chat(context.Background(), textRequest("hi"))
	require.Error(t, err)
	assert.ErrorIs(t, err, primaryErr)
	assert.NotErrorIs(t, err, secondaryErr)
}

func TestChat_FallbackIncrementsBothCounters(t *testing.T) {
	primary := &stubProvider{id: "anthropic", chatErr: errors.New("down")}
	secondary := &stubProvider{id: "openai"}

	opts := domain.RouterOptions{DefaultProvider: "anthropic", Fallback: true}
	r := newTestRouter(t, opts, primary, secondary)

	_, err := r.Chat(context.Background(), textRequest("hi"))
	require.NoError(t, err)

	stats := r.Statistics()
	assert.Equal(t, int64(1), stats["anthropic"].RequestCount)
	assert.Equal(t, int64(1), stats["openai"].RequestCount)
}

func TestStreamChat_FallbackRecovers(t *testing.T) {
	primary := &stubProvider{id: "anthropic", chatErr: errors.New("no stream for you")}
	secondary := &stubProvider{id: "openai"}

	opts := domain.RouterOptions{DefaultProvider: "anthropic", Fallback: true}
	r := newTestRouter(t, opts, primary, secondary)

	ch, err := r.StreamChat(context.Background(), textRequest("hi"))
	require.NoError(t, err)

	result := <-ch
	require.NoError(t, result.Err)
	assert.Equal(t, "resp-openai", result.Response.ID)
}

func TestStatistics_ReportsAndResets(t *testing.T) {
	r := newTestRouter(t, domain.RouterOptions{DefaultProvider: "openai", Fallback: true},
		&stubProvider{id: "openai"},
	)

	assert.Empty(t, r.Statistics())

	_, err := r.SelectProvider(textRequest("hi"))
	require.NoError(t, err)

	stats := r.Statistics()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats["openai"].RequestCount)
	assert.Equal(t, "openai", stats["openai"].Descriptor.ID)

	r.ResetStatistics()
	assert.Empty(t, r.Statistics())
}
