package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oselz/ai-gateway/internal/analytics"
	"github.com/oselz/ai-gateway/internal/catalog"
	"github.com/oselz/ai-gateway/internal/config"
	"github.com/oselz/ai-gateway/internal/core/domain"
	"github.com/oselz/ai-gateway/internal/core/ports"
	"github.com/oselz/ai-gateway/internal/core/services"
	"github.com/oselz/ai-gateway/internal/server"
	"github.com/oselz/ai-gateway/internal/server/validator"
	"github.com/oselz/ai-gateway/pkg/schema"
)

type stubGateway struct {
	chatErr  error
	resets   int
	statsMap map[string]services.ProviderStats
}

func (s *stubGateway) Chat(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return &schema.ChatResponse{
		ID:       "resp-1",
		Object:   "chat.completion",
		Model:    "gpt-4o",
		Provider: "openai",
		Choices: []schema.Choice{{
			Message:      &schema.ChatMessage{Role: "assistant", Content: schema.Content{Text: "Hi"}},
			FinishReason: "stop",
		}},
	}, nil
}

func (s *stubGateway) StreamChat(ctx context.Context, req *schema.ChatRequest) (<-chan ports.StreamResult, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	ch := make(chan ports.StreamResult, 2)
	ch <- ports.StreamResult{Response: &schema.ChatResponse{
		Object: "chat.completion.chunk",
		Choices: []schema.Choice{{
			Delta: &schema.ChatMessage{Role: "assistant", Content: schema.Content{Text: "Hi"}},
		}},
	}}
	close(ch)
	return ch, nil
}

func (s *stubGateway) GenerateImage(ctx context.Context, req *schema.ImageRequest) (*schema.ImageResponse, error) {
	return nil, domain.ConfigurationError("image generation is not configured")
}

func (s *stubGateway) Transcribe(ctx context.Context, req *schema.TranscriptionRequest) (*schema.TranscriptionResponse, error) {
	return nil, domain.ConfigurationError("transcription is not configured")
}

func (s *stubGateway) Providers() []catalog.Descriptor {
	d, _ := catalog.Lookup("openai")
	return []catalog.Descriptor{d}
}

func (s *stubGateway) Statistics() map[string]services.ProviderStats {
	return s.statsMap
}

func (s *stubGateway) ResetStatistics() { s.resets++ }

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "test"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		Cache:     config.CacheConfig{ImageTTL: time.Hour},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, gw *stubGateway) http.Handler {
	t.Helper()
	validator.InitValidator()
	return server.New(cfg, zap.NewNop(), gw, analytics.NewService(nil)).Handler()
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, testConfig(), &stubGateway{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestChatCompletion(t *testing.T) {
	h := newTestServer(t, testConfig(), &stubGateway{})

	body := `{"messages": [{"role": "user", "content": "Hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp schema.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, "Hi", resp.Choices[0].Message.Content.Text)
}

func TestChatCompletion_ValidationError(t *testing.T) {
	h := newTestServer(t, testConfig(), &stubGateway{})

	// messages is required and must be non-empty
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"messages": []}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "problem+json")
}

func TestChatCompletion_NoProviders(t *testing.T) {
	h := newTestServer(t, testConfig(), &stubGateway{
		chatErr: domain.ConfigurationError("no chat providers are configured"),
	})

	body := `{"messages": [{"role": "user", "content": "Hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.EqualValues(t, http.StatusServiceUnavailable, problem["status"])
}

func TestChatCompletion_Streaming(t *testing.T) {
	// gin's Stream needs a real connection for CloseNotify
	ts := httptest.NewServer(newTestServer(t, testConfig(), &stubGateway{}))
	defer ts.Close()

	body := `{"stream": true, "messages": [{"role": "user", "content": "Hello"}]}`
	resp, err := http.Post(ts.URL+"/v1/chat/completions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "data: ")
	assert.Contains(t, string(raw), "[DONE]")
}

func TestListProviders(t *testing.T) {
	h := newTestServer(t, testConfig(), &stubGateway{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/providers", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "openai", resp.Data[0].ID)
}

func TestStats(t *testing.T) {
	d, _ := catalog.Lookup("openai")
	gw := &stubGateway{statsMap: map[string]services.ProviderStats{
		"openai": {RequestCount: 3, Descriptor: d},
	}}
	h := newTestServer(t, testConfig(), gw)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"request_count":3`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, gw.resets)
}

func TestImage_NotConfigured(t *testing.T) {
	h := newTestServer(t, testConfig(), &stubGateway{})

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generations", strings.NewReader(`{"prompt": "a cat"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuth_MissingKey(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKeys = []string{"sk-gw-test"}
	h := newTestServer(t, cfg, &stubGateway{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/providers", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/providers", nil)
	req.Header.Set("Authorization", "Bearer sk-gw-test")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	h := newTestServer(t, cfg, &stubGateway{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/providers", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/providers", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}
