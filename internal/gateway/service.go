// Package gateway composes the provider router with the image and
// transcription backends, the response cache and the analytics pipeline.
// HTTP handlers depend on this service, never on adapters directly.
package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oselz/ai-gateway/internal/analytics"
	"github.com/oselz/ai-gateway/internal/catalog"
	"github.com/oselz/ai-gateway/internal/core/domain"
	"github.com/oselz/ai-gateway/internal/core/ports"
	"github.com/oselz/ai-gateway/internal/core/services"
	"github.com/oselz/ai-gateway/internal/store/model"
	"github.com/oselz/ai-gateway/pkg/schema"
)

type Service interface {
	Chat(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error)
	StreamChat(ctx context.Context, req *schema.ChatRequest) (<-chan ports.StreamResult, error)
	GenerateImage(ctx context.Context, req *schema.ImageRequest) (*schema.ImageResponse, error)
	Transcribe(ctx context.Context, req *schema.TranscriptionRequest) (*schema.TranscriptionResponse, error)

	Providers() []catalog.Descriptor
	Statistics() map[string]services.ProviderStats
	ResetStatistics()
}

type Options struct {
	Logger      *zap.Logger
	Router      *services.Router
	Images      ports.ImageGenerator // nil when Replicate is not configured
	Transcriber ports.Transcriber    // nil when Deepgram is not configured
	Cache       ports.CacheService
	Ingestor    analytics.Ingestor
	ImageTTL    time.Duration
}

type service struct {
	logger      *zap.Logger
	router      *services.Router
	images      ports.ImageGenerator
	transcriber ports.Transcriber
	cache       ports.CacheService
	ingestor    analytics.Ingestor
	imageTTL    time.Duration
}

func NewService(opts Options) Service {
	if opts.ImageTTL <= 0 {
		opts.ImageTTL = time.Hour
	}
	if opts.Ingestor == nil {
		opts.Ingestor = analytics.NopIngestor{}
	}
	return &service{
		logger:      opts.Logger,
		router:      opts.Router,
		images:      opts.Images,
		transcriber: opts.Transcriber,
		cache:       opts.Cache,
		ingestor:    opts.Ingestor,
		imageTTL:    opts.ImageTTL,
	}
}

func (s *service) Chat(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error) {
	start := time.Now()

	resp, err := s.router.Chat(ctx, req)
	if err != nil {
		s.ingest("chat", "", req, nil, statusFor(err), time.Since(start))
		return nil, err
	}

	s.ingest("chat", resp.Provider, req, resp, http.StatusOK, time.Since(start))
	return resp, nil
}

func (s *service) StreamChat(ctx context.Context, req *schema.ChatRequest) (<-chan ports.StreamResult, error) {
	start := time.Now()

	streamChan, err := s.router.StreamChat(ctx, req)
	if err != nil {
		s.ingest("chat", "", req, nil, statusFor(err), time.Since(start))
		return nil, err
	}

	// Intercept the stream so the request shows up in analytics once the
	// provider finishes. Forwarding must not outlive the request: when the
	// client stops reading and ctx is canceled, the send would block forever.
	outChan := make(chan ports.StreamResult)
	go func() {
		defer close(outChan)

		provider := ""
		defer func() {
			s.ingest("chat", provider, req, nil, http.StatusOK, time.Since(start))
		}()

		for result := range streamChan {
			if result.Response != nil && result.Response.Provider != "" {
				provider = result.Response.Provider
			}

			select {
			case outChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return outChan, nil
}

func (s *service) GenerateImage(ctx context.Context, req *schema.ImageRequest) (*schema.ImageResponse, error) {
	if s.images == nil {
		return nil, domain.ConfigurationError("image generation is not configured; set REPLICATE_API_TOKEN")
	}

	key := imageCacheKey(req)
	if s.cache != nil {
		var cached schema.ImageResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.logger.Debug("image cache hit", zap.String("key", key))
			return &cached, nil
		}
	}

	start := time.Now()
	resp, err := s.images.Generate(ctx, req)
	if err != nil {
		return nil, domain.ProviderError("image generation failed", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.imageTTL); err != nil {
			s.logger.Warn("failed to cache image result", zap.Error(err))
		}
	}

	s.ingestor.Log(&model.RequestLog{
		ID:         uuid.NewString(),
		Endpoint:   "image",
		ProviderID: s.images.Name(),
		StatusCode: http.StatusOK,
		LatencyMS:  time.Since(start).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	})

	return resp, nil
}

func (s *service) Transcribe(ctx context.Context, req *schema.TranscriptionRequest) (*schema.TranscriptionResponse, error) {
	if s.transcriber == nil {
		return nil, domain.ConfigurationError("transcription is not configured; set DEEPGRAM_API_KEY")
	}

	start := time.Now()
	resp, err := s.transcriber.Transcribe(ctx, req)
	if err != nil {
		return nil, domain.ProviderError("transcription failed", err)
	}

	s.ingestor.Log(&model.RequestLog{
		ID:         uuid.NewString(),
		Endpoint:   "transcription",
		ProviderID: s.transcriber.Name(),
		Model:      req.Model,
		StatusCode: http.StatusOK,
		LatencyMS:  time.Since(start).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	})

	return resp, nil
}

func (s *service) Providers() []catalog.Descriptor {
	return s.router.Available()
}

func (s *service) Statistics() map[string]services.ProviderStats {
	return s.router.Statistics()
}

func (s *service) ResetStatistics() {
	s.router.ResetStatistics()
}

func (s *service) ingest(endpoint, provider string, req *schema.ChatRequest, resp *schema.ChatResponse, status int, latency time.Duration) {
	log := &model.RequestLog{
		ID:         uuid.NewString(),
		Endpoint:   endpoint,
		ProviderID: provider,
		Model:      req.Model,
		Stream:     req.Stream,
		InputChars: requestChars(req),
		StatusCode: status,
		LatencyMS:  latency.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}

	if resp != nil {
		if resp.ID != "" {
			log.ID = resp.ID
		}
		if resp.Model != "" {
			log.Model = resp.Model
		}
		if resp.Usage != nil {
			log.InputTokens = resp.Usage.PromptTokens
			log.OutputTokens = resp.Usage.CompletionTokens
		}
	}

	s.ingestor.Log(log)
}

func requestChars(req *schema.ChatRequest) int {
	n := 0
	for _, m := range req.Messages {
		n += m.Content.Chars()
	}
	return n
}

func statusFor(err error) int {
	if e, ok := err.(*domain.Error); ok {
		return e.Code
	}
	return http.StatusBadGateway
}

func imageCacheKey(req *schema.ImageRequest) string {
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(data)
	return "img:" + hex.EncodeToString(sum[:])
}
