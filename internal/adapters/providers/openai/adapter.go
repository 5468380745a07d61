package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oselz/ai-gateway/internal/adapters/providers/utils"
	"github.com/oselz/ai-gateway/internal/core/domain"
	"github.com/oselz/ai-gateway/internal/core/ports"
	"github.com/oselz/ai-gateway/internal/registry"
	"github.com/oselz/ai-gateway/pkg/schema"
)

func init() {
	registry.Register("openai", NewAdapter)
}

const defaultModel = "gpt-4o"

type Adapter struct {
	config domain.ProviderConfig
	client *http.Client
}

func NewAdapter(config domain.ProviderConfig) (ports.ChatProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	return &Adapter{
		config: config,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Name() string {
	return a.config.ID
}

func (a *Adapter) Type() string {
	return "openai"
}

func (a *Adapter) headers() map[string]string {
	h := map[string]string{}
	if a.config.APIKey != "" {
		h["Authorization"] = "Bearer " + a.config.APIKey
	}
	if org, ok := a.config.Config["organization"]; ok {
		h["OpenAI-Organization"] = org
	}
	return h
}

func (a *Adapter) endpoint() string {
	return fmt.Sprintf("%s/chat/completions", strings.TrimRight(a.config.BaseURL, "/"))
}

func (a *Adapter) Chat(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error) {
	reqClone := *req
	reqClone.Stream = false
	if reqClone.Model == "" {
		reqClone.Model = defaultModel
	}

	var resp schema.ChatResponse
	if err := utils.SendRequest(ctx, a.client, "POST", a.endpoint(), a.headers(), &reqClone, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (a *Adapter) Stream(ctx context.Context, req *schema.ChatRequest) (<-chan ports.StreamResult, error) {
	reqClone := *req
	reqClone.Stream = true
	if reqClone.Model == "" {
		reqClone.Model = defaultModel
	}

	// Establish the stream before spawning the reader so connection and
	// status failures are returned, not delivered on the channel. The
	// router's failover only acts on returned errors.
	body, err := utils.OpenStream(ctx, a.client, "POST", a.endpoint(), a.headers(), &reqClone)
	if err != nil {
		return nil, err
	}

	ch := make(chan ports.StreamResult)

	go func() {
		defer close(ch)

		err := utils.ConsumeStream(body, func(line string) error {
			// SSE format: data: {...}
			if !strings.HasPrefix(line, "data: ") {
				return nil
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return nil
			}

			var chatResp schema.ChatResponse
			if err := json.Unmarshal([]byte(data), &chatResp); err != nil {
				// skip malformed chunks, the stream continues
				return nil
			}

			ch <- ports.StreamResult{Response: &chatResp}
			return nil
		})

		if err != nil {
			ch <- ports.StreamResult{Err: err}
		}
	}()

	return ch, nil
}
