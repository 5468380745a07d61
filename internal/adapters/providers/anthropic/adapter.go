package anthropic

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
	registry.Register("anthropic", NewAdapter)
}

const (
	defaultModel   = "claude-3-5-sonnet-20240620"
	defaultVersion = "2023-06-01"
)

type Adapter struct {
	config domain.ProviderConfig
	client *http.Client
}

func NewAdapter(config domain.ProviderConfig) (ports.ChatProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com/v1"
	}
	return &Adapter{
		config: config,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Name() string { return a.config.ID }
func (a *Adapter) Type() string { return "anthropic" }

// --- Anthropic Internal Schemas ---

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	System    string    `json:"system,omitempty"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream,omitempty"`
}

type response struct {
	ID         string         `json:"id"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type streamEvent struct {
	Type  string        `json:"type"`
	Delta *delta        `json:"delta,omitempty"`
	Block *contentBlock `json:"content_block,omitempty"` // content_block_start
	Index int           `json:"index,omitempty"`
	Usage *usage        `json:"usage,omitempty"` // message_start
}

type delta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Convert unified -> Anthropic messages payload. System messages collapse
// into the top-level system prompt; multi-part content flattens to text.
func toAnthropicReq(req *schema.ChatRequest) request {
	ar := request{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Stream:    req.Stream,
	}
	if ar.Model == "" {
		ar.Model = defaultModel
	}
	if ar.MaxTokens == 0 {
		ar.MaxTokens = 4096
	}
	for _, m := range req.Messages {
		text := m.Content.Text
		for _, p := range m.Content.Parts {
			if p.Type == "text" {
				text += p.Text
			}
		}
		if m.Role == "system" {
			ar.System += text + "\n"
			continue
		}
		ar.Messages = append(ar.Messages, message{Role: m.Role, Content: text})
	}
	return ar
}

func fromAnthropicResp(r *response) *schema.ChatResponse {
	var text string
	for _, c := range r.Content {
		if c.Type == "text" {
			text += c.Text
		}
	}

	return &schema.ChatResponse{
		ID:      r.ID,
		Model:   r.Model,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Choices: []schema.Choice{{
			Message: &schema.ChatMessage{
				Role:    string(schema.Assistant),
				Content: schema.Content{Text: text},
			},
			FinishReason: mapStopReason(r.StopReason),
		}},
		Usage: &schema.ResponseUsage{
			PromptTokens:     r.Usage.InputTokens,
			CompletionTokens: r.Usage.OutputTokens,
			TotalTokens:      r.Usage.InputTokens + r.Usage.OutputTokens,
		},
	}
}

func mapStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return "stop"
	case "max_tokens":
		return "length"
	default:
		return reason
	}
}

func (a *Adapter) headers() map[string]string {
	version := a.config.Config["version"]
	if version == "" {
		version = defaultVersion
	}
	return map[string]string{
		"x-api-key":         a.config.APIKey,
		"anthropic-version": version,
	}
}

func (a *Adapter) endpoint() string {
	return fmt.Sprintf("%s/messages", strings.TrimRight(a.config.BaseURL, "/"))
}

func (a *Adapter) Chat(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error) {
	body := toAnthropicReq(req)
	body.Stream = false

	var resp response
	if err := utils.SendRequest(ctx, a.client, "POST", a.endpoint(), a.headers(), body, &resp); err != nil {
		return nil, err
	}

	return fromAnthropicResp(&resp), nil
}

func (a *Adapter) Stream(ctx context.Context, req *schema.ChatRequest) (<-chan ports.StreamResult, error) {
	body := toAnthropicReq(req)
	body.Stream = true

	// Establish the stream before spawning the reader so connection and
	// status failures are returned, not delivered on the channel. The
	// router's failover only acts on returned errors.
	respBody, err := utils.OpenStream(ctx, a.client, "POST", a.endpoint(), a.headers(), body)
	if err != nil {
		return nil, err
	}

	ch := make(chan ports.StreamResult)

	go func() {
		defer close(ch)

		err := utils.ConsumeStream(respBody, func(line string) error {
			if !strings.HasPrefix(line, "data: ") {
				return nil
			}

			var ev streamEvent
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				return nil
			}

			if ev.Type != "content_block_delta" || ev.Delta == nil {
				return nil
			}

			ch <- ports.StreamResult{Response: &schema.ChatResponse{
				Object: "chat.completion.chunk",
				Model:  body.Model,
				Choices: []schema.Choice{{
					Delta: &schema.ChatMessage{
						Role:    string(schema.Assistant),
						Content: schema.Content{Text: ev.Delta.Text},
					},
				}},
			}}
			return nil
		})

		if err != nil {
			ch <- ports.StreamResult{Err: err}
		}
	}()

	return ch, nil
}
