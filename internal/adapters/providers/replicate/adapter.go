package replicate

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
	"github.com/oselz/ai-gateway/pkg/schema"
)

// Default model version used when the request does not pin one (SDXL).
const defaultVersion = "39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b"

const pollInterval = time.Second

type Adapter struct {
	config domain.ProviderConfig
	client *http.Client
}

func NewAdapter(config domain.ProviderConfig) (ports.ImageGenerator, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.replicate.com/v1"
	}
	return &Adapter{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (a *Adapter) Name() string { return a.config.ID }

// --- Replicate Internal Schemas ---

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error,omitempty"`
}

type createRequest struct {
	Version string                 `json:"version"`
	Input   map[string]interface{} `json:"input"`
}

func (a *Adapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Token " + a.config.APIKey,
	}
}

func (a *Adapter) endpoint(path string) string {
	return strings.TrimRight(a.config.BaseURL, "/") + path
}

// Generate creates a prediction and polls it to a terminal state. Replicate
// predictions are asynchronous; ctx bounds the whole wait.
func (a *Adapter) Generate(ctx context.Context, req *schema.ImageRequest) (*schema.ImageResponse, error) {
	version := req.Version
	if version == "" {
		version = a.config.Config["version"]
	}
	if version == "" {
		version = defaultVersion
	}

	input := map[string]interface{}{"prompt": req.Prompt}
	if req.NegativePrompt != "" {
		input["negative_prompt"] = req.NegativePrompt
	}
	if req.Width > 0 {
		input["width"] = req.Width
	}
	if req.Height > 0 {
		input["height"] = req.Height
	}
	if req.NumOutputs > 0 {
		input["num_outputs"] = req.NumOutputs
	}

	var pred prediction
	err := utils.SendRequest(ctx, a.client, "POST", a.endpoint("/predictions"), a.headers(),
		createRequest{Version: version, Input: input}, &pred)
	if err != nil {
		return nil, err
	}

	for !terminal(pred.Status) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}

		err := utils.SendRequest(ctx, a.client, "GET", a.endpoint("/predictions/"+pred.ID), a.headers(), nil, &pred)
		if err != nil {
			return nil, err
		}
	}

	if pred.Status != "succeeded" {
		return nil, fmt.Errorf("prediction %s %s: %s", pred.ID, pred.Status, pred.Error)
	}

	return &schema.ImageResponse{
		ID:      pred.ID,
		Status:  pred.Status,
		Outputs: parseOutputs(pred.Output),
		Created: time.Now().Unix(),
	}, nil
}

func terminal(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

// parseOutputs handles the union output shape: string | []string.
func parseOutputs(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}

	return nil
}
