package deepgram

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oselz/ai-gateway/internal/adapters/providers/utils"
	"github.com/oselz/ai-gateway/internal/core/domain"
	"github.com/oselz/ai-gateway/internal/core/ports"
	"github.com/oselz/ai-gateway/pkg/schema"
)

const defaultModel = "nova-2"

type Adapter struct {
	config domain.ProviderConfig
	client *http.Client
}

func NewAdapter(config domain.ProviderConfig) (ports.Transcriber, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.deepgram.com/v1"
	}
	return &Adapter{
		config: config,
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (a *Adapter) Name() string { return a.config.ID }

// --- Deepgram Internal Schemas ---

type listenResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe posts raw audio to /listen and returns the first alternative
// of the first channel.
func (a *Adapter) Transcribe(ctx context.Context, req *schema.TranscriptionRequest) (*schema.TranscriptionResponse, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	q := url.Values{}
	q.Set("model", model)
	q.Set("smart_format", "true")
	if req.Language != "" {
		q.Set("language", req.Language)
	}

	endpoint := strings.TrimRight(a.config.BaseURL, "/") + "/listen?" + q.Encode()

	contentType := req.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	headers := map[string]string{
		"Authorization": "Token " + a.config.APIKey,
	}

	var resp listenResponse
	err := utils.SendRaw(ctx, a.client, "POST", endpoint, contentType, bytes.NewReader(req.Audio), headers, &resp)
	if err != nil {
		return nil, err
	}

	out := &schema.TranscriptionResponse{DurationS: resp.Metadata.Duration}
	if len(resp.Results.Channels) > 0 && len(resp.Results.Channels[0].Alternatives) > 0 {
		alt := resp.Results.Channels[0].Alternatives[0]
		out.Text = alt.Transcript
		out.Confidence = alt.Confidence
	}
	return out, nil
}
