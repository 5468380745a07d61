package ports

import (
	"context"

	"github.com/oselz/ai-gateway/pkg/schema"
)

// ChatProvider defines the contract that all chat backends must implement.
type ChatProvider interface {
	Name() string
	Type() string // e.g., "openai", "anthropic"

	Chat(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error)
	Stream(ctx context.Context, req *schema.ChatRequest) (<-chan StreamResult, error)
}

type StreamResult struct {
	Response *schema.ChatResponse
	Err      error
}

// ImageGenerator is implemented by image generation backends (Replicate).
type ImageGenerator interface {
	Name() string
	Generate(ctx context.Context, req *schema.ImageRequest) (*schema.ImageResponse, error)
}

// Transcriber is implemented by speech-to-text backends (Deepgram).
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, req *schema.TranscriptionRequest) (*schema.TranscriptionResponse, error)
}
