package schema

// ImageRequest describes an image generation job forwarded to Replicate.
type ImageRequest struct {
	Prompt         string `json:"prompt" binding:"required,min=1"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	NumOutputs     int    `json:"num_outputs,omitempty"`

	// Model version pin; the adapter falls back to its configured default.
	Version string `json:"version,omitempty"`
}

type ImageResponse struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"` // "succeeded", "failed", ...
	Outputs []string `json:"outputs"`
	Created int64    `json:"created"`
}
