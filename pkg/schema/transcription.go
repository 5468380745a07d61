package schema

// TranscriptionRequest carries raw audio to a speech-to-text backend.
// Audio bytes come from a multipart upload, not JSON.
type TranscriptionRequest struct {
	Audio    []byte `json:"-"`
	MimeType string `json:"-"`

	Model    string `json:"model,omitempty"`
	Language string `json:"language,omitempty"`
}

type TranscriptionResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	DurationS  float64 `json:"duration_s,omitempty"`
}
