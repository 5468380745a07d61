package model

import "time"

// RequestLog is one completed gateway request, persisted for analytics.
// This is observability data, not the router's usage counters; those stay
// in memory.
type RequestLog struct {
	ID           string    `db:"id" json:"id"`
	Endpoint     string    `db:"endpoint" json:"endpoint"` // chat | image | transcription
	ProviderID   string    `db:"provider_id" json:"provider_id"`
	Model        string    `db:"model" json:"model"`
	Stream       bool      `db:"stream" json:"stream"`
	InputChars   int       `db:"input_chars" json:"input_chars"`
	InputTokens  int       `db:"input_tokens" json:"input_tokens"`
	OutputTokens int       `db:"output_tokens" json:"output_tokens"`
	StatusCode   int       `db:"status_code" json:"status_code"`
	LatencyMS    int64     `db:"latency_ms" json:"latency_ms"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DailyStats is an aggregate row grouped by calendar day.
type DailyStats struct {
	Day          string  `db:"day" json:"day"`
	Requests     int64   `db:"requests" json:"requests"`
	InputTokens  int64   `db:"input_tokens" json:"input_tokens"`
	OutputTokens int64   `db:"output_tokens" json:"output_tokens"`
	AvgLatencyMS float64 `db:"avg_latency_ms" json:"avg_latency_ms"`
}
