package models

import "time"

// TokenRecord is the accounting entry for a single LLM call.
type TokenRecord struct {
	Provider            string    `json:"provider"`
	Model               string    `json:"model"`
	InputTokens         int       `json:"input_tokens"`
	OutputTokens        int       `json:"output_tokens"`
	CacheCreationTokens int       `json:"cache_creation_tokens"`
	CacheReadTokens     int       `json:"cache_read_tokens"`
	TotalTokens         int       `json:"total_tokens"`
	CostUSD             float64   `json:"cost_usd"`
	FileName            string    `json:"file_name"`
	DocType             string    `json:"doc_type"`
	DurationMs          int64     `json:"duration_ms"`
	CascadeTriggered    bool      `json:"cascade_triggered"`
	Timestamp           time.Time `json:"timestamp"`
}

// LLMResponse is the raw outcome of one provider call before any JSON
// parsing: the text plus token usage and timing.
type LLMResponse struct {
	Content             string `json:"content"`
	InputTokens         int    `json:"input_tokens"`
	OutputTokens        int    `json:"output_tokens"`
	CacheCreationTokens int    `json:"cache_creation_tokens"`
	CacheReadTokens     int    `json:"cache_read_tokens"`
	DurationMs          int64  `json:"duration_ms"`
	Provider            string `json:"provider"`
	Model               string `json:"model"`
}
