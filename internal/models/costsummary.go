package models

// ProviderCostSummary aggregates usage for one provider/model pair.
type ProviderCostSummary struct {
	Calls               int     `json:"calls"`
	InputTokens         int     `json:"input_tokens"`
	OutputTokens        int     `json:"output_tokens"`
	CacheCreationTokens int     `json:"cache_creation_tokens"`
	CacheReadTokens     int     `json:"cache_read_tokens"`
	TotalTokens         int     `json:"total_tokens"`
	CostUSD             float64 `json:"cost_usd"`
	AvgCostPerCall      float64 `json:"avg_cost_per_call"`
	AvgDurationMs       int64   `json:"avg_duration_ms"`
	CacheHitRatePct     float64 `json:"cache_hit_rate_pct"`
}

// CostSummary is the batch-level cost report. Providers is keyed by
// "provider/model".
type CostSummary struct {
	TotalExtractions      int                            `json:"total_extractions"`
	CascadeTriggeredCount int                            `json:"cascade_triggered_count"`
	TotalTokens           int                            `json:"total_tokens"`
	TotalCostUSD          float64                        `json:"total_cost_usd"`
	AvgCostPerPDF         float64                        `json:"avg_cost_per_pdf"`
	ElapsedSeconds        float64                        `json:"elapsed_seconds"`
	Providers             map[string]ProviderCostSummary `json:"providers"`
}
