package interfaces

import "github.com/ternarybob/mendel/internal/models"

// RecordOptions carries the optional annotations for one cost entry.
type RecordOptions struct {
	CacheCreationTokens int
	CacheReadTokens     int
	FileName            string
	DocType             string
	DurationMs          int64
	CascadeTriggered    bool
}

// CostService accumulates token usage and USD costs across a batch run.
// Implementations must be safe for concurrent use.
type CostService interface {
	// Record adds one LLM call's usage and returns the priced record.
	Record(provider, model string, inputTokens, outputTokens int, opts RecordOptions) models.TokenRecord

	// Records returns a copy of all recorded entries in call order.
	Records() []models.TokenRecord

	// Summary aggregates totals and per-provider statistics.
	Summary() models.CostSummary

	// SummaryText renders the human-readable cost report banner.
	SummaryText() string
}
