package costs

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
)

// Tracker accumulates token usage and USD costs across a batch of
// extractions. Safe for concurrent use by the pipeline workers.
type Tracker struct {
	mu        sync.Mutex
	records   []models.TokenRecord
	startTime time.Time
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.CostService = (*Tracker)(nil)

// NewTracker creates a cost tracker for one batch run.
func NewTracker(logger arbor.ILogger) *Tracker {
	return &Tracker{
		startTime: time.Now(),
		logger:    logger,
	}
}

// Record adds one LLM call's usage, prices it and returns the record.
func (t *Tracker) Record(provider, model string, inputTokens, outputTokens int, opts interfaces.RecordOptions) models.TokenRecord {
	rec := models.TokenRecord{
		Provider:            provider,
		Model:               model,
		InputTokens:         inputTokens,
		OutputTokens:        outputTokens,
		CacheCreationTokens: opts.CacheCreationTokens,
		CacheReadTokens:     opts.CacheReadTokens,
		FileName:            opts.FileName,
		DocType:             opts.DocType,
		DurationMs:          opts.DurationMs,
		CascadeTriggered:    opts.CascadeTriggered,
		Timestamp:           time.Now(),
	}

	price, known := lookupPricing(model)
	if !known {
		t.logger.Warn().Str("model", model).Msg("Unknown model pricing, using fallback")
	}

	rec.TotalTokens = rec.InputTokens + rec.OutputTokens + rec.CacheCreationTokens + rec.CacheReadTokens
	rec.CostUSD = float64(rec.InputTokens)/1_000_000*price.input +
		float64(rec.OutputTokens)/1_000_000*price.output +
		float64(rec.CacheCreationTokens)/1_000_000*price.cacheWrite +
		float64(rec.CacheReadTokens)/1_000_000*price.cacheRead

	t.mu.Lock()
	t.records = append(t.records, rec)
	t.mu.Unlock()

	t.logger.Info().
		Str("provider", provider).
		Str("model", model).
		Str("file", opts.FileName).
		Int("input_tokens", inputTokens).
		Int("output_tokens", outputTokens).
		Int("cache_read", opts.CacheReadTokens).
		Str("cost_usd", fmt.Sprintf("$%.4f", rec.CostUSD)).
		Msg("Cost tracked")

	return rec
}

// Records returns a copy of all recorded entries in call order.
func (t *Tracker) Records() []models.TokenRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.TokenRecord, len(t.records))
	copy(out, t.records)
	return out
}

type providerStats struct {
	calls               int
	inputTokens         int
	outputTokens        int
	cacheCreationTokens int
	cacheReadTokens     int
	totalTokens         int
	costUSD             float64
	durationMs          int64
}

// Summary aggregates totals and per-provider statistics.
func (t *Tracker) Summary() models.CostSummary {
	records := t.Records()
	elapsed := time.Since(t.startTime).Seconds()

	stats := make(map[string]*providerStats)
	totalCost := 0.0
	totalTokens := 0
	cascadeCount := 0

	for _, rec := range records {
		key := rec.Provider + "/" + rec.Model
		s, ok := stats[key]
		if !ok {
			s = &providerStats{}
			stats[key] = s
		}
		s.calls++
		s.inputTokens += rec.InputTokens
		s.outputTokens += rec.OutputTokens
		s.cacheCreationTokens += rec.CacheCreationTokens
		s.cacheReadTokens += rec.CacheReadTokens
		s.totalTokens += rec.TotalTokens
		s.costUSD += rec.CostUSD
		s.durationMs += rec.DurationMs

		totalCost += rec.CostUSD
		totalTokens += rec.TotalTokens
		if rec.CascadeTriggered {
			cascadeCount++
		}
	}

	providers := make(map[string]models.ProviderCostSummary, len(stats))
	for key, s := range stats {
		hitRate := 0.0
		if totalCache := s.cacheCreationTokens + s.cacheReadTokens; totalCache > 0 {
			hitRate = float64(s.cacheReadTokens) / float64(totalCache) * 100
		}
		calls := s.calls
		if calls < 1 {
			calls = 1
		}
		providers[key] = models.ProviderCostSummary{
			Calls:               s.calls,
			InputTokens:         s.inputTokens,
			OutputTokens:        s.outputTokens,
			CacheCreationTokens: s.cacheCreationTokens,
			CacheReadTokens:     s.cacheReadTokens,
			TotalTokens:         s.totalTokens,
			CostUSD:             round4(s.costUSD),
			AvgCostPerCall:      round4(s.costUSD / float64(calls)),
			AvgDurationMs:       int64(math.Round(float64(s.durationMs) / float64(calls))),
			CacheHitRatePct:     round1(hitRate),
		}
	}

	extractions := len(records)
	denominator := extractions
	if denominator < 1 {
		denominator = 1
	}

	return models.CostSummary{
		TotalExtractions:      extractions,
		CascadeTriggeredCount: cascadeCount,
		TotalTokens:           totalTokens,
		TotalCostUSD:          round4(totalCost),
		AvgCostPerPDF:         round4(totalCost / float64(denominator)),
		ElapsedSeconds:        round1(elapsed),
		Providers:             providers,
	}
}

// SummaryText renders the human-readable cost report banner.
func (t *Tracker) SummaryText() string {
	s := t.Summary()

	lines := []string{
		strings.Repeat("=", 60),
		"  MENDEL BATCH EXTRACTION - COST REPORT",
		strings.Repeat("=", 60),
		fmt.Sprintf("  Total PDFs:       %d", s.TotalExtractions),
		fmt.Sprintf("  Cascades:         %d", s.CascadeTriggeredCount),
		fmt.Sprintf("  Total Tokens:     %d", s.TotalTokens),
		fmt.Sprintf("  Total Cost:       $%.4f", s.TotalCostUSD),
		fmt.Sprintf("  Avg Cost/PDF:     $%.4f", s.AvgCostPerPDF),
		fmt.Sprintf("  Elapsed:          %.1fs", s.ElapsedSeconds),
		strings.Repeat("-", 60),
	}

	// Stable provider ordering for the report
	keys := make([]string, 0, len(s.Providers))
	for key := range s.Providers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ps := s.Providers[key]
		lines = append(lines,
			fmt.Sprintf("  Provider: %s", key),
			fmt.Sprintf("    Calls:          %d", ps.Calls),
			fmt.Sprintf("    Input Tokens:   %d", ps.InputTokens),
			fmt.Sprintf("    Output Tokens:  %d", ps.OutputTokens),
			fmt.Sprintf("    Cache Created:  %d", ps.CacheCreationTokens),
			fmt.Sprintf("    Cache Read:     %d", ps.CacheReadTokens),
			fmt.Sprintf("    Cache Hit Rate: %.1f%%", ps.CacheHitRatePct),
			fmt.Sprintf("    Total Cost:     $%.4f", ps.CostUSD),
			fmt.Sprintf("    Avg Cost/Call:  $%.4f", ps.AvgCostPerCall),
			fmt.Sprintf("    Avg Duration:   %dms", ps.AvgDurationMs),
			strings.Repeat("-", 60),
		)
	}

	lines = append(lines, strings.Repeat("=", 60))
	return strings.Join(lines, "\n")
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
