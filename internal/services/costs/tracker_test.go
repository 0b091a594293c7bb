package costs

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
)

func TestLookupPricing(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		wantInput float64
		wantKnown bool
	}{
		{"exact gemini flash", "gemini-2.5-flash", 0.15, true},
		{"exact claude sonnet vertex", "claude-sonnet-4@20250514", 3.00, true},
		{"fuzzy versioned suffix", "gemini-2.5-flash-001", 0.15, true},
		{"unknown model falls back", "totally-unknown-model", 3.00, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, known := lookupPricing(tt.model)
			assert.Equal(t, tt.wantKnown, known)
			assert.Equal(t, tt.wantInput, p.input)
		})
	}
}

func TestRecordComputesCost(t *testing.T) {
	tracker := NewTracker(arbor.NewLogger())

	// 1M input + 1M output of gemini-2.0-flash: 0.10 + 0.40 = 0.50
	rec := tracker.Record("google", "gemini-2.0-flash", 1_000_000, 1_000_000, interfaces.RecordOptions{
		FileName: "sample.pdf",
		DocType:  "TDS",
	})

	assert.InDelta(t, 0.50, rec.CostUSD, 1e-9)
	assert.Equal(t, 2_000_000, rec.TotalTokens)
}

func TestRecordIncludesCacheTokens(t *testing.T) {
	tracker := NewTracker(arbor.NewLogger())

	// Claude Sonnet: 1M cache write (3.75) + 1M cache read (0.30)
	rec := tracker.Record("anthropic", "claude-sonnet-4@20250514", 0, 0, interfaces.RecordOptions{
		CacheCreationTokens: 1_000_000,
		CacheReadTokens:     1_000_000,
	})

	assert.InDelta(t, 4.05, rec.CostUSD, 1e-9)
	assert.Equal(t, 2_000_000, rec.TotalTokens)
}

func TestSummaryAggregatesByProvider(t *testing.T) {
	tracker := NewTracker(arbor.NewLogger())

	tracker.Record("google", "gemini-2.0-flash", 5000, 800, interfaces.RecordOptions{DurationMs: 1200})
	tracker.Record("google", "gemini-2.0-flash", 3000, 400, interfaces.RecordOptions{DurationMs: 800})
	tracker.Record("anthropic", "claude-sonnet-4@20250514", 5000, 800, interfaces.RecordOptions{
		CacheCreationTokens: 4000,
		CacheReadTokens:     12000,
		CascadeTriggered:    true,
	})

	summary := tracker.Summary()

	assert.Equal(t, 3, summary.TotalExtractions)
	assert.Equal(t, 1, summary.CascadeTriggeredCount)
	require.Len(t, summary.Providers, 2)

	google := summary.Providers["google/gemini-2.0-flash"]
	assert.Equal(t, 2, google.Calls)
	assert.Equal(t, 8000, google.InputTokens)
	assert.Equal(t, 1200, google.OutputTokens)
	assert.EqualValues(t, 1000, google.AvgDurationMs)

	claude := summary.Providers["anthropic/claude-sonnet-4@20250514"]
	// 12000 reads out of 16000 cached tokens = 75%
	assert.InDelta(t, 75.0, claude.CacheHitRatePct, 0.01)
}

func TestSummaryTextContainsBanner(t *testing.T) {
	tracker := NewTracker(arbor.NewLogger())
	tracker.Record("google", "gemini-2.0-flash", 100, 50, interfaces.RecordOptions{})

	text := tracker.SummaryText()

	assert.Contains(t, text, "MENDEL BATCH EXTRACTION - COST REPORT")
	assert.Contains(t, text, "Provider: google/gemini-2.0-flash")
	assert.Contains(t, text, "Total PDFs:       1")
}

func TestTrackerConcurrentRecords(t *testing.T) {
	tracker := NewTracker(arbor.NewLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Record("google", "gemini-2.0-flash", 100, 10, interfaces.RecordOptions{})
		}()
	}
	wg.Wait()

	assert.Len(t, tracker.Records(), 50)
	assert.Equal(t, 50, tracker.Summary().TotalExtractions)
}

func TestSummaryEmptyTracker(t *testing.T) {
	tracker := NewTracker(arbor.NewLogger())

	summary := tracker.Summary()
	assert.Equal(t, 0, summary.TotalExtractions)
	assert.Equal(t, 0.0, summary.TotalCostUSD)
	assert.NotPanics(t, func() { _ = tracker.SummaryText() })
	assert.True(t, strings.HasPrefix(tracker.SummaryText(), "===="))
}
