package costs

import (
	"sort"
	"strings"
)

// pricing holds USD prices per 1M tokens:
// input, output, cache write surcharge, cache read.
// Cache prices are 0.0 where the provider has no caching.
type pricing struct {
	input      float64
	output     float64
	cacheWrite float64
	cacheRead  float64
}

// Prices per 1M tokens (USD), updated 2025-06.
var modelPricing = map[string]pricing{
	// Gemini Flash
	"gemini-2.5-flash": {0.15, 0.60, 0.0375, 0.0375},
	"gemini-2.0-flash": {0.10, 0.40, 0.025, 0.025},
	"gemini-1.5-flash": {0.075, 0.30, 0.01875, 0.01875},
	// Gemini Pro
	"gemini-2.5-pro": {1.25, 10.00, 0.3125, 0.3125},
	"gemini-1.5-pro": {1.25, 5.00, 0.3125, 0.3125},
	// Claude Sonnet (Vertex AI pricing = same as direct API)
	"claude-sonnet-4@20250514":      {3.00, 15.00, 3.75, 0.30},
	"claude-sonnet-4-20250514":      {3.00, 15.00, 3.75, 0.30},
	"claude-3-5-sonnet-v2@20241022": {3.00, 15.00, 3.75, 0.30},
	"claude-3-5-sonnet@20241022":    {3.00, 15.00, 3.75, 0.30},
	// Claude Opus
	"claude-opus-4@20250514": {15.00, 75.00, 18.75, 1.50},
	// Claude Haiku
	"claude-3-5-haiku@20241022": {0.80, 4.00, 1.00, 0.08},
	// OpenAI
	"gpt-4o":       {2.50, 10.00, 0.0, 1.25},
	"gpt-4o-mini":  {0.15, 0.60, 0.0, 0.075},
	"gpt-4.1":      {2.00, 8.00, 0.0, 0.50},
	"gpt-4.1-mini": {0.40, 1.60, 0.0, 0.10},
	"gpt-4.1-nano": {0.10, 0.40, 0.0, 0.025},
}

// Conservative fallback for unknown models.
var fallbackPricing = pricing{3.00, 15.00, 3.75, 0.30}

// lookupPricing finds pricing for a model with fuzzy matching, so
// versioned names like "gemini-2.5-flash-001" still resolve. Reports
// whether an exact or fuzzy match was found. Fuzzy candidates are
// scanned in sorted key order so the match is deterministic.
func lookupPricing(model string) (pricing, bool) {
	if p, ok := modelPricing[model]; ok {
		return p, true
	}

	keys := make([]string, 0, len(modelPricing))
	for key := range modelPricing {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.Contains(model, key) || strings.Contains(key, model) {
			return modelPricing[key], true
		}
	}
	return fallbackPricing, false
}
