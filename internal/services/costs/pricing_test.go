package costs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupPricingExactMatch(t *testing.T) {
	p, ok := lookupPricing("gemini-2.0-flash")
	assert.True(t, ok)
	assert.Equal(t, 0.10, p.input)
}

func TestLookupPricingFuzzyVersionSuffix(t *testing.T) {
	p, ok := lookupPricing("gemini-2.5-flash-001")
	assert.True(t, ok)
	assert.Equal(t, 0.15, p.input)
}

func TestLookupPricingFuzzyMatchIsDeterministic(t *testing.T) {
	// Matches both the 1.5-flash and 1.5-pro keys; the sorted scan must
	// always pick the same one.
	for i := 0; i < 20; i++ {
		p, ok := lookupPricing("gemini-1.5-flash-vs-gemini-1.5-pro")
		assert.True(t, ok)
		assert.Equal(t, 0.075, p.input)
	}
}

func TestLookupPricingUnknownModelFallsBack(t *testing.T) {
	p, ok := lookupPricing("mystery-model-9000")
	assert.False(t, ok)
	assert.Equal(t, fallbackPricing, p)
}
