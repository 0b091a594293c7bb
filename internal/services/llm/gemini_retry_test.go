package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, isRateLimitError(nil))
	assert.False(t, isRateLimitError(errors.New("connection refused")))
	assert.True(t, isRateLimitError(errors.New("Error 429, Message: quota exceeded")))
	assert.True(t, isRateLimitError(errors.New("Status: RESOURCE_EXHAUSTED")))
}

func TestExtractRetryDelay(t *testing.T) {
	err := errors.New("Error 429, Message: ... Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED")
	delay := extractRetryDelay(err)
	assert.InDelta(t, 45.387, delay.Seconds(), 0.001)

	assert.Equal(t, time.Duration(0), extractRetryDelay(errors.New("no delay here")))
	assert.Equal(t, time.Duration(0), extractRetryDelay(nil))
}

func TestBackoffUsesAPIDelay(t *testing.T) {
	retry := defaultGeminiRetry(5)

	// API delay plus buffer on the first attempt
	assert.Equal(t, 50*time.Second, retry.backoff(0, 45*time.Second))

	// Configured initial backoff when the API gives no hint
	assert.Equal(t, 45*time.Second, retry.backoff(0, 0))

	// Capped at the maximum
	assert.Equal(t, 90*time.Second, retry.backoff(3, 60*time.Second))
}
