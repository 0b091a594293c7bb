package llm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// geminiRetry controls backoff when Gemini returns quota errors. The
// defaults track Gemini's ~60s token-per-minute quota window.
type geminiRetry struct {
	maxRetries        int
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
}

func defaultGeminiRetry(maxRetries int) *geminiRetry {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &geminiRetry{
		maxRetries:        maxRetries,
		initialBackoff:    45 * time.Second,
		maxBackoff:        90 * time.Second,
		backoffMultiplier: 1.5,
	}
}

// isRateLimitError matches 429 / RESOURCE_EXHAUSTED quota errors.
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "quota")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs"
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// extractRetryDelay parses the API-suggested retry delay out of a
// Gemini quota error, 0 when absent.
func extractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}
	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}
	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// backoff computes the wait before the given retry attempt. An
// API-provided delay takes precedence over the configured initial
// backoff; the result is capped at maxBackoff.
func (c *geminiRetry) backoff(attempt int, apiDelay time.Duration) time.Duration {
	base := c.initialBackoff
	if apiDelay > 0 {
		base = apiDelay + 5*time.Second
	}

	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.backoffMultiplier
	}

	wait := time.Duration(float64(base) * multiplier)
	if wait > c.maxBackoff {
		wait = c.maxBackoff
	}
	return wait
}
