package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
	"github.com/ternarybob/mendel/internal/interfaces"
)

// DefaultModels maps each provider to the model used when none is
// configured.
var DefaultModels = map[string]string{
	"google":    "gemini-2.5-flash",
	"anthropic": "claude-sonnet-4@20250514",
}

// NewProvider creates the LLM provider implementation for the given
// provider key. An empty model falls back to the per-provider default.
func NewProvider(cfg *common.Config, provider, model string, logger arbor.ILogger) (interfaces.LLMProvider, error) {
	if model == "" {
		model = DefaultModels[provider]
	}

	logger.Info().
		Str("provider", provider).
		Str("model", model).
		Msg("Initializing LLM provider")

	switch provider {
	case "google":
		return NewGeminiService(&cfg.Gemini, model, cfg.Extraction.MaxRetries, logger)

	case "anthropic":
		return NewClaudeService(&cfg.Anthropic, model, logger)

	default:
		return nil, fmt.Errorf("unsupported provider '%s': must be 'google' or 'anthropic'", provider)
	}
}
