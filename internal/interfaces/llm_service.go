package interfaces

import (
	"context"

	"github.com/ternarybob/mendel/internal/models"
)

// CompletionRequest describes a single system+user prompt exchange sent
// to an LLM provider.
type CompletionRequest struct {
	// SystemPrompt is the agent's role and instructions. Providers that
	// support prompt caching cache this block.
	SystemPrompt string

	// UserContent is the per-document payload (markdown, extraction JSON).
	UserContent string

	// ResponseJSON requests a JSON-only response where the provider
	// supports constrained output.
	ResponseJSON bool

	// Temperature overrides the provider default when > 0. Extraction
	// agents run at 0 for determinism.
	Temperature float32

	// FileName and DocType annotate logs and cost records.
	FileName string
	DocType  string
}

// LLMProvider defines the interface for a single model provider used by
// the extraction agents. Implementations exist for Google Gemini and
// Anthropic Claude (direct API or Vertex AI).
type LLMProvider interface {
	// Complete sends one prompt exchange and returns the raw response
	// text plus token usage and timing.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - req: Prompt content and options
	//
	// Returns:
	//   - *models.LLMResponse: Response text with usage metadata
	//   - error: Error if the provider call fails
	Complete(ctx context.Context, req CompletionRequest) (*models.LLMResponse, error)

	// Provider returns the provider key ("google" or "anthropic").
	Provider() string

	// Model returns the configured model identifier.
	Model() string

	// HealthCheck verifies the provider is operational with a minimal probe.
	HealthCheck(ctx context.Context) error

	// Close releases client resources.
	Close() error
}
