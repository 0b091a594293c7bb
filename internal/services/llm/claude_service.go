package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
)

// ClaudeService implements the LLMProvider interface using the
// Anthropic Claude API, either directly or through Vertex AI. It is the
// default cascade fallback provider.
type ClaudeService struct {
	config    *common.AnthropicConfig
	model     string
	logger    arbor.ILogger
	client    anthropic.Client
	timeout   time.Duration
	maxTokens int
	isVertex  bool
}

// Compile-time interface assertion
var _ interfaces.LLMProvider = (*ClaudeService)(nil)

// NewClaudeService creates a new Claude provider instance.
//
// The service initialization includes:
//  1. Selecting direct API or Vertex AI mode based on configuration
//  2. Setting the default model name if not specified
//  3. Parsing the timeout duration from configuration
//  4. Initializing the Anthropic client
//
// Vertex mode is enabled when a service-account credentials path is
// configured; the direct API key is not required in that mode.
//
// Parameters:
//   - anthropicConfig: Claude configuration with API key / Vertex settings
//   - model: Model override; falls back to the configured model when empty
//   - logger: Structured logger for service operations
//
// Returns:
//   - *ClaudeService: Initialized provider ready for use
//   - error: nil on success, error with details on failure
func NewClaudeService(anthropicConfig *common.AnthropicConfig, model string, logger arbor.ILogger) (*ClaudeService, error) {
	if model == "" {
		model = anthropicConfig.Model
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	timeout, err := time.ParseDuration(anthropicConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", anthropicConfig.Timeout, err)
	}

	maxTokens := anthropicConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	var client anthropic.Client
	isVertex := false

	if anthropicConfig.VertexCredsPath != "" {
		// Vertex AI mode: authenticate with the service account
		if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", anthropicConfig.VertexCredsPath)
		}
		if anthropicConfig.VertexProject == "" {
			return nil, fmt.Errorf("vertex_project is required when vertex_credentials_path is set")
		}
		client = anthropic.NewClient(
			vertex.WithGoogleAuth(context.Background(), anthropicConfig.VertexLocation, anthropicConfig.VertexProject),
		)
		isVertex = true
	} else {
		if anthropicConfig.APIKey == "" {
			return nil, fmt.Errorf("Anthropic API key is required for Claude provider (set via MENDEL_ANTHROPIC_API_KEY, ANTHROPIC_API_KEY, or anthropic.api_key in config)")
		}
		client = anthropic.NewClient(
			option.WithAPIKey(anthropicConfig.APIKey),
		)
	}

	service := &ClaudeService{
		config:    anthropicConfig,
		model:     model,
		logger:    logger,
		client:    client,
		timeout:   timeout,
		maxTokens: maxTokens,
		isVertex:  isVertex,
	}

	logger.Debug().
		Str("model", model).
		Dur("timeout", timeout).
		Int("max_tokens", maxTokens).
		Bool("vertex", isVertex).
		Msg("Claude provider initialized successfully")

	return service, nil
}

// Provider returns the provider key for cost records.
func (s *ClaudeService) Provider() string {
	return "anthropic"
}

// Model returns the configured model identifier.
func (s *ClaudeService) Model() string {
	return s.model
}

// Complete sends one system+user exchange to Claude and returns the
// response text with token usage.
//
// The system prompt is sent as a cacheable block on the direct API so
// repeated extractions with the same prompt hit the prompt cache.
// Vertex AI does not support cache_control, so the block is sent plain
// there.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - req: Prompt content and options
//
// Returns:
//   - *models.LLMResponse: Response text with usage metadata
//   - error: nil on success, error with details on failure
func (s *ClaudeService) Complete(ctx context.Context, req interfaces.CompletionRequest) (*models.LLMResponse, error) {
	if strings.TrimSpace(req.UserContent) == "" {
		return nil, fmt.Errorf("user content cannot be empty for completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(s.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserContent)),
		},
	}

	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}

	if req.SystemPrompt != "" {
		systemBlock := anthropic.TextBlockParam{Text: req.SystemPrompt}
		if !s.isVertex {
			systemBlock.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
		params.System = []anthropic.TextBlockParam{systemBlock}
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("file", req.FileName).
			Msg("Claude completion failed")
		return nil, fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no response generated from Claude API")
	}

	durationMs := time.Since(startTime).Milliseconds()

	inputTokens := int(resp.Usage.InputTokens)
	outputTokens := int(resp.Usage.OutputTokens)
	cacheCreation := int(resp.Usage.CacheCreationInputTokens)
	cacheRead := int(resp.Usage.CacheReadInputTokens)

	s.logger.Debug().
		Str("file", req.FileName).
		Int("input_tokens", inputTokens).
		Int("output_tokens", outputTokens).
		Int("cache_created", cacheCreation).
		Int("cache_read", cacheRead).
		Int64("duration_ms", durationMs).
		Msg("Claude completion succeeded")

	return &models.LLMResponse{
		Content:             text.String(),
		InputTokens:         inputTokens,
		OutputTokens:        outputTokens,
		CacheCreationTokens: cacheCreation,
		CacheReadTokens:     cacheRead,
		DurationMs:          durationMs,
		Provider:            "anthropic",
		Model:               s.model,
	}, nil
}

// HealthCheck verifies the Claude provider is operational.
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := s.Complete(healthCheckCtx, interfaces.CompletionRequest{
		UserContent: "ping",
	})
	if err != nil {
		return fmt.Errorf("Claude health check failed: %w", err)
	}
	if len(strings.TrimSpace(resp.Content)) == 0 {
		return fmt.Errorf("Claude probe returned empty response")
	}

	s.logger.Debug().
		Str("model", s.model).
		Msg("Claude provider health check passed")

	return nil
}

// Close releases resources and performs cleanup operations.
func (s *ClaudeService) Close() error {
	s.logger.Debug().Msg("Closing Claude provider")
	// Claude client doesn't require explicit cleanup
	return nil
}
