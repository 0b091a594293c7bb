package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
	"google.golang.org/genai"
)

// GeminiService implements the LLMProvider interface using the Google
// genai SDK. It is the default primary provider for extraction.
type GeminiService struct {
	config  *common.GeminiConfig
	model   string
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
	retry   *geminiRetry
}

// Compile-time interface assertion
var _ interfaces.LLMProvider = (*GeminiService)(nil)

// NewGeminiService creates a new Gemini provider instance.
//
// The service initialization includes:
//  1. Resolving the Google API key from configuration
//  2. Setting the default model name if not specified
//  3. Parsing the timeout duration from configuration
//  4. Initializing the genai client
//
// Parameters:
//   - geminiConfig: Gemini configuration with API key and model settings
//   - model: Model override; falls back to the configured model when empty
//   - maxRetries: Rate-limit retry budget per call
//   - logger: Structured logger for service operations
//
// Returns:
//   - *GeminiService: Initialized provider ready for use
//   - error: nil on success, error with details on failure
//
// Errors:
//   - Missing or empty Google API key
//   - Invalid timeout duration
//   - Failed genai client initialization (network, auth, etc.)
func NewGeminiService(geminiConfig *common.GeminiConfig, model string, maxRetries int, logger arbor.ILogger) (*GeminiService, error) {
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for Gemini provider (set via MENDEL_GEMINI_API_KEY, GOOGLE_AI_API_KEY, or gemini.api_key in config)")
	}

	if model == "" {
		model = geminiConfig.Model
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	timeout, err := time.ParseDuration(geminiConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", geminiConfig.Timeout, err)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  geminiConfig,
		model:   model,
		logger:  logger,
		client:  client,
		timeout: timeout,
		retry:   defaultGeminiRetry(maxRetries),
	}

	logger.Debug().
		Str("model", model).
		Dur("timeout", timeout).
		Float32("temperature", geminiConfig.Temperature).
		Msg("Gemini provider initialized successfully")

	return service, nil
}

// Provider returns the provider key for cost records.
func (s *GeminiService) Provider() string {
	return "google"
}

// Model returns the configured model identifier.
func (s *GeminiService) Model() string {
	return s.model
}

// Complete sends one system+user exchange to Gemini and returns the
// response text with token usage.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - req: Prompt content and options
//
// Returns:
//   - *models.LLMResponse: Response text with usage metadata
//   - error: nil on success, error with details on failure
func (s *GeminiService) Complete(ctx context.Context, req interfaces.CompletionRequest) (*models.LLMResponse, error) {
	if strings.TrimSpace(req.UserContent) == "" {
		return nil, fmt.Errorf("user content cannot be empty for completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.ResponseJSON {
		config.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.UserContent, genai.RoleUser),
	}

	resp, err := s.generateWithRetry(timeoutCtx, contents, config, req.FileName)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("file", req.FileName).
			Msg("Gemini completion failed")
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	// Extract text from response - iterate candidates until non-empty text is found
	var text strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				break
			}
		}
	}

	if text.Len() == 0 {
		return nil, fmt.Errorf("no response generated from Gemini API")
	}

	durationMs := time.Since(startTime).Milliseconds()

	var inputTokens, outputTokens, cachedTokens int
	if resp.UsageMetadata != nil {
		inputTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		cachedTokens = int(resp.UsageMetadata.CachedContentTokenCount)
	}

	s.logger.Debug().
		Str("file", req.FileName).
		Int("input_tokens", inputTokens).
		Int("output_tokens", outputTokens).
		Int64("duration_ms", durationMs).
		Msg("Gemini completion succeeded")

	return &models.LLMResponse{
		Content:         text.String(),
		InputTokens:     inputTokens,
		OutputTokens:    outputTokens,
		CacheReadTokens: cachedTokens,
		DurationMs:      durationMs,
		Provider:        "google",
		Model:           s.model,
	}, nil
}

// generateWithRetry calls GenerateContent, backing off and retrying on
// quota errors. Other errors return immediately.
func (s *GeminiService) generateWithRetry(
	ctx context.Context,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
	fileName string,
) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= s.retry.maxRetries; attempt++ {
		resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRateLimitError(err) || attempt == s.retry.maxRetries {
			return nil, err
		}

		wait := s.retry.backoff(attempt, extractRetryDelay(err))
		s.logger.Warn().
			Str("file", fileName).
			Int("attempt", attempt+1).
			Dur("backoff", wait).
			Msg("Gemini rate limited, backing off")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

// HealthCheck verifies the Gemini provider is operational.
//
// Parameters:
//   - ctx: Context for cancellation control
//
// Returns:
//   - nil if service is healthy (operational)
//   - error with details if service is unhealthy
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := s.Complete(healthCheckCtx, interfaces.CompletionRequest{
		UserContent: "ping",
	})
	if err != nil {
		return fmt.Errorf("Gemini health check failed: %w", err)
	}
	if len(strings.TrimSpace(resp.Content)) == 0 {
		return fmt.Errorf("Gemini probe returned empty response")
	}

	s.logger.Debug().
		Str("model", s.model).
		Msg("Gemini provider health check passed")

	return nil
}

// Close releases resources and performs cleanup operations.
func (s *GeminiService) Close() error {
	s.logger.Debug().Msg("Closing Gemini provider")
	// genai.Client doesn't require explicit cleanup
	s.client = nil
	return nil
}
