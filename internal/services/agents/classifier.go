// -----------------------------------------------------------------------
// Classifier Agent - Document type and brand classification via LLM
// -----------------------------------------------------------------------

package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
	"github.com/ternarybob/mendel/internal/services/llm"
)

// Max chars from document sent to the classifier (~first 2 pages)
const maxClassifierChars = 4000

// Classifier determines document type and brand from the first pages
// of a parsed document plus the filename. LLM classification is far
// more reliable than keyword detection for technical data sheets that
// never spell out "Technical Data Sheet" in the header; the regex
// heuristics remain only as the parse-time fallback.
type Classifier struct {
	provider     interfaces.LLMProvider
	costs        interfaces.CostService
	logger       arbor.ILogger
	systemPrompt string
}

// Compile-time interface assertion
var _ interfaces.ClassifierService = (*Classifier)(nil)

// NewClassifier creates a classifier agent. The system prompt is loaded
// from the prompt registry at construction.
func NewClassifier(provider interfaces.LLMProvider, prompts *llm.PromptRegistry, costs interfaces.CostService, logger arbor.ILogger) (*Classifier, error) {
	systemPrompt, err := prompts.Load("classifier.txt")
	if err != nil {
		return nil, err
	}

	return &Classifier{
		provider:     provider,
		costs:        costs,
		logger:       logger,
		systemPrompt: systemPrompt,
	}, nil
}

// Classify determines the document type and brand for one document.
// Classification never fails the pipeline: on any error the result is
// doc_type "unknown" with confidence 0 and the error in the reasoning.
func (c *Classifier) Classify(ctx context.Context, markdown, fileName string) *models.ClassificationResult {
	sample := markdown
	if len(sample) > maxClassifierChars {
		sample = sample[:maxClassifierChars]
	}

	userContent := fmt.Sprintf(
		"Filename: %s\n\n--- Document Content (first 2 pages) ---\n\n%s",
		fileName, sample,
	)

	resp, err := c.provider.Complete(ctx, interfaces.CompletionRequest{
		SystemPrompt: c.systemPrompt,
		UserContent:  userContent,
		ResponseJSON: true,
		FileName:     fileName,
		DocType:      "classification",
	})
	if err != nil {
		return c.classificationError(fileName, err)
	}

	c.recordCost(resp, fileName)

	var result models.ClassificationResult
	if err := json.Unmarshal([]byte(StripCodeFences(resp.Content)), &result); err != nil {
		return c.classificationError(fileName, err)
	}
	if result.DocType == "" {
		result.DocType = models.DocTypeUnknown
	}

	reasoning := result.Reasoning
	if len(reasoning) > 80 {
		reasoning = reasoning[:80]
	}
	c.logger.Info().
		Str("file", fileName).
		Str("doc_type", result.DocType).
		Float64("confidence", result.Confidence).
		Str("reasoning", reasoning).
		Msg("Document classified")

	return &result
}

func (c *Classifier) classificationError(fileName string, err error) *models.ClassificationResult {
	c.logger.Error().
		Err(err).
		Str("file", fileName).
		Msg("Classification failed, falling back to 'unknown'")

	return &models.ClassificationResult{
		DocType:    models.DocTypeUnknown,
		Confidence: 0.0,
		Reasoning:  fmt.Sprintf("Classification error: %v", err),
	}
}

func (c *Classifier) recordCost(resp *models.LLMResponse, fileName string) {
	if c.costs == nil {
		return
	}
	c.costs.Record(resp.Provider, resp.Model, resp.InputTokens, resp.OutputTokens, interfaces.RecordOptions{
		CacheCreationTokens: resp.CacheCreationTokens,
		CacheReadTokens:     resp.CacheReadTokens,
		FileName:            fileName,
		DocType:             "classification",
		DurationMs:          resp.DurationMs,
	})
}
