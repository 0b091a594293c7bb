package pdf

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
)

// HeuristicClassifier classifies documents with the regex heuristics
// instead of an LLM call. Batch extraction uses it to keep per-PDF cost
// down; the agent pipeline uses the LLM classifier.
type HeuristicClassifier struct {
	logger arbor.ILogger
}

var _ interfaces.ClassifierService = (*HeuristicClassifier)(nil)

// NewHeuristicClassifier creates a regex-based classifier.
func NewHeuristicClassifier(logger arbor.ILogger) *HeuristicClassifier {
	return &HeuristicClassifier{logger: logger}
}

// Classify detects document type and brand from the markdown content.
func (c *HeuristicClassifier) Classify(ctx context.Context, markdown, fileName string) *models.ClassificationResult {
	docType := DetectDocumentType(markdown)
	brand := DetectBrand(markdown)

	confidence := 0.8
	reasoning := "matched document type pattern"
	if docType == models.DocTypeUnknown {
		confidence = 0.0
		reasoning = "no document type pattern matched"
	}

	result := &models.ClassificationResult{
		DocType:    docType,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
	if brand != "" {
		result.Brand = &brand
	}

	c.logger.Debug().
		Str("file", fileName).
		Str("doc_type", docType).
		Str("brand", brand).
		Msg("Heuristic classification")

	return result
}
