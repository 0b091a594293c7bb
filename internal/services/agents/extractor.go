// -----------------------------------------------------------------------
// Extractor Agent - Doc-type-specific extraction with cascade fallback
// -----------------------------------------------------------------------

package agents

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
	"github.com/ternarybob/mendel/internal/services/llm"
	"golang.org/x/time/rate"
)

// JSON schema hint appended to all extractor prompts (shared across doc types)
const responseSchemaHint = `## JSON Schema (abbreviated)
{
  "document_info": {"document_type": "TDS|SDS|RPI|CoA|Brochure|unknown", "language": "en", "manufacturer": "...", "brand": "...", "revision_date": "...", "page_count": 0},
  "identity": {"product_name": "...", "product_line": "...", "wacker_sku": null, "material_numbers": [], "product_url": null, "grade": {"value": "...", "unit": null, "source_section": "...", "raw_string": "...", "confidence": "high|medium|low", "is_specification": false, "test_method": null}},
  "chemical": {"cas_numbers": {"value": "...", "unit": null, "source_section": "...", "raw_string": "...", "confidence": "high", "is_specification": true, "test_method": null}, "chemical_components": [], "chemical_synonyms": [], "purity": null},
  "physical": {"physical_form": null, "density": null, "flash_point": null, "temperature_range": null, "shelf_life": null, "cure_system": null},
  "application": {"main_application": null, "usage_restrictions": [], "packaging_options": []},
  "safety": {"ghs_statements": [], "un_number": null, "certifications": [], "global_inventories": [], "blocked_countries": [], "blocked_industries": []},
  "compliance": {"wiaw_status": null, "sales_advisory": null},
  "missing_attributes": ["attribute_name_1", "..."],
  "extraction_warnings": []
}

Each fact object requires: value, source_section, raw_string, confidence. Optional: unit, is_specification, test_method.`

// promptFiles maps document types to their extractor prompt templates.
// Unknown types fall back to the TDS prompt, the most generic one.
var promptFiles = map[string]string{
	models.DocTypeTDS:      "extractor_tds.txt",
	models.DocTypeSDS:      "extractor_sds.txt",
	models.DocTypeRPI:      "extractor_rpi.txt",
	models.DocTypeCoA:      "extractor_coa.txt",
	models.DocTypeBrochure: "extractor_brochure.txt",
}

// Extractor runs doc-type-specific extraction prompts against the
// primary LLM provider, cascading to the fallback provider when the
// primary result misses too many attributes. The better result (fewer
// missing attributes) wins.
type Extractor struct {
	primary   interfaces.LLMProvider
	fallback  interfaces.LLMProvider
	sanitizer *Sanitizer
	costs     interfaces.CostService
	logger    arbor.ILogger
	limiter   *rate.Limiter

	systemPrompts    map[string]string
	cascadeEnabled   bool
	cascadeThreshold int
}

// Compile-time interface assertion
var _ interfaces.ExtractorService = (*Extractor)(nil)

// NewExtractor creates the extractor agent pool.
//
// All five doc-type prompts are loaded eagerly so a missing template
// fails at startup rather than mid-batch. The fallback provider may be
// nil, which disables the cascade regardless of configuration.
//
// Parameters:
//   - cfg: Extraction configuration (cascade settings, request delay)
//   - primary: Primary LLM provider for all extractions
//   - fallback: Fallback provider for the cascade, may be nil
//   - prompts: Prompt template registry
//   - costs: Cost tracker, may be nil
//   - logger: Structured logger for service operations
//
// Returns:
//   - *Extractor: Initialized extractor ready for use
//   - error: nil on success, error when a prompt template is missing
func NewExtractor(
	cfg *common.Config,
	primary, fallback interfaces.LLMProvider,
	prompts *llm.PromptRegistry,
	costs interfaces.CostService,
	logger arbor.ILogger,
) (*Extractor, error) {
	systemPrompts := make(map[string]string, len(promptFiles))
	for docType, file := range promptFiles {
		base, err := prompts.Load(file)
		if err != nil {
			return nil, err
		}
		systemPrompts[docType] = base + "\n\n" + responseSchemaHint
	}

	// Space out LLM requests to stay under provider rate limits
	var limiter *rate.Limiter
	if delay := cfg.Pipeline.RequestDelayDuration(); delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	cascadeEnabled := cfg.Extraction.CascadeEnabled && fallback != nil

	logger.Info().
		Str("primary", fmt.Sprintf("%s/%s", primary.Provider(), primary.Model())).
		Str("fallback", fallbackLabel(cascadeEnabled, fallback)).
		Int("threshold", cfg.Extraction.CascadeThreshold).
		Msg("Extractor initialized")

	return &Extractor{
		primary:          primary,
		fallback:         fallback,
		sanitizer:        NewSanitizer(logger),
		costs:            costs,
		logger:           logger,
		limiter:          limiter,
		systemPrompts:    systemPrompts,
		cascadeEnabled:   cascadeEnabled,
		cascadeThreshold: cfg.Extraction.CascadeThreshold,
	}, nil
}

func fallbackLabel(enabled bool, fallback interfaces.LLMProvider) string {
	if !enabled || fallback == nil {
		return "disabled"
	}
	return fmt.Sprintf("%s/%s", fallback.Provider(), fallback.Model())
}

// Extract runs extraction with cascade fallback and cost tracking.
// Returns the best result (fewest missing attributes). Extraction never
// fails the pipeline: on error the partial carries an empty result with
// every attribute missing and the error as a warning.
func (e *Extractor) Extract(ctx context.Context, markdown, docType, fileName string) *models.PartialExtraction {
	systemPrompt := e.systemPrompts[docType]
	if systemPrompt == "" {
		systemPrompt = e.systemPrompts[models.DocTypeTDS]
	}

	primary, err := e.runExtraction(ctx, e.primary, systemPrompt, markdown, docType, fileName, false)
	if err != nil {
		e.logger.Warn().Err(err).Str("file", fileName).Msg("Primary extraction failed")
		return failedPartial(fileName, docType, err)
	}

	primaryMissing := len(primary.MissingFields)

	if e.cascadeEnabled && primaryMissing > e.cascadeThreshold {
		e.logger.Info().
			Str("file", fileName).
			Int("primary_missing", primaryMissing).
			Int("threshold", e.cascadeThreshold).
			Msg("Cascade triggered")

		fallback, err := e.runExtraction(ctx, e.fallback, systemPrompt, markdown, docType, fileName, true)
		if err != nil {
			e.logger.Warn().Err(err).Msg("Fallback failed, keeping primary")
			return primary
		}

		fallbackMissing := len(fallback.MissingFields)
		cascade := &models.CascadeInfo{
			Triggered:       true,
			PrimaryMissing:  primaryMissing,
			FallbackMissing: fallbackMissing,
		}

		if fallbackMissing < primaryMissing {
			e.logger.Info().
				Int("primary_missing", primaryMissing).
				Int("fallback_missing", fallbackMissing).
				Msg("Fallback improved result")
			cascade.Winner = "fallback"
			fallback.Cascade = cascade
			return fallback
		}

		e.logger.Info().
			Int("primary_missing", primaryMissing).
			Int("fallback_missing", fallbackMissing).
			Msg("Fallback did not improve, keeping primary")
		cascade.Winner = "primary"
		primary.Cascade = cascade
	}

	return primary
}

// runExtraction performs one extraction call against one provider.
func (e *Extractor) runExtraction(
	ctx context.Context,
	provider interfaces.LLMProvider,
	systemPrompt, markdown, docType, fileName string,
	cascadeTriggered bool,
) (*models.PartialExtraction, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	userContent := fmt.Sprintf(
		"Extract all chemical product data from this %s document.\n\n---\n\n%s",
		docType, markdown,
	)

	resp, err := provider.Complete(ctx, interfaces.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserContent:  userContent,
		ResponseJSON: true,
		FileName:     fileName,
		DocType:      docType,
	})
	if err != nil {
		return nil, err
	}

	if e.costs != nil {
		e.costs.Record(resp.Provider, resp.Model, resp.InputTokens, resp.OutputTokens, interfaces.RecordOptions{
			CacheCreationTokens: resp.CacheCreationTokens,
			CacheReadTokens:     resp.CacheReadTokens,
			FileName:            fileName,
			DocType:             docType,
			DurationMs:          resp.DurationMs,
			CascadeTriggered:    cascadeTriggered,
		})
	}

	sanitized, err := e.sanitizer.ParseResponse(resp.Content)
	if err != nil {
		return nil, err
	}
	if _, err := models.ValidateExtractionMap(sanitized); err != nil {
		return nil, err
	}

	missing := stringSlice(sanitized["missing_attributes"])
	warnings := stringSlice(sanitized["extraction_warnings"])

	missingSet := make(map[string]bool, len(missing))
	for _, name := range missing {
		missingSet[name] = true
	}
	extracted := make([]string, 0, len(models.AllAttributeNames))
	for _, name := range models.AllAttributeNames {
		if !missingSet[name] {
			extracted = append(extracted, name)
		}
	}

	e.logger.Info().
		Str("file", fileName).
		Str("doc_type", docType).
		Str("provider", resp.Provider).
		Int("extracted_count", len(extracted)).
		Int("missing_count", len(missing)).
		Msg("Extraction complete")

	return &models.PartialExtraction{
		SourceFile:       fileName,
		DocType:          docType,
		ExtractionResult: sanitized,
		ExtractedFields:  extracted,
		MissingFields:    missing,
		Warnings:         warnings,
	}, nil
}

// failedPartial builds the empty-result partial used when extraction
// fails outright.
func failedPartial(fileName, docType string, err error) *models.PartialExtraction {
	missing := make([]string, len(models.AllAttributeNames))
	copy(missing, models.AllAttributeNames)

	return &models.PartialExtraction{
		SourceFile:       fileName,
		DocType:          docType,
		ExtractionResult: map[string]any{},
		ExtractedFields:  []string{},
		MissingFields:    missing,
		Warnings:         []string{fmt.Sprintf("Extraction error: %v", err)},
	}
}

// stringSlice converts a decoded JSON value into a string slice,
// tolerating nil and mixed-type items.
func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		} else if item != nil {
			out = append(out, fmt.Sprintf("%v", item))
		}
	}
	return out
}
