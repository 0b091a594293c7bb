// -----------------------------------------------------------------------
// Auditor Agent - Conditional quality audit of extraction results
// -----------------------------------------------------------------------

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
	"github.com/ternarybob/mendel/internal/services/llm"
)

// CriticalFieldsByDocType lists the fields whose absence from a given
// document type triggers an audit.
var CriticalFieldsByDocType = map[string]map[string]bool{
	models.DocTypeSDS: {"cas_numbers": true, "ghs_statements": true, "un_number": true, "flash_point": true},
	models.DocTypeRPI: {"cas_numbers": true, "global_inventories": true, "certifications": true},
	models.DocTypeTDS: {"density": true, "grade": true, "physical_form": true},
	models.DocTypeCoA: {"cas_numbers": true, "purity": true},
}

// Max source markdown length sent to the auditor (to control token cost)
const maxAuditSourceChars = 8000

var (
	casFormat = regexp.MustCompile(`^\d{2,7}-\d{2}-\d$`)
	unFormat  = regexp.MustCompile(`^(UN\s?)?\d{4}$`)
	ghsFormat = regexp.MustCompile(`^[HPE]\d{3}`)
)

// Auditor cross-checks extracted data against the source document to
// catch extraction errors and hallucinated values. Audits run
// conditionally; most documents skip this step.
type Auditor struct {
	provider     interfaces.LLMProvider
	costs        interfaces.CostService
	logger       arbor.ILogger
	systemPrompt string
}

// Compile-time interface assertion
var _ interfaces.AuditorService = (*Auditor)(nil)

// NewAuditor creates the auditor agent.
func NewAuditor(provider interfaces.LLMProvider, prompts *llm.PromptRegistry, costs interfaces.CostService, logger arbor.ILogger) (*Auditor, error) {
	systemPrompt, err := prompts.Load("auditor.txt")
	if err != nil {
		return nil, err
	}

	return &Auditor{
		provider:     provider,
		costs:        costs,
		logger:       logger,
		systemPrompt: systemPrompt,
	}, nil
}

// ShouldAudit determines whether a partial extraction meets any audit
// trigger:
//
//   - 3 or more low-confidence fact fields
//   - critical fields missing for the document type
//   - 3 or more extraction warnings
//   - hallucination indicators (malformed CAS, UN or GHS values)
func (a *Auditor) ShouldAudit(partial *models.PartialExtraction, docType string) (bool, []string) {
	var reasons []string

	// Skip if extraction failed entirely
	if len(partial.ExtractionResult) == 0 {
		return false, nil
	}

	if lowConf := countLowConfidence(partial.ExtractionResult); lowConf >= 3 {
		reasons = append(reasons, fmt.Sprintf("%d low-confidence fields", lowConf))
	}

	critical := CriticalFieldsByDocType[docType]
	var missingCritical []string
	for _, field := range partial.MissingFields {
		if critical[field] {
			missingCritical = append(missingCritical, field)
		}
	}
	if len(missingCritical) > 0 {
		sort.Strings(missingCritical)
		reasons = append(reasons, "missing critical fields: "+strings.Join(missingCritical, ", "))
	}

	if len(partial.Warnings) >= 3 {
		reasons = append(reasons, fmt.Sprintf("%d extraction warnings", len(partial.Warnings)))
	}

	reasons = append(reasons, hallucinationFlags(partial.ExtractionResult)...)

	return len(reasons) > 0, reasons
}

// countLowConfidence counts fact fields with confidence "low" across
// the data sections.
func countLowConfidence(extraction map[string]any) int {
	count := 0
	for _, sectionKey := range []string{"identity", "chemical", "physical", "application", "safety", "compliance"} {
		section, ok := extraction[sectionKey].(map[string]any)
		if !ok {
			continue
		}
		for _, fieldVal := range section {
			if fact, ok := fieldVal.(map[string]any); ok {
				if conf, _ := fact["confidence"].(string); conf == models.ConfidenceLow {
					count++
				}
			}
		}
	}
	return count
}

// hallucinationFlags checks extracted values against known formats.
func hallucinationFlags(extraction map[string]any) []string {
	var flags []string

	// CAS numbers follow the XXXXX-XX-X pattern
	if chemical, ok := extraction["chemical"].(map[string]any); ok {
		if cas, ok := chemical["cas_numbers"].(map[string]any); ok {
			if value := cas["value"]; value != nil {
				for _, part := range strings.Split(fmt.Sprintf("%v", value), ",") {
					part = strings.TrimSpace(part)
					if part != "" && !casFormat.MatchString(part) {
						flags = append(flags, fmt.Sprintf("suspicious CAS format: '%s'", part))
					}
				}
			}
		}
	}

	safety, _ := extraction["safety"].(map[string]any)
	if safety != nil {
		// UN numbers are four digits with an optional UN prefix
		if un, ok := safety["un_number"].(map[string]any); ok {
			if value := un["value"]; value != nil {
				unVal := strings.ToUpper(strings.TrimSpace(fmt.Sprintf("%v", value)))
				if !unFormat.MatchString(unVal) {
					flags = append(flags, fmt.Sprintf("suspicious UN number: '%s'", unVal))
				}
			}
		}

		// GHS statements start with H, P or EUH codes
		if ghs, ok := safety["ghs_statements"].([]any); ok {
			checked := 0
			for _, stmt := range ghs {
				if checked >= 5 {
					break
				}
				checked++
				s := strings.TrimSpace(fmt.Sprintf("%v", stmt))
				if s != "" && !ghsFormat.MatchString(s) {
					flags = append(flags, fmt.Sprintf("suspicious GHS format: '%s'", s))
					break // One is enough to trigger
				}
			}
		}
	}

	return flags
}

// Audit cross-checks an extraction result against its source document.
// On any failure a passing AuditResult with a flagged issue is returned
// so the pipeline is never blocked.
func (a *Auditor) Audit(ctx context.Context, markdown string, partial *models.PartialExtraction, docType, fileName string) *models.AuditResult {
	// Truncate source to control costs
	sourceText := markdown
	if len(markdown) > maxAuditSourceChars {
		sourceText = markdown[:maxAuditSourceChars] +
			fmt.Sprintf("\n\n[... truncated, %d total chars ...]", len(markdown))
	}

	extractionJSON, err := json.MarshalIndent(partial.ExtractionResult, "", "  ")
	if err != nil {
		return a.auditError(fileName, docType, err)
	}

	userContent := fmt.Sprintf(
		"## Document Type: %s\n## File: %s\n\n## Extracted Data\n```json\n%s\n```\n\n"+
			"## Source Document\n---\n%s\n---\n\n"+
			"Cross-check the extracted data against the source document. "+
			"Report any errors, mismatches, or hallucinated values.",
		docType, fileName, string(extractionJSON), sourceText,
	)

	resp, err := a.provider.Complete(ctx, interfaces.CompletionRequest{
		SystemPrompt: a.systemPrompt,
		UserContent:  userContent,
		ResponseJSON: true,
		FileName:     fileName,
		DocType:      docType,
	})
	if err != nil {
		return a.auditError(fileName, docType, err)
	}

	if a.costs != nil {
		a.costs.Record(resp.Provider, resp.Model, resp.InputTokens, resp.OutputTokens, interfaces.RecordOptions{
			CacheCreationTokens: resp.CacheCreationTokens,
			CacheReadTokens:     resp.CacheReadTokens,
			FileName:            fileName,
			DocType:             docType,
			DurationMs:          resp.DurationMs,
		})
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(StripCodeFences(resp.Content)), &raw); err != nil {
		return a.auditError(fileName, docType, err)
	}

	result := parseAuditResponse(raw)

	a.logger.Info().
		Str("file", fileName).
		Str("doc_type", docType).
		Int("corrections", len(result.Corrections)).
		Float64("confidence", result.OverallConfidence).
		Bool("pass_audit", result.PassAudit).
		Int("flagged", len(result.FlaggedIssues)).
		Msg("Auditor: audit complete")

	return result
}

func (a *Auditor) auditError(fileName, docType string, err error) *models.AuditResult {
	a.logger.Error().
		Err(err).
		Str("file", fileName).
		Str("doc_type", docType).
		Msg("Auditor: audit failed")

	// Pass on failure, the audit must never block the pipeline
	return &models.AuditResult{
		Corrections:       []models.AuditCorrection{},
		OverallConfidence: 0.5,
		FlaggedIssues:     []string{fmt.Sprintf("Audit error: %v", err)},
		PassAudit:         true,
	}
}

func parseAuditResponse(raw map[string]any) *models.AuditResult {
	var corrections []models.AuditCorrection
	if list, ok := raw["corrections"].([]any); ok {
		for _, item := range list {
			c, ok := item.(map[string]any)
			if !ok {
				continue
			}

			fieldName, _ := c["field_name"].(string)
			if fieldName == "" {
				fieldName = "unknown"
			}
			reason, _ := c["reason"].(string)

			correction := models.AuditCorrection{
				FieldName:      fieldName,
				OriginalValue:  correctionValue(c["original_value"]),
				CorrectedValue: correctionValue(c["corrected_value"]),
				Reason:         reason,
			}
			if quote, ok := c["source_quote"].(string); ok {
				correction.SourceQuote = &quote
			}
			corrections = append(corrections, correction)
		}
	}

	confidence := 0.5
	if v, ok := raw["overall_confidence"].(float64); ok {
		confidence = v
	}

	passAudit := true
	if v, ok := raw["pass_audit"].(bool); ok {
		passAudit = v
	}

	return &models.AuditResult{
		Corrections:       corrections,
		OverallConfidence: confidence,
		FlaggedIssues:     stringSlice(raw["flagged_issues"]),
		PassAudit:         passAudit,
	}
}

// correctionValue normalizes a correction value to a plain string. The
// LLM may return full fact dicts instead of plain strings.
func correctionValue(v any) *string {
	if v == nil {
		return nil
	}
	var str string
	if m, ok := v.(map[string]any); ok {
		if inner, has := m["value"]; has && inner != nil {
			str = fmt.Sprintf("%v", inner)
		} else {
			str = fmt.Sprintf("%v", m)
		}
	} else {
		str = fmt.Sprintf("%v", v)
	}
	return &str
}

// ApplyCorrections applies audit corrections to a partial extraction.
// Corrections are only applied when the field exists in the extraction
// and the corrected value is non-null; suggested removals become
// warnings for human review instead.
func (a *Auditor) ApplyCorrections(partial *models.PartialExtraction, auditResult *models.AuditResult) *models.PartialExtraction {
	if auditResult == nil || len(auditResult.Corrections) == 0 {
		return partial
	}

	extraction := partial.ExtractionResult
	applied := 0

	for _, correction := range auditResult.Corrections {
		sectionKey, fieldKey, found := strings.Cut(correction.FieldName, ".")
		if !found {
			fieldKey = correction.FieldName
			sectionKey = findSectionForField(extraction, fieldKey)
			if sectionKey == "" {
				continue
			}
		}

		section, ok := extraction[sectionKey].(map[string]any)
		if !ok {
			continue
		}
		currentVal, exists := section[fieldKey]
		if !exists {
			continue
		}

		if correction.CorrectedValue == nil {
			// Don't auto-remove values, flag for human review instead
			partial.Warnings = append(partial.Warnings, fmt.Sprintf(
				"Audit: %s may be incorrect (reason: %s)",
				correction.FieldName, correction.Reason,
			))
			continue
		}

		if fact, ok := currentVal.(map[string]any); ok {
			if _, has := fact["value"]; has {
				// Fact field, update the value and downgrade confidence
				fact["value"] = *correction.CorrectedValue
				fact["confidence"] = models.ConfidenceMedium
				applied++
			}
		} else if _, ok := currentVal.(string); ok {
			section[fieldKey] = *correction.CorrectedValue
			applied++
		}
	}

	if applied > 0 {
		partial.Warnings = append(partial.Warnings, fmt.Sprintf("Audit: %d corrections applied", applied))
		a.logger.Info().
			Str("file", partial.SourceFile).
			Int("applied", applied).
			Int("total", len(auditResult.Corrections)).
			Msg("Auditor: corrections applied")
	}

	return partial
}

func findSectionForField(extraction map[string]any, fieldKey string) string {
	for _, sectionKey := range []string{"identity", "chemical", "physical", "application", "safety", "compliance", "document_info"} {
		if section, ok := extraction[sectionKey].(map[string]any); ok {
			if _, exists := section[fieldKey]; exists {
				return sectionKey
			}
		}
	}
	return ""
}
