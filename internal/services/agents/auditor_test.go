package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/models"
)

func newTestAuditor() *Auditor {
	return &Auditor{logger: arbor.NewLogger()}
}

func TestShouldAuditSkipsEmptyExtraction(t *testing.T) {
	a := newTestAuditor()
	ok, reasons := a.ShouldAudit(&models.PartialExtraction{ExtractionResult: map[string]any{}}, models.DocTypeSDS)
	assert.False(t, ok)
	assert.Empty(t, reasons)
}

func TestShouldAuditLowConfidenceFields(t *testing.T) {
	a := newTestAuditor()
	partial := &models.PartialExtraction{
		ExtractionResult: map[string]any{
			"physical": map[string]any{
				"density":     map[string]any{"value": "1.1", "confidence": "low"},
				"flash_point": map[string]any{"value": ">100", "confidence": "low"},
			},
			"identity": map[string]any{
				"grade": map[string]any{"value": "Technical", "confidence": "low"},
			},
		},
	}

	ok, reasons := a.ShouldAudit(partial, models.DocTypeTDS)
	assert.True(t, ok)
	assert.Contains(t, reasons, "3 low-confidence fields")
}

func TestShouldAuditMissingCriticalFields(t *testing.T) {
	a := newTestAuditor()
	partial := &models.PartialExtraction{
		ExtractionResult: map[string]any{"identity": map[string]any{"product_name": "X"}},
		MissingFields:    []string{"un_number", "cas_numbers", "shelf_life"},
	}

	ok, reasons := a.ShouldAudit(partial, models.DocTypeSDS)
	assert.True(t, ok)
	assert.Contains(t, reasons, "missing critical fields: cas_numbers, un_number")

	// Same missing fields are not critical for a TDS
	ok, _ = a.ShouldAudit(partial, models.DocTypeTDS)
	assert.False(t, ok)
}

func TestShouldAuditWarningCount(t *testing.T) {
	a := newTestAuditor()
	partial := &models.PartialExtraction{
		ExtractionResult: map[string]any{"identity": map[string]any{}},
		Warnings:         []string{"w1", "w2", "w3"},
	}

	ok, reasons := a.ShouldAudit(partial, models.DocTypeTDS)
	assert.True(t, ok)
	assert.Contains(t, reasons, "3 extraction warnings")
}

func TestShouldAuditSuspiciousCAS(t *testing.T) {
	a := newTestAuditor()
	partial := &models.PartialExtraction{
		ExtractionResult: map[string]any{
			"chemical": map[string]any{
				"cas_numbers": map[string]any{"value": "63148-62-9, not-a-cas"},
			},
		},
	}

	ok, reasons := a.ShouldAudit(partial, models.DocTypeSDS)
	assert.True(t, ok)
	assert.Contains(t, reasons, "suspicious CAS format: 'not-a-cas'")
}

func TestShouldAuditSuspiciousUNAndGHS(t *testing.T) {
	a := newTestAuditor()
	partial := &models.PartialExtraction{
		ExtractionResult: map[string]any{
			"safety": map[string]any{
				"un_number":      map[string]any{"value": "Class 3"},
				"ghs_statements": []any{"H226", "Flammable liquid"},
			},
		},
	}

	ok, reasons := a.ShouldAudit(partial, models.DocTypeSDS)
	assert.True(t, ok)
	assert.Contains(t, reasons, "suspicious UN number: 'CLASS 3'")
	assert.Contains(t, reasons, "suspicious GHS format: 'Flammable liquid'")
}

func TestShouldAuditValidFormatsPass(t *testing.T) {
	a := newTestAuditor()
	partial := &models.PartialExtraction{
		ExtractionResult: map[string]any{
			"chemical": map[string]any{
				"cas_numbers": map[string]any{"value": "63148-62-9, 7631-86-9"},
			},
			"safety": map[string]any{
				"un_number":      map[string]any{"value": "UN 1993"},
				"ghs_statements": []any{"H226", "P210"},
			},
		},
	}

	ok, reasons := a.ShouldAudit(partial, models.DocTypeSDS)
	assert.False(t, ok, "reasons: %v", reasons)
}

func TestApplyCorrectionsFactField(t *testing.T) {
	a := newTestAuditor()
	partial := &models.PartialExtraction{
		ExtractionResult: map[string]any{
			"physical": map[string]any{
				"density": map[string]any{"value": "11.0", "confidence": "high"},
			},
		},
	}
	corrected := "1.10"
	result := &models.AuditResult{
		Corrections: []models.AuditCorrection{
			{FieldName: "physical.density", CorrectedValue: &corrected, Reason: "decimal misread"},
		},
	}

	updated := a.ApplyCorrections(partial, result)

	density := updated.ExtractionResult["physical"].(map[string]any)["density"].(map[string]any)
	assert.Equal(t, "1.10", density["value"])
	assert.Equal(t, "medium", density["confidence"])
	assert.Contains(t, updated.Warnings, "Audit: 1 corrections applied")
}

func TestApplyCorrectionsFindsSectionWithoutPrefix(t *testing.T) {
	a := newTestAuditor()
	partial := &models.PartialExtraction{
		ExtractionResult: map[string]any{
			"identity": map[string]any{"product_name": "ELASTOSIL E34"},
		},
	}
	corrected := "ELASTOSIL E43"
	result := &models.AuditResult{
		Corrections: []models.AuditCorrection{
			{FieldName: "product_name", CorrectedValue: &corrected, Reason: "typo"},
		},
	}

	updated := a.ApplyCorrections(partial, result)
	identity := updated.ExtractionResult["identity"].(map[string]any)
	assert.Equal(t, "ELASTOSIL E43", identity["product_name"])
}

func TestApplyCorrectionsNilValueBecomesWarning(t *testing.T) {
	a := newTestAuditor()
	partial := &models.PartialExtraction{
		ExtractionResult: map[string]any{
			"safety": map[string]any{
				"un_number": map[string]any{"value": "UN 9999"},
			},
		},
	}
	result := &models.AuditResult{
		Corrections: []models.AuditCorrection{
			{FieldName: "safety.un_number", CorrectedValue: nil, Reason: "not in source"},
		},
	}

	updated := a.ApplyCorrections(partial, result)

	// Value stays, warning flags it for review
	unNumber := updated.ExtractionResult["safety"].(map[string]any)["un_number"].(map[string]any)
	assert.Equal(t, "UN 9999", unNumber["value"])
	assert.Contains(t, updated.Warnings, "Audit: safety.un_number may be incorrect (reason: not in source)")
}

func TestApplyCorrectionsSkipsUnknownField(t *testing.T) {
	a := newTestAuditor()
	partial := &models.PartialExtraction{
		ExtractionResult: map[string]any{
			"identity": map[string]any{"product_name": "X"},
		},
	}
	corrected := "anything"
	result := &models.AuditResult{
		Corrections: []models.AuditCorrection{
			{FieldName: "physical.density", CorrectedValue: &corrected},
			{FieldName: "nonexistent_field", CorrectedValue: &corrected},
		},
	}

	updated := a.ApplyCorrections(partial, result)
	assert.Equal(t, "X", updated.ExtractionResult["identity"].(map[string]any)["product_name"])
	assert.Empty(t, updated.Warnings)
}

func TestParseAuditResponseUnwrapsFactCorrections(t *testing.T) {
	raw := map[string]any{
		"corrections": []any{
			map[string]any{
				"field_name":      "physical.density",
				"original_value":  map[string]any{"value": "11.0", "source_section": "Section 9"},
				"corrected_value": map[string]any{"value": "1.10"},
				"reason":          "decimal misread",
			},
		},
		"overall_confidence": 0.9,
		"pass_audit":         false,
		"flagged_issues":     []any{"density off by 10x"},
	}

	result := parseAuditResponse(raw)
	require.Len(t, result.Corrections, 1)
	assert.Equal(t, "11.0", *result.Corrections[0].OriginalValue)
	assert.Equal(t, "1.10", *result.Corrections[0].CorrectedValue)
	assert.Equal(t, 0.9, result.OverallConfidence)
	assert.False(t, result.PassAudit)
	assert.Equal(t, []string{"density off by 10x"}, result.FlaggedIssues)
}
