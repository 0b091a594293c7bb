package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/models"
)

func tdsPartial() models.PartialExtraction {
	return models.PartialExtraction{
		SourceFile: "/pdfs/e43/tds.pdf",
		DocType:    models.DocTypeTDS,
		ExtractionResult: map[string]any{
			"identity": map[string]any{
				"product_name": "ELASTOSIL E43",
			},
			"physical": map[string]any{
				"density": map[string]any{"value": "1.10", "source_section": "Typical Properties"},
			},
			"safety": map[string]any{
				"certifications": []any{"ISO 9001"},
			},
			"chemical": map[string]any{
				"cas_numbers": nil,
			},
		},
		MissingFields: []string{"un_number", "ghs_statements", "purity"},
		Warnings:      []string{"table on page 3 unreadable"},
	}
}

func sdsPartial() models.PartialExtraction {
	return models.PartialExtraction{
		SourceFile: "/pdfs/e43/sds.pdf",
		DocType:    models.DocTypeSDS,
		ExtractionResult: map[string]any{
			"identity": map[string]any{
				"product_name": "Elastosil(R) E43",
			},
			"physical": map[string]any{
				"density": map[string]any{"value": "1.09", "source_section": "Section 9"},
			},
			"safety": map[string]any{
				"certifications": []any{"ISO 9001", "ISO 14001"},
				"un_number":      map[string]any{"value": "UN 1993", "source_section": "Section 14"},
			},
			"chemical": map[string]any{
				"cas_numbers": map[string]any{"value": "63148-62-9", "source_section": "Section 3"},
			},
		},
		MissingFields: []string{"purity", "grade"},
	}
}

func TestMergeEmptyGroupFails(t *testing.T) {
	m := NewMerger(arbor.NewLogger())
	_, err := m.Merge(&models.ProductGroup{ProductName: "E43"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No partial extractions for E43")
}

func TestMergeSinglePartialReturnsAsIs(t *testing.T) {
	m := NewMerger(arbor.NewLogger())
	partial := tdsPartial()

	merged, err := m.Merge(&models.ProductGroup{
		ProductName:        "E43",
		PartialExtractions: []models.PartialExtraction{partial},
	})
	require.NoError(t, err)
	assert.Equal(t, partial.ExtractionResult, merged)
}

func TestMergeTruthHierarchy(t *testing.T) {
	m := NewMerger(arbor.NewLogger())

	// SDS listed first, TDS must still win on priority
	merged, err := m.Merge(&models.ProductGroup{
		ProductName:        "E43",
		PartialExtractions: []models.PartialExtraction{sdsPartial(), tdsPartial()},
	})
	require.NoError(t, err)

	// TDS density kept over the SDS value
	physical := merged["physical"].(map[string]any)
	density := physical["density"].(map[string]any)
	assert.Equal(t, "1.10", density["value"])

	// SDS fills fields the TDS lacks
	safety := merged["safety"].(map[string]any)
	unNumber := safety["un_number"].(map[string]any)
	assert.Equal(t, "UN 1993", unNumber["value"])

	chemical := merged["chemical"].(map[string]any)
	cas := chemical["cas_numbers"].(map[string]any)
	assert.Equal(t, "63148-62-9", cas["value"])
}

func TestMergeUnionFieldsDeduplicate(t *testing.T) {
	m := NewMerger(arbor.NewLogger())

	merged, err := m.Merge(&models.ProductGroup{
		ProductName:        "E43",
		PartialExtractions: []models.PartialExtraction{tdsPartial(), sdsPartial()},
	})
	require.NoError(t, err)

	safety := merged["safety"].(map[string]any)
	certs := safety["certifications"].([]any)
	assert.Equal(t, []any{"ISO 9001", "ISO 14001"}, certs)
}

func TestMergeConflictWarning(t *testing.T) {
	m := NewMerger(arbor.NewLogger())

	merged, err := m.Merge(&models.ProductGroup{
		ProductName:        "E43",
		PartialExtractions: []models.PartialExtraction{tdsPartial(), sdsPartial()},
	})
	require.NoError(t, err)

	warnings := merged["extraction_warnings"].([]any)
	assert.Contains(t, warnings,
		"Conflict in physical.density: keeping '1.10' (higher priority), discarding '1.09' from SDS")
	// Source warnings carry through
	assert.Contains(t, warnings, "table on page 3 unreadable")
}

func TestMergeMissingIsIntersection(t *testing.T) {
	m := NewMerger(arbor.NewLogger())

	merged, err := m.Merge(&models.ProductGroup{
		ProductName:        "E43",
		PartialExtractions: []models.PartialExtraction{tdsPartial(), sdsPartial()},
	})
	require.NoError(t, err)

	// Only purity is missing from both sources
	assert.Equal(t, []any{"purity"}, merged["missing_attributes"])
}

func TestMergeDoesNotMutateBasePartial(t *testing.T) {
	m := NewMerger(arbor.NewLogger())
	base := tdsPartial()

	_, err := m.Merge(&models.ProductGroup{
		ProductName:        "E43",
		PartialExtractions: []models.PartialExtraction{base, sdsPartial()},
	})
	require.NoError(t, err)

	// The base partial's own result must stay untouched
	safety := base.ExtractionResult["safety"].(map[string]any)
	assert.Equal(t, []any{"ISO 9001"}, safety["certifications"])
	_, hasMissing := base.ExtractionResult["missing_attributes"]
	assert.False(t, hasMissing)
}
