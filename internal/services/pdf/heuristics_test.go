package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/mendel/internal/models"
)

func TestDetectDocumentType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "safety data sheet",
			text:     "SAFETY DATA SHEET\naccording to Regulation (EC) No. 1907/2006\nELASTOSIL E43",
			expected: models.DocTypeSDS,
		},
		{
			name:     "german sds",
			text:     "Sicherheitsdatenblatt gemäß Verordnung (EG) Nr. 1907/2006",
			expected: models.DocTypeSDS,
		},
		{
			name:     "sds section header",
			text:     "SECTION 1: Identification of the substance/mixture and of the company",
			expected: models.DocTypeSDS,
		},
		{
			name:     "technical data sheet",
			text:     "TECHNICAL DATA SHEET\nVINNAPAS 5010 N\nTypical Properties",
			expected: models.DocTypeTDS,
		},
		{
			name:     "typical properties only",
			text:     "Product overview\n\nTypical properties of the cured rubber",
			expected: models.DocTypeTDS,
		},
		{
			name:     "raw product information",
			text:     "Raw Product Information\nGlobal Chemical Inventories",
			expected: models.DocTypeRPI,
		},
		{
			name:     "certificate of analysis",
			text:     "Certificate of Analysis\nBatch no: 12345",
			expected: models.DocTypeCoA,
		},
		{
			name:     "long text without keywords is brochure",
			text:     strings.Repeat("marketing copy about silicone elastomers ", 20),
			expected: models.DocTypeBrochure,
		},
		{
			name:     "short text without keywords is unknown",
			text:     "scanned page",
			expected: models.DocTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDocumentType(tt.text))
		})
	}
}

func TestDetectDocumentTypeOnlyScansHead(t *testing.T) {
	// Keyword beyond the scan window must not classify the document
	padding := strings.Repeat("x", 3100)
	text := padding + " safety data sheet"
	assert.Equal(t, models.DocTypeBrochure, DetectDocumentType(text))
}

func TestDetectBrand(t *testing.T) {
	assert.Equal(t, "ELASTOSIL", DetectBrand("Product: Elastosil E43 transparent"))
	assert.Equal(t, "VINNAPAS", DetectBrand("vinnapas dispersion 5010 N"))
	assert.Equal(t, "WACKER", DetectBrand("Wacker Chemie AG, Munich"))
	assert.Equal(t, "", DetectBrand("no known brand here"))
}

func TestDetectBrandPrefersSpecificOverGeneric(t *testing.T) {
	// ELASTOSIL outranks the WACKER fallback when both appear
	text := "WACKER Chemie AG\nELASTOSIL E43"
	assert.Equal(t, "ELASTOSIL", DetectBrand(text))
}

func TestExtractTables(t *testing.T) {
	text := "Typical Properties\n" +
		"Property          Value       Unit\n" +
		"Density           1.10        g/cm3\n" +
		"Viscosity         300000      mPa.s\n" +
		"\n" +
		"Single line without columns"

	tables := extractTables(text)
	assert.Contains(t, tables, "| Property | Value | Unit |")
	assert.Contains(t, tables, "| Density | 1.10 | g/cm3 |")
	assert.Contains(t, tables, "|---|---|---|")
}

func TestExtractTablesIgnoresSingleAlignedLine(t *testing.T) {
	text := "Header    Value\nplain prose follows here\nmore prose"
	assert.Equal(t, "", extractTables(text))
}

func TestContentHashIsStable(t *testing.T) {
	a := contentHash([]byte("pdf bytes"))
	b := contentHash([]byte("pdf bytes"))
	c := contentHash([]byte("other bytes"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
