package versioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/mendel/internal/models"
)

func sdsResult(lang string, inventories []string) *models.ExtractionResult {
	return &models.ExtractionResult{
		DocumentInfo: models.DocumentInfo{
			DocumentType: models.DocTypeSDS,
			Language:     lang,
		},
		Safety: models.SafetyData{
			GlobalInventories: inventories,
		},
	}
}

func TestResolveRegionGlobalDocTypes(t *testing.T) {
	for _, docType := range []string{models.DocTypeTDS, models.DocTypeCoA, models.DocTypeBrochure, models.DocTypeRPI} {
		result := &models.ExtractionResult{
			DocumentInfo: models.DocumentInfo{DocumentType: docType, Language: "ja"},
		}
		assert.Equal(t, "GLOBAL", ResolveRegion(result), docType)
	}
}

func TestResolveRegionSDSByLanguage(t *testing.T) {
	tests := []struct {
		lang     string
		expected string
	}{
		{"en", "EU"},
		{"de", "EU"},
		{"fr", "EU"},
		{"ja", "JP"},
		{"zh", "CN"},
		{"ko", "KR"},
		{"", "EU"},      // defaults to en
		{"de-DE", "EU"}, // locale suffix stripped
		{"ru", "GLOBAL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ResolveRegion(sdsResult(tt.lang, nil)), "lang=%q", tt.lang)
	}
}

func TestResolveRegionSDSInventoryOverride(t *testing.T) {
	// TSCA without REACH marks a US version
	assert.Equal(t, "US", ResolveRegion(sdsResult("en", []string{"TSCA", "DSL"})))

	// TSCA together with REACH stays language-based
	assert.Equal(t, "EU", ResolveRegion(sdsResult("en", []string{"TSCA", "REACH"})))

	// Override also applies over non-EU languages
	assert.Equal(t, "US", ResolveRegion(sdsResult("ja", []string{"TSCA"})))
}

func TestResolveRegionUnknownDocType(t *testing.T) {
	result := &models.ExtractionResult{
		DocumentInfo: models.DocumentInfo{DocumentType: models.DocTypeUnknown, Language: "ja"},
	}
	assert.Equal(t, "GLOBAL", ResolveRegion(result))
}
