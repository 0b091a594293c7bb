package pdf

import (
	"regexp"
	"strings"

	"github.com/ternarybob/mendel/internal/models"
)

// Regex-based document type detection. Kept as the offline fallback for
// the LLM classifier and for parse-time metadata; patterns are checked
// in order, first match wins.
var docTypePatterns = []struct {
	docType  string
	patterns []*regexp.Regexp
}{
	{
		docType: models.DocTypeSDS,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)safety\s+data\s+sheet`),
			regexp.MustCompile(`(?i)sicherheitsdatenblatt`),
			regexp.MustCompile(`(?i)SECTION\s+1[\s:.]+IDENTIFICATION`),
			regexp.MustCompile(`(?i)SECTION\s+1[\s:.]+Identification\s+of\s+the\s+substance`),
		},
	},
	{
		docType: models.DocTypeTDS,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)technical\s+data\s+sheet`),
			regexp.MustCompile(`(?i)technisches\s+datenblatt`),
			regexp.MustCompile(`(?i)typical\s+properties`),
			regexp.MustCompile(`(?i)specification\s+data`),
			regexp.MustCompile(`(?i)product\s+data\s+sheet`),
		},
	},
	{
		docType: models.DocTypeRPI,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)raw\s+product\s+information`),
			regexp.MustCompile(`(?i)global\s+chemical\s+inventor`),
			regexp.MustCompile(`(?i)regulatory\s+product\s+information`),
		},
	},
	{
		docType: models.DocTypeCoA,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)certificate\s+of\s+analysis`),
			regexp.MustCompile(`(?i)analysenzertifikat`),
			regexp.MustCompile(`(?i)batch[\s-]+no`),
			regexp.MustCompile(`(?i)lot[\s-]+no`),
		},
	},
}

// knownBrands in detection order; WACKER last as the generic fallback.
var knownBrands = []string{
	"ELASTOSIL",
	"FERMOPURE",
	"GENIOSIL",
	"BELSIL",
	"POWERSIL",
	"VINNAPAS",
	"WACKER",
}

// DetectDocumentType classifies a document by scanning the first ~3000
// chars for keyword patterns. Documents that match nothing are treated
// as brochures when they carry real text, unknown otherwise.
func DetectDocumentType(text string) string {
	sample := text
	if len(sample) > 3000 {
		sample = sample[:3000]
	}
	for _, entry := range docTypePatterns {
		for _, pattern := range entry.patterns {
			if pattern.MatchString(sample) {
				return entry.docType
			}
		}
	}
	if len(text) > 200 {
		return models.DocTypeBrochure
	}
	return models.DocTypeUnknown
}

// DetectBrand returns the first known brand name found in the first
// ~5000 chars of text, or "" when none matches.
func DetectBrand(text string) string {
	sample := text
	if len(sample) > 5000 {
		sample = sample[:5000]
	}
	sample = strings.ToUpper(sample)
	for _, brand := range knownBrands {
		if strings.Contains(sample, brand) {
			return brand
		}
	}
	return ""
}
