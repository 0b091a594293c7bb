package versioning

import (
	"strings"

	"github.com/ternarybob/mendel/internal/models"
)

// SDS language to default region mapping. Wacker Chemie HQ is in
// Germany, so European-language SDSs are EU versions by default.
var langToRegion = map[string]string{
	"en": "EU",
	"de": "EU",
	"fr": "EU",
	"es": "EU",
	"it": "EU",
	"pt": "EU",
	"nl": "EU",
	"pl": "EU",
	"ja": "JP",
	"zh": "CN",
	"ko": "KR",
}

// Document types that are not region-specific
var globalDocTypes = map[string]bool{
	models.DocTypeTDS:      true,
	models.DocTypeCoA:      true,
	models.DocTypeBrochure: true,
	models.DocTypeRPI:      true,
}

// ResolveRegion determines the geographic region for a Golden Record:
//
//  1. TDS, CoA, Brochure, RPI are always GLOBAL
//  2. SDS derives the region from the document language, with an
//     inventory override: an SDS that references TSCA but not REACH is
//     a US version regardless of language
//  3. Anything else falls back to GLOBAL
func ResolveRegion(result *models.ExtractionResult) string {
	docType := result.DocumentInfo.DocumentType

	if globalDocTypes[docType] {
		return "GLOBAL"
	}

	if docType == models.DocTypeSDS {
		lang := strings.ToLower(result.DocumentInfo.Language)
		if lang == "" {
			lang = "en"
		}
		if len(lang) > 2 {
			lang = lang[:2]
		}

		region, ok := langToRegion[lang]
		if !ok {
			region = "GLOBAL"
		}

		if inventories := result.Safety.GlobalInventories; len(inventories) > 0 {
			invText := strings.ToUpper(strings.Join(inventories, " "))
			hasTSCA := strings.Contains(invText, "TSCA")
			hasREACH := strings.Contains(invText, "REACH")
			if hasTSCA && !hasREACH {
				region = "US"
			}
		}

		return region
	}

	return "GLOBAL"
}
