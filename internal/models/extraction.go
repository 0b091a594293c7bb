package models

import (
	"encoding/json"
	"fmt"
)

// Document type codes used throughout the pipeline.
const (
	DocTypeTDS      = "TDS"
	DocTypeSDS      = "SDS"
	DocTypeRPI      = "RPI"
	DocTypeCoA      = "CoA"
	DocTypeBrochure = "Brochure"
	DocTypeUnknown  = "unknown"
)

// DocTypePriority is the Truth Hierarchy: when two documents disagree,
// the value from the higher-ranked document type wins.
var DocTypePriority = map[string]int{
	DocTypeTDS:      5,
	DocTypeCoA:      4,
	DocTypeSDS:      3,
	DocTypeRPI:      2,
	DocTypeBrochure: 1,
	DocTypeUnknown:  0,
}

// Field-shape classification. The sanitizer uses these sets to repair
// malformed LLM output, and the merger uses them to pick a merge strategy
// per field.
var (
	// PlainStringFields hold a bare string, never a Fact.
	PlainStringFields = map[string]bool{
		"product_name": true, "product_line": true, "wacker_sku": true, "product_url": true,
		"language": true, "manufacturer": true, "brand": true, "revision_date": true,
		"main_application": true,
		"wiaw_status":      true, "sales_advisory": true,
	}

	// SingleFactFields hold exactly one Fact, never a list.
	SingleFactFields = map[string]bool{
		"grade": true, "purity": true, "physical_form": true, "density": true,
		"flash_point": true, "temperature_range": true, "shelf_life": true,
		"cure_system": true, "un_number": true,
	}

	// PlainStringListFields hold a list of bare strings.
	PlainStringListFields = map[string]bool{
		"material_numbers": true, "chemical_components": true, "chemical_synonyms": true,
		"usage_restrictions": true, "packaging_options": true,
		"ghs_statements": true, "certifications": true, "global_inventories": true,
		"blocked_countries": true, "blocked_industries": true,
		"missing_attributes": true, "extraction_warnings": true,
	}

	// UnionMergeFields are combined across all source documents rather than
	// overridden by the highest-priority one.
	UnionMergeFields = map[string]bool{
		"certifications":      true,
		"global_inventories":  true,
		"ghs_statements":      true,
		"blocked_countries":   true,
		"blocked_industries":  true,
		"chemical_synonyms":   true,
		"material_numbers":    true,
		"extraction_warnings": true,
	}
)

// DocTypeNameMap maps full document type names (as LLMs sometimes emit
// them) to the short codes used everywhere else.
var DocTypeNameMap = map[string]string{
	"technical data sheet":           DocTypeTDS,
	"safety data sheet":              DocTypeSDS,
	"raw product information":        DocTypeRPI,
	"regulatory product information": DocTypeRPI,
	"certificate of analysis":        DocTypeCoA,
	"brochure":                       DocTypeBrochure,
}

// AllAttributeNames lists the 33 canonical attributes of a record.
// An extractor reports every attribute it could not find by name.
var AllAttributeNames = []string{
	// identity
	"product_name", "product_line", "wacker_sku", "material_numbers",
	"product_url", "grade",
	// chemical
	"cas_numbers", "chemical_components", "chemical_synonyms", "purity",
	// physical
	"physical_form", "density", "flash_point", "temperature_range",
	"shelf_life", "cure_system",
	// application
	"main_application", "usage_restrictions", "packaging_options",
	// safety
	"ghs_statements", "un_number", "certifications", "global_inventories",
	"blocked_countries", "blocked_industries",
	// compliance
	"wiaw_status", "sales_advisory",
	// document info
	"document_type", "language", "manufacturer", "brand", "revision_date",
	"page_count",
}

// SectionNames are the seven top-level sections of an extraction result,
// in canonical order.
var SectionNames = []string{
	"document_info", "identity", "chemical", "physical",
	"application", "safety", "compliance",
}

// DocumentInfo describes the parsed document itself.
type DocumentInfo struct {
	DocumentType string  `json:"document_type"`
	Language     string  `json:"language"`
	Manufacturer *string `json:"manufacturer"`
	Brand        *string `json:"brand"`
	RevisionDate *string `json:"revision_date"`
	PageCount    int     `json:"page_count"`
}

// IdentityData groups product identity and classification attributes.
type IdentityData struct {
	ProductName     string   `json:"product_name"`
	ProductLine     *string  `json:"product_line"`
	WackerSKU       *string  `json:"wacker_sku"`
	MaterialNumbers []string `json:"material_numbers"`
	ProductURL      *string  `json:"product_url"`
	Grade           *Fact    `json:"grade"`
}

// ChemicalData groups chemical identity and composition.
type ChemicalData struct {
	CASNumbers         *Fact    `json:"cas_numbers"`
	ChemicalComponents []string `json:"chemical_components"`
	ChemicalSynonyms   []string `json:"chemical_synonyms"`
	Purity             *Fact    `json:"purity"`
}

// PhysicalData groups physical and technical specifications.
type PhysicalData struct {
	PhysicalForm     *Fact `json:"physical_form"`
	Density          *Fact `json:"density"`
	FlashPoint       *Fact `json:"flash_point"`
	TemperatureRange *Fact `json:"temperature_range"`
	ShelfLife        *Fact `json:"shelf_life"`
	CureSystem       *Fact `json:"cure_system"`
}

// ApplicationData groups application context and packaging.
type ApplicationData struct {
	MainApplication   *string  `json:"main_application"`
	UsageRestrictions []string `json:"usage_restrictions"`
	PackagingOptions  []string `json:"packaging_options"`
}

// SafetyData groups safety and regulatory attributes.
type SafetyData struct {
	GHSStatements     []string `json:"ghs_statements"`
	UNNumber          *Fact    `json:"un_number"`
	Certifications    []string `json:"certifications"`
	GlobalInventories []string `json:"global_inventories"`
	BlockedCountries  []string `json:"blocked_countries"`
	BlockedIndustries []string `json:"blocked_industries"`
}

// ComplianceData holds the derived compliance verdict.
// WIAWStatus is one of "GREEN LIGHT", "ATTENTION", "RED FLAG" or nil.
type ComplianceData struct {
	WIAWStatus    *string `json:"wiaw_status"`
	SalesAdvisory *string `json:"sales_advisory"`
}

// ExtractionResult is the complete 33-attribute record for one document
// (or, after merging, for one product).
type ExtractionResult struct {
	DocumentInfo       DocumentInfo    `json:"document_info"`
	Identity           IdentityData    `json:"identity"`
	Chemical           ChemicalData    `json:"chemical"`
	Physical           PhysicalData    `json:"physical"`
	Application        ApplicationData `json:"application"`
	Safety             SafetyData      `json:"safety"`
	Compliance         ComplianceData  `json:"compliance"`
	MissingAttributes  []string        `json:"missing_attributes"`
	ExtractionWarnings []string        `json:"extraction_warnings"`
}

// ValidateExtractionMap checks a sanitized extraction map against the
// ExtractionResult schema. Every section must be present as an object
// and the whole map must decode into the typed form, so a structurally
// broken LLM response (a section that is a string or number, a fact
// field holding the wrong shape) is rejected before it enters the
// pipeline. Returns the typed result for callers that need it.
func ValidateExtractionMap(m map[string]any) (*ExtractionResult, error) {
	for _, section := range SectionNames {
		val, ok := m[section]
		if !ok || val == nil {
			return nil, fmt.Errorf("schema validation failed: missing section '%s'", section)
		}
		if _, isObject := val.(map[string]any); !isObject {
			return nil, fmt.Errorf("schema validation failed: section '%s' is not an object", section)
		}
	}

	result, err := DecodeExtractionResult(m)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	return result, nil
}

// DecodeExtractionResult converts a raw JSON map (the form the pipeline
// passes between agents) into the typed struct. Used where typed access
// is needed: region resolution, report rendering.
func DecodeExtractionResult(m map[string]any) (*ExtractionResult, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode extraction map: %w", err)
	}
	var result ExtractionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode extraction result: %w", err)
	}
	return &result, nil
}

// ToMap converts the typed result back to the raw map form.
func (r *ExtractionResult) ToMap() (map[string]any, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode extraction result: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode extraction map: %w", err)
	}
	return m, nil
}
