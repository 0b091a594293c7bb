package models

// PartialExtraction is the output of a single doc-type-specific
// extraction: the full 33-attribute result (as a raw JSON map, with
// nulls for non-relevant fields) plus metadata about what was actually
// found.
type PartialExtraction struct {
	SourceFile       string         `json:"source_file"`
	DocType          string         `json:"doc_type"`
	ExtractionResult map[string]any `json:"extraction_result"`
	ExtractedFields  []string       `json:"extracted_fields"`
	MissingFields    []string       `json:"missing_fields"`
	Warnings         []string       `json:"warnings"`
	AuditResult      *AuditResult   `json:"audit_result,omitempty"`
	Cascade          *CascadeInfo   `json:"cascade,omitempty"`
}

// CascadeInfo records what happened when the two-provider cascade ran
// for this extraction.
type CascadeInfo struct {
	Triggered       bool   `json:"triggered"`
	PrimaryMissing  int    `json:"primary_missing"`
	FallbackMissing int    `json:"fallback_missing"`
	Winner          string `json:"winner"` // "primary" or "fallback"
}

// ProductGroup collects the partial extractions that belong to the same
// product (same input folder). The merger combines a group into one
// Golden Record using the Truth Hierarchy.
type ProductGroup struct {
	ProductName        string              `json:"product_name"`
	ProductFolder      string              `json:"product_folder"`
	Brand              string              `json:"brand"`
	PartialExtractions []PartialExtraction `json:"partial_extractions"`
}

// MergedProduct is the merge outcome for one product group. Error is
// set (and GoldenRecord nil) when the merge failed.
type MergedProduct struct {
	ProductName   string         `json:"product_name"`
	ProductFolder string         `json:"product_folder"`
	Brand         string         `json:"brand"`
	GoldenRecord  map[string]any `json:"golden_record"`
	SourceCount   int            `json:"source_count"`
	Error         string         `json:"error,omitempty"`
}

// PipelineResult is the output of a full batch run.
type PipelineResult struct {
	Partials      []PartialExtraction `json:"partials"`
	ProductGroups []ProductGroup      `json:"product_groups"`
	GoldenRecords []MergedProduct     `json:"golden_records"`
	Summary       PipelineSummary     `json:"pipeline_summary"`
}

// PipelineSummary holds batch-level counters.
type PipelineSummary struct {
	TotalPDFs             int     `json:"total_pdfs"`
	SuccessfulExtractions int     `json:"successful_extractions"`
	FailedExtractions     int     `json:"failed_extractions"`
	ProductGroups         int     `json:"product_groups"`
	GoldenRecords         int     `json:"golden_records"`
	ElapsedSeconds        float64 `json:"elapsed_seconds"`
}
