package interfaces

import (
	"context"

	"github.com/ternarybob/mendel/internal/models"
)

// ClassifierService detects document type and brand for one parsed PDF.
type ClassifierService interface {
	// Classify inspects the first pages of the document markdown plus
	// the filename and returns the detected type, brand and confidence.
	// Never returns an error: classification failures degrade to
	// doc_type "unknown" with confidence 0.
	Classify(ctx context.Context, markdown, fileName string) *models.ClassificationResult
}

// ExtractorService runs the doc-type-specific extraction, including the
// optional two-provider cascade.
type ExtractorService interface {
	// Extract produces a PartialExtraction for one document. Extraction
	// failures are captured in the result (empty extraction, all
	// attributes missing) rather than returned as errors.
	Extract(ctx context.Context, markdown, docType, fileName string) *models.PartialExtraction
}

// AuditorService cross-checks an extraction against its source document.
type AuditorService interface {
	// ShouldAudit reports whether the extraction meets any audit trigger
	// and the reasons why.
	ShouldAudit(partial *models.PartialExtraction, docType string) (bool, []string)

	// Audit asks the LLM to verify the extraction against the source.
	// On failure a passing result with a flagged issue is returned so
	// the pipeline is never blocked.
	Audit(ctx context.Context, markdown string, partial *models.PartialExtraction, docType, fileName string) *models.AuditResult

	// ApplyCorrections writes accepted corrections back into the
	// extraction, downgrading confidence on corrected facts.
	ApplyCorrections(partial *models.PartialExtraction, result *models.AuditResult) *models.PartialExtraction
}

// MergerService combines partial extractions into Golden Records. Purely
// programmatic, no LLM calls.
type MergerService interface {
	// Merge combines a product group using the Truth Hierarchy. Returns
	// an error when the group is empty.
	Merge(group *models.ProductGroup) (map[string]any, error)
}

// OrchestratorService drives the full pipeline.
type OrchestratorService interface {
	// ProcessSingle runs parse -> classify -> extract -> audit for one PDF.
	ProcessSingle(ctx context.Context, pdfPath string) *models.PartialExtraction

	// ProcessBatch runs ProcessSingle over many PDFs with bounded
	// concurrency, preserving input order in the result slice.
	ProcessBatch(ctx context.Context, pdfPaths []string) []models.PartialExtraction

	// GroupByProduct groups partials by their source folder.
	GroupByProduct(partials []models.PartialExtraction) []models.ProductGroup

	// MergeToGoldenRecords merges every group, capturing per-product errors.
	MergeToGoldenRecords(groups []models.ProductGroup) []models.MergedProduct

	// RunFullPipeline is batch + group + merge with summary counters.
	RunFullPipeline(ctx context.Context, pdfPaths []string) *models.PipelineResult
}
