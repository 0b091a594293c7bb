// -----------------------------------------------------------------------
// Orchestrator - Pipeline controller from PDF to Golden Record
// No LLM calls, pure orchestration
// -----------------------------------------------------------------------

package agents

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
)

// Orchestrator routes documents through the agent pipeline:
//
//	Single PDF:  Parse -> Classify -> Extract -> (Audit) -> PartialExtraction
//	Batch:       per-PDF pipeline, then group by product folder and merge
//	             each group into a Golden Record
type Orchestrator struct {
	parser      interfaces.DocumentParser
	classifier  interfaces.ClassifierService
	extractor   interfaces.ExtractorService
	auditor     interfaces.AuditorService
	merger      interfaces.MergerService
	logger      arbor.ILogger
	concurrency int
}

// Compile-time interface assertion
var _ interfaces.OrchestratorService = (*Orchestrator)(nil)

// NewOrchestrator wires the agent pipeline together. Concurrency bounds
// how many PDFs are processed in parallel during batch runs; values
// below 1 are treated as sequential.
func NewOrchestrator(
	parser interfaces.DocumentParser,
	classifier interfaces.ClassifierService,
	extractor interfaces.ExtractorService,
	auditor interfaces.AuditorService,
	merger interfaces.MergerService,
	concurrency int,
	logger arbor.ILogger,
) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Orchestrator{
		parser:      parser,
		classifier:  classifier,
		extractor:   extractor,
		auditor:     auditor,
		merger:      merger,
		logger:      logger,
		concurrency: concurrency,
	}
}

// ProcessSingle runs one PDF through the full agent pipeline.
func (o *Orchestrator) ProcessSingle(ctx context.Context, pdfPath string) *models.PartialExtraction {
	fileName := filepath.Base(pdfPath)
	start := time.Now()

	o.logger.Info().Str("file", fileName).Msg("Orchestrator: processing PDF")

	// Step 1: Parse PDF
	parsed, err := o.parser.ParseFile(ctx, pdfPath)
	if err != nil {
		o.logger.Error().Err(err).Str("file", fileName).Msg("Orchestrator: PDF parse failed")
		return &models.PartialExtraction{
			SourceFile:       pdfPath,
			DocType:          models.DocTypeUnknown,
			ExtractionResult: map[string]any{},
			Warnings:         []string{fmt.Sprintf("PDF parse error: %v", err)},
		}
	}

	// Step 2: Classify. When the classifier cannot decide but the parser
	// detected a concrete type from the document text, use the parser's.
	classification := o.classifier.Classify(ctx, parsed.FullMarkdown, fileName)
	docType := classification.DocType
	if docType == models.DocTypeUnknown && classification.Confidence == 0 &&
		parsed.DocType != "" && parsed.DocType != models.DocTypeUnknown {
		o.logger.Debug().
			Str("file", fileName).
			Str("doc_type", parsed.DocType).
			Msg("Orchestrator: classifier undecided, using parser doc type")
		docType = parsed.DocType
	}

	// Step 3: Extract with the doc-type-specific agent
	partial := o.extractor.Extract(ctx, parsed.FullMarkdown, docType, fileName)
	partial.SourceFile = pdfPath

	// Step 4: Conditional audit
	audited := false
	if o.auditor != nil {
		triggered, reasons := o.auditor.ShouldAudit(partial, docType)
		if triggered {
			audited = true
			o.logger.Info().
				Str("file", fileName).
				Str("doc_type", docType).
				Strs("reasons", reasons).
				Msg("Orchestrator: audit triggered")

			auditResult := o.auditor.Audit(ctx, parsed.FullMarkdown, partial, docType, fileName)
			partial.AuditResult = auditResult
			if len(auditResult.Corrections) > 0 {
				partial = o.auditor.ApplyCorrections(partial, auditResult)
			}
		}
	}

	o.logger.Info().
		Str("file", fileName).
		Str("doc_type", docType).
		Float64("confidence", classification.Confidence).
		Int("extracted", len(partial.ExtractedFields)).
		Int("missing", len(partial.MissingFields)).
		Bool("audited", audited).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Orchestrator: PDF processed")

	return partial
}

// ProcessBatch runs the single-PDF pipeline over many PDFs with bounded
// concurrency. Results preserve input order; a panic or error while
// processing one PDF yields a failure partial in its slot rather than
// aborting the batch.
func (o *Orchestrator) ProcessBatch(ctx context.Context, pdfPaths []string) []models.PartialExtraction {
	total := len(pdfPaths)
	results := make([]models.PartialExtraction, total)

	var wg sync.WaitGroup
	sem := make(chan struct{}, o.concurrency)

	for idx, pdfPath := range pdfPaths {
		// Stop dispatching on cancellation; in-flight PDFs finish.
		if err := ctx.Err(); err != nil {
			results[idx] = models.PartialExtraction{
				SourceFile:       pdfPath,
				DocType:          models.DocTypeUnknown,
				ExtractionResult: map[string]any{},
				Warnings:         []string{fmt.Sprintf("Processing cancelled: %v", err)},
			}
			continue
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, pdfPath string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error().
						Str("file", filepath.Base(pdfPath)).
						Str("panic", fmt.Sprintf("%v", r)).
						Msgf("Orchestrator: batch [%d/%d] failed", idx+1, total)
					results[idx] = models.PartialExtraction{
						SourceFile:       pdfPath,
						DocType:          models.DocTypeUnknown,
						ExtractionResult: map[string]any{},
						Warnings:         []string{fmt.Sprintf("Processing error: %v", r)},
					}
				}
			}()

			o.logger.Info().
				Str("file", filepath.Base(pdfPath)).
				Msgf("Orchestrator: batch [%d/%d]", idx+1, total)

			results[idx] = *o.ProcessSingle(ctx, pdfPath)
		}(idx, pdfPath)
	}

	wg.Wait()
	return results
}

// GroupByProduct groups partial extractions by product folder. The
// product folder is the parent directory of each PDF:
//
//	input/Wacker/BRAND/PRODUCT_NAME/file.pdf
//	                   ^^^^^^^^^^^^ product folder
//
// The folder name is used as product name unless an extraction carries
// a better one.
func (o *Orchestrator) GroupByProduct(partials []models.PartialExtraction) []models.ProductGroup {
	grouped := make(map[string][]models.PartialExtraction)
	var order []string

	for _, partial := range partials {
		folder := filepath.Dir(partial.SourceFile)
		if _, seen := grouped[folder]; !seen {
			order = append(order, folder)
		}
		grouped[folder] = append(grouped[folder], partial)
	}

	productGroups := make([]models.ProductGroup, 0, len(order))
	for _, folder := range order {
		groupPartials := grouped[folder]
		productName := filepath.Base(folder)
		brand := ""

		// Prefer names and brands found in the extraction results
		for _, p := range groupPartials {
			if len(p.ExtractionResult) == 0 {
				continue
			}
			if docInfo, ok := p.ExtractionResult["document_info"].(map[string]any); ok {
				if b, ok := docInfo["brand"].(string); ok && b != "" {
					brand = b
					break
				}
			}
			if identity, ok := p.ExtractionResult["identity"].(map[string]any); ok {
				if name, ok := identity["product_name"].(string); ok && name != "" {
					productName = name
				}
			}
		}

		productGroups = append(productGroups, models.ProductGroup{
			ProductName:        productName,
			ProductFolder:      folder,
			Brand:              brand,
			PartialExtractions: groupPartials,
		})
	}

	o.logger.Info().
		Int("total_pdfs", len(partials)).
		Int("product_groups", len(productGroups)).
		Msg("Orchestrator: grouped into products")

	return productGroups
}

// MergeToGoldenRecords merges each product group into a Golden Record.
// Per-product merge failures are captured in the result, not returned.
func (o *Orchestrator) MergeToGoldenRecords(groups []models.ProductGroup) []models.MergedProduct {
	results := make([]models.MergedProduct, 0, len(groups))

	for i := range groups {
		group := &groups[i]
		merged := models.MergedProduct{
			ProductName:   group.ProductName,
			ProductFolder: group.ProductFolder,
			Brand:         group.Brand,
			SourceCount:   len(group.PartialExtractions),
		}

		golden, err := o.merger.Merge(group)
		if err != nil {
			o.logger.Error().
				Err(err).
				Str("product", group.ProductName).
				Msg("Golden Record merge failed")
			merged.Error = err.Error()
		} else {
			merged.GoldenRecord = golden
			o.logger.Info().
				Str("product", group.ProductName).
				Int("sources", merged.SourceCount).
				Msg("Golden Record created")
		}

		results = append(results, merged)
	}

	return results
}

// RunFullPipeline runs the complete pipeline: extract all PDFs, group
// by product, merge into Golden Records.
func (o *Orchestrator) RunFullPipeline(ctx context.Context, pdfPaths []string) *models.PipelineResult {
	start := time.Now()

	partials := o.ProcessBatch(ctx, pdfPaths)
	productGroups := o.GroupByProduct(partials)
	goldenRecords := o.MergeToGoldenRecords(productGroups)

	successful := 0
	for _, p := range partials {
		if len(p.ExtractionResult) > 0 {
			successful++
		}
	}
	goldenCount := 0
	for _, g := range goldenRecords {
		if g.GoldenRecord != nil {
			goldenCount++
		}
	}

	elapsed := time.Since(start).Seconds()
	summary := models.PipelineSummary{
		TotalPDFs:             len(pdfPaths),
		SuccessfulExtractions: successful,
		FailedExtractions:     len(pdfPaths) - successful,
		ProductGroups:         len(productGroups),
		GoldenRecords:         goldenCount,
		ElapsedSeconds:        float64(int(elapsed*10+0.5)) / 10,
	}

	o.logger.Info().
		Int("total_pdfs", summary.TotalPDFs).
		Int("successful", summary.SuccessfulExtractions).
		Int("failed", summary.FailedExtractions).
		Int("product_groups", summary.ProductGroups).
		Int("golden_records", summary.GoldenRecords).
		Float64("elapsed_seconds", summary.ElapsedSeconds).
		Msg("Orchestrator: full pipeline complete")

	return &models.PipelineResult{
		Partials:      partials,
		ProductGroups: productGroups,
		GoldenRecords: goldenRecords,
		Summary:       summary,
	}
}
