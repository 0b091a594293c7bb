package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var (
	batchInputDir         string
	batchLimit            int
	batchBrand            string
	batchDocType          string
	batchNoCascade        bool
	batchCascadeThreshold int
	batchDelay            string
	batchDryRun           bool
	batchOutputDir        string
)

var batchCmd = &cobra.Command{
	Use:   "batch-extract",
	Short: "Extract product data from a directory of PDFs",
	Long: `Runs every PDF under the input directory through the extraction
pipeline using filename-based classification, merges the results into
Golden Records and writes CSV/JSON exports plus a run report.

The input directory is expected to follow the layout
<input-dir>/<BRAND>/<PRODUCT_FOLDER>/<FILE>.pdf.`,
	RunE: runBatchExtract,
}

func init() {
	batchCmd.Flags().StringVarP(&batchInputDir, "input-dir", "i", "", "Directory containing product PDFs (required)")
	batchCmd.Flags().IntVarP(&batchLimit, "limit", "l", 0, "Process at most N PDFs (0 = all)")
	batchCmd.Flags().StringVar(&batchBrand, "brand", "", "Only process PDFs under this brand directory")
	batchCmd.Flags().StringVar(&batchDocType, "doc-type", "", "Only process PDFs of this document type (TDS, SDS, RPI, CoA, Brochure)")
	batchCmd.Flags().BoolVar(&batchNoCascade, "no-cascade", false, "Disable the fallback provider cascade")
	batchCmd.Flags().IntVar(&batchCascadeThreshold, "cascade-threshold", -1, "Cascade when more than N of 33 attributes are missing")
	batchCmd.Flags().StringVar(&batchDelay, "delay", "", "Delay between LLM calls, e.g. 2s")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "List the PDFs that would be processed and exit")
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "o", "", "Directory for result exports")
	batchCmd.MarkFlagRequired("input-dir")
}

func runBatchExtract(cmd *cobra.Command, args []string) error {
	if err := initRuntime(); err != nil {
		return err
	}

	if batchNoCascade {
		config.Extraction.CascadeEnabled = false
	}
	if batchCascadeThreshold >= 0 {
		config.Extraction.CascadeThreshold = batchCascadeThreshold
	}
	if batchDelay != "" {
		if _, err := time.ParseDuration(batchDelay); err != nil {
			return fmt.Errorf("invalid --delay value %q: %w", batchDelay, err)
		}
		config.Pipeline.RequestDelay = batchDelay
	}
	outputDir := batchOutputDir
	if outputDir == "" {
		outputDir = config.Pipeline.OutputDir
	}

	pdfs, err := discoverPDFs(batchInputDir, batchLimit, batchBrand, batchDocType,
		config.Extraction.MaxFileSizeMB, logger)
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no PDF files found under %s", batchInputDir)
	}

	if batchDryRun {
		printDiscovery(pdfs)
		return nil
	}

	ctx := cmd.Context()

	p, err := newPipeline(ctx, config, false, false, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	logger.Info().
		Int("pdf_count", len(pdfs)).
		Str("input_dir", batchInputDir).
		Str("provider", config.Extraction.Provider).
		Bool("cascade", config.Extraction.CascadeEnabled).
		Msg("Starting batch extraction")

	result := p.orchestrator.RunFullPipeline(ctx, pdfs)
	printProgress(result.Partials)

	if _, err := p.persistRun(ctx, batchInputDir, "batch", result); err != nil {
		logger.Error().Err(err).Msg("Failed to persist run")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := exportTimestamp()
	exports := []struct {
		path string
		fn   func(string) error
	}{
		{filepath.Join(outputDir, "batch_results_"+ts+".csv"), func(path string) error {
			return p.report.WriteBatchResultsCSV(path, result.Partials, p.costs.Records())
		}},
		{filepath.Join(outputDir, "batch_results_"+ts+".json"), func(path string) error {
			return p.report.WriteBatchResultsJSON(path, result, p.costs.Summary())
		}},
		{filepath.Join(outputDir, "batch_costs_"+ts+".csv"), func(path string) error {
			return p.report.WriteCostsCSV(path, p.costs.Records())
		}},
	}
	for _, export := range exports {
		if err := export.fn(export.path); err != nil {
			logger.Error().Err(err).Str("path", export.path).Msg("Export failed")
		}
	}

	if _, err := p.report.WriteRunReport(result, outputDir, ts); err != nil {
		logger.Error().Err(err).Msg("Report generation failed")
	}

	fmt.Println(p.costs.SummaryText())
	fmt.Printf("Processed %d PDFs: %d extracted, %d failed, %d golden records (%.1fs)\n",
		result.Summary.TotalPDFs, result.Summary.SuccessfulExtractions,
		result.Summary.FailedExtractions, result.Summary.GoldenRecords,
		result.Summary.ElapsedSeconds)

	return nil
}
