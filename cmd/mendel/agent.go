package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	agentInputDir  string
	agentLimit     int
	agentBrand     string
	agentDocType   string
	agentProvider  string
	agentModel     string
	agentOutputDir string
	agentNoMerge   bool
	agentDryRun    bool
)

var agentCmd = &cobra.Command{
	Use:   "agent-extract",
	Short: "Extract product data using the full agent pipeline",
	Long: `Runs PDFs through the full agent pipeline: LLM-based document
classification, extraction with the provider cascade, conditional audit
of high-risk fields and a merge into versioned Golden Records.

Compared to batch-extract this spends extra LLM calls on classification
and auditing for higher accuracy.`,
	RunE: runAgentExtract,
}

func init() {
	agentCmd.Flags().StringVarP(&agentInputDir, "input-dir", "i", "", "Directory containing product PDFs (required)")
	agentCmd.Flags().IntVarP(&agentLimit, "limit", "l", 0, "Process at most N PDFs (0 = all)")
	agentCmd.Flags().StringVar(&agentBrand, "brand", "", "Only process PDFs under this brand directory")
	agentCmd.Flags().StringVar(&agentDocType, "doc-type", "", "Only process PDFs of this document type (TDS, SDS, RPI, CoA, Brochure)")
	agentCmd.Flags().StringVar(&agentProvider, "provider", "", "Primary LLM provider (google, anthropic)")
	agentCmd.Flags().StringVar(&agentModel, "model", "", "Primary model override")
	agentCmd.Flags().StringVarP(&agentOutputDir, "output-dir", "o", "", "Directory for result exports")
	agentCmd.Flags().BoolVar(&agentNoMerge, "no-merge", false, "Stop after per-document extraction, skip the merge stage")
	agentCmd.Flags().BoolVar(&agentDryRun, "dry-run", false, "List the PDFs that would be processed and exit")
	agentCmd.MarkFlagRequired("input-dir")
}

func runAgentExtract(cmd *cobra.Command, args []string) error {
	if err := initRuntime(); err != nil {
		return err
	}

	if agentProvider != "" {
		config.Extraction.Provider = agentProvider
		if agentModel == "" {
			// Model names are provider-specific, never carry one across.
			config.Extraction.Model = ""
		}
	}
	if agentModel != "" {
		config.Extraction.Model = agentModel
	}
	outputDir := agentOutputDir
	if outputDir == "" {
		outputDir = config.Pipeline.OutputDir
	}

	pdfs, err := discoverPDFs(agentInputDir, agentLimit, agentBrand, agentDocType,
		config.Extraction.MaxFileSizeMB, logger)
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no PDF files found under %s", agentInputDir)
	}

	if agentDryRun {
		printDiscovery(pdfs)
		return nil
	}

	ctx := cmd.Context()

	p, err := newPipeline(ctx, config, true, true, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	logger.Info().
		Int("pdf_count", len(pdfs)).
		Str("input_dir", agentInputDir).
		Str("provider", config.Extraction.Provider).
		Bool("merge", !agentNoMerge).
		Msg("Starting agent extraction")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	ts := exportTimestamp()

	if agentNoMerge {
		partials := p.orchestrator.ProcessBatch(ctx, pdfs)
		printProgress(partials)

		partialsPath := filepath.Join(outputDir, "agent_partials_"+ts+".json")
		if err := p.report.WritePartialsJSON(partialsPath, partials); err != nil {
			logger.Error().Err(err).Str("path", partialsPath).Msg("Export failed")
		}
		costsPath := filepath.Join(outputDir, "agent_costs_"+ts+".csv")
		if err := p.report.WriteCostsCSV(costsPath, p.costs.Records()); err != nil {
			logger.Error().Err(err).Str("path", costsPath).Msg("Export failed")
		}

		fmt.Println(p.costs.SummaryText())
		return nil
	}

	result := p.orchestrator.RunFullPipeline(ctx, pdfs)
	printProgress(result.Partials)

	if _, err := p.persistRun(ctx, agentInputDir, "agent", result); err != nil {
		logger.Error().Err(err).Msg("Failed to persist run")
	}

	exports := []struct {
		path string
		fn   func(string) error
	}{
		{filepath.Join(outputDir, "agent_partials_"+ts+".json"), func(path string) error {
			return p.report.WritePartialsJSON(path, result.Partials)
		}},
		{filepath.Join(outputDir, "agent_golden_records_"+ts+".json"), func(path string) error {
			return p.report.WriteGoldenRecordsJSON(path, result.GoldenRecords)
		}},
		{filepath.Join(outputDir, "agent_summary_"+ts+".csv"), func(path string) error {
			return p.report.WriteAgentSummaryCSV(path, result.GoldenRecords)
		}},
		{filepath.Join(outputDir, "agent_costs_"+ts+".json"), func(path string) error {
			return p.report.WriteCostsJSON(path, result.Summary, p.costs.Summary())
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
