package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
	"github.com/ternarybob/mendel/internal/services/agents"
	"github.com/ternarybob/mendel/internal/services/costs"
	"github.com/ternarybob/mendel/internal/services/llm"
	"github.com/ternarybob/mendel/internal/services/pdf"
	"github.com/ternarybob/mendel/internal/services/report"
	"github.com/ternarybob/mendel/internal/services/versioning"
	"github.com/ternarybob/mendel/internal/storage/badger"
	"github.com/ternarybob/mendel/internal/storage/postgres"
)

// pipeline bundles the wired services for one CLI invocation.
type pipeline struct {
	orchestrator interfaces.OrchestratorService
	costs        interfaces.CostService
	report       *report.Service
	storage      interfaces.StorageManager

	primary       interfaces.LLMProvider
	fallback      interfaces.LLMProvider
	cache         interfaces.ParseCache
	logger        arbor.ILogger
	correlationID string
}

// newPipeline wires the extraction pipeline. useLLMClassifier selects
// the classifier agent over the regex heuristics; withAuditor enables
// the conditional audit stage. The storage manager is nil when no
// Postgres DSN is configured, in which case runs are in-memory only.
func newPipeline(ctx context.Context, cfg *common.Config, useLLMClassifier, withAuditor bool, logger arbor.ILogger) (*pipeline, error) {
	correlationID := uuid.New().String()
	logger = logger.WithCorrelationId(correlationID)

	tracker := costs.NewTracker(logger)
	prompts := llm.NewPromptRegistry(cfg.Pipeline.PromptsDir)

	primary, err := llm.NewProvider(cfg, cfg.Extraction.Provider, cfg.Extraction.Model, logger)
	if err != nil {
		return nil, err
	}

	// The fallback provider is optional: when its credentials are
	// missing the cascade is disabled instead of failing startup.
	var fallback interfaces.LLMProvider
	if cfg.Extraction.CascadeEnabled && cfg.Extraction.FallbackProvider != "" {
		fallback, err = llm.NewProvider(cfg, cfg.Extraction.FallbackProvider, cfg.Extraction.FallbackModel, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Fallback provider unavailable, cascade disabled")
			fallback = nil
		}
	}

	var cache interfaces.ParseCache
	if cfg.Storage.Badger.Enabled {
		cacheDB, err := badger.NewBadgerDB(logger, &cfg.Storage.Badger)
		if err != nil {
			logger.Warn().Err(err).Msg("Parse cache unavailable, parsing without cache")
		} else {
			cache = badger.NewParseCache(cacheDB, logger)
		}
	}

	parser := pdf.NewParser(&cfg.Extraction, cache, logger)

	var classifier interfaces.ClassifierService
	if useLLMClassifier {
		classifier, err = agents.NewClassifier(primary, prompts, tracker, logger)
		if err != nil {
			return nil, err
		}
	} else {
		classifier = pdf.NewHeuristicClassifier(logger)
	}

	extractor, err := agents.NewExtractor(cfg, primary, fallback, prompts, tracker, logger)
	if err != nil {
		return nil, err
	}

	var auditor interfaces.AuditorService
	if withAuditor {
		auditorAgent, err := agents.NewAuditor(primary, prompts, tracker, logger)
		if err != nil {
			return nil, err
		}
		auditor = auditorAgent
	}

	merger := agents.NewMerger(logger)
	orchestrator := agents.NewOrchestrator(parser, classifier, extractor, auditor, merger, cfg.Pipeline.Concurrency, logger)

	var storage interfaces.StorageManager
	if cfg.Storage.Postgres.DSN != "" {
		manager, err := postgres.NewManager(ctx, logger, &cfg.Storage.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to golden record store: %w", err)
		}
		storage = manager
	} else {
		logger.Info().Msg("No Postgres DSN configured, running without persistence")
	}

	return &pipeline{
		orchestrator:  orchestrator,
		costs:         tracker,
		report:        report.NewService(logger),
		storage:       storage,
		primary:       primary,
		fallback:      fallback,
		cache:         cache,
		logger:        logger,
		correlationID: correlationID,
	}, nil
}

// Close releases providers, cache and storage.
func (p *pipeline) Close() {
	if p.primary != nil {
		p.primary.Close()
	}
	if p.fallback != nil {
		p.fallback.Close()
	}
	// ParseCache.Close closes the underlying Badger database.
	if p.cache != nil {
		if err := p.cache.Close(); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to close parse cache")
		}
	}
	if p.storage != nil {
		if err := p.storage.Close(); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}

// persistRun stores the run row and every merged Golden Record. Returns
// the run ID, or 0 when no storage is configured. Persistence failures
// mark the run failed and are returned to the caller.
func (p *pipeline) persistRun(ctx context.Context, inputDir, mode string, result *models.PipelineResult) (int64, error) {
	if p.storage == nil {
		return 0, nil
	}

	run, err := p.storage.Runs().CreateRun(ctx, result.Summary.TotalPDFs, map[string]any{
		"input_dir":      inputDir,
		"mode":           mode,
		"correlation_id": p.correlationID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	sourcesByFolder := make(map[string][]string, len(result.ProductGroups))
	for _, group := range result.ProductGroups {
		for _, partial := range group.PartialExtractions {
			sourcesByFolder[group.ProductFolder] = append(
				sourcesByFolder[group.ProductFolder], filepath.Base(partial.SourceFile))
		}
	}

	versioner := versioning.NewService(p.storage, p.logger)
	stored := 0
	for i := range result.GoldenRecords {
		merged := &result.GoldenRecords[i]
		if merged.Error != "" || merged.GoldenRecord == nil {
			continue
		}
		if _, err := versioner.StoreGoldenRecord(ctx, run.ID, merged, sourcesByFolder[merged.ProductFolder]); err != nil {
			failErr := p.storage.Runs().FailRun(ctx, run.ID, err.Error())
			if failErr != nil {
				p.logger.Error().Err(failErr).Int64("run_id", run.ID).Msg("Failed to mark run failed")
			}
			return run.ID, err
		}
		stored++
	}

	totalCost := p.costs.Summary().TotalCostUSD
	if err := p.storage.Runs().CompleteRun(ctx, run.ID, stored, totalCost); err != nil {
		return run.ID, fmt.Errorf("failed to complete run: %w", err)
	}

	p.logger.Info().
		Int64("run_id", run.ID).
		Int("golden_records", stored).
		Float64("total_cost", totalCost).
		Msg("Run persisted")

	return run.ID, nil
}

// printProgress writes one status line per processed PDF.
func printProgress(partials []models.PartialExtraction) {
	for i, partial := range partials {
		status := "ok"
		if len(partial.ExtractionResult) == 0 {
			status = "failed"
		}
		fmt.Printf("[%d/%d] %s  %s  %s\n",
			i+1, len(partials), filepath.Base(partial.SourceFile), partial.DocType, status)
	}
}

// exportTimestamp names the export files for one run.
func exportTimestamp() string {
	return time.Now().Format("20060102_150405")
}
