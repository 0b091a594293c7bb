package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
)

// RunStorage implements the RunStorage interface for Postgres
type RunStorage struct {
	db     *PostgresDB
	logger arbor.ILogger
}

var _ interfaces.RunStorage = (*RunStorage)(nil)

// NewRunStorage creates a new RunStorage instance
func NewRunStorage(db *PostgresDB, logger arbor.ILogger) *RunStorage {
	return &RunStorage{
		db:     db,
		logger: logger,
	}
}

// CreateRun inserts a new run in 'running' state.
func (s *RunStorage) CreateRun(ctx context.Context, pdfCount int, metadata map[string]any) (*models.ExtractionRun, error) {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run metadata: %w", err)
	}

	var run models.ExtractionRun
	err = s.db.Pool().QueryRow(ctx,
		`INSERT INTO extraction_runs (pdf_count, status, metadata)
		 VALUES ($1, $2, $3)
		 RETURNING id, started_at, pdf_count, status`,
		pdfCount, models.RunStatusRunning, metadataJSON,
	).Scan(&run.ID, &run.StartedAt, &run.PDFCount, &run.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction run: %w", err)
	}

	run.Metadata = metadata

	s.logger.Info().
		Int64("run_id", run.ID).
		Int("pdf_count", pdfCount).
		Msg("Extraction run created")

	return &run, nil
}

// CompleteRun marks a run as completed with its final counters.
func (s *RunStorage) CompleteRun(ctx context.Context, runID int64, goldenCount int, totalCost float64) error {
	tag, err := s.db.Pool().Exec(ctx,
		`UPDATE extraction_runs
		 SET finished_at = now(), golden_records_count = $2, total_cost = $3, status = $4
		 WHERE id = $1`,
		runID, goldenCount, totalCost, models.RunStatusCompleted,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run %d: %w", runID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %d", runID)
	}
	return nil
}

// FailRun marks a run as failed with an error message.
func (s *RunStorage) FailRun(ctx context.Context, runID int64, errorMessage string) error {
	tag, err := s.db.Pool().Exec(ctx,
		`UPDATE extraction_runs
		 SET finished_at = now(), status = $2, error_message = $3
		 WHERE id = $1`,
		runID, models.RunStatusFailed, errorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run %d failed: %w", runID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %d", runID)
	}
	return nil
}

// GetRun fetches one run by ID.
func (s *RunStorage) GetRun(ctx context.Context, runID int64) (*models.ExtractionRun, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT id, started_at, finished_at, pdf_count, golden_records_count,
		        total_cost, status, error_message, metadata
		 FROM extraction_runs WHERE id = $1`,
		runID,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns runs newest first.
func (s *RunStorage) ListRuns(ctx context.Context, limit, offset int) ([]models.ExtractionRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Pool().Query(ctx,
		`SELECT id, started_at, finished_at, pdf_count, golden_records_count,
		        total_cost, status, error_message, metadata
		 FROM extraction_runs
		 ORDER BY started_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ExtractionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.ExtractionRun, error) {
	var run models.ExtractionRun
	var pdfCount, goldenCount *int
	var totalCost *float64
	var metadataJSON []byte

	err := row.Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &pdfCount, &goldenCount,
		&totalCost, &run.Status, &run.ErrorMessage, &metadataJSON,
	)
	if err != nil {
		return nil, err
	}

	if pdfCount != nil {
		run.PDFCount = *pdfCount
	}
	if goldenCount != nil {
		run.GoldenRecordsCount = *goldenCount
	}
	if totalCost != nil {
		run.TotalCost = *totalCost
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &run.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode run metadata: %w", err)
		}
	}

	return &run, nil
}
