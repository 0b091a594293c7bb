package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
)

// GoldenStorage implements the GoldenStorage interface for Postgres
type GoldenStorage struct {
	db     *PostgresDB
	logger arbor.ILogger
}

var _ interfaces.GoldenStorage = (*GoldenStorage)(nil)

// NewGoldenStorage creates a new GoldenStorage instance
func NewGoldenStorage(db *PostgresDB, logger arbor.ILogger) *GoldenStorage {
	return &GoldenStorage{
		db:     db,
		logger: logger,
	}
}

const goldenRecordColumns = `id, run_id, product_name, brand, region, doc_language,
	revision_date, document_type, version, is_latest, golden_record,
	source_files, source_count, missing_count, completeness, created_at, updated_at`

// InsertVersioned stores a record under the next version number for its
// (product_name, region) pair. The version lookup, the is_latest flip on
// previous versions and the insert run in one transaction; the key's
// rows are locked with FOR UPDATE so concurrent versioners serialize.
// The first version of a new key has no rows to lock, so a unique
// violation on (product_name, region, version) is retried.
func (s *GoldenStorage) InsertVersioned(ctx context.Context, record *models.GoldenRecord) (*models.GoldenRecord, error) {
	dataJSON, err := json.Marshal(record.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode golden record payload: %w", err)
	}

	const maxAttempts = 3
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		stored, err := s.insertVersionedTx(ctx, record, dataJSON)
		if err == nil {
			return stored, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		s.logger.Warn().
			Str("product", record.ProductName).
			Str("region", record.Region).
			Int("attempt", attempt).
			Msg("Concurrent version insert, retrying")
		lastErr = err
	}
	return nil, fmt.Errorf("failed to insert versioned golden record after %d attempts: %w", maxAttempts, lastErr)
}

func (s *GoldenStorage) insertVersionedTx(ctx context.Context, record *models.GoldenRecord, dataJSON []byte) (*models.GoldenRecord, error) {
	tx, err := s.db.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the key's rows; concurrent writers for the same product+region
	// block here until this transaction commits.
	rows, err := tx.Query(ctx,
		`SELECT id, version, is_latest FROM golden_records
		 WHERE product_name = $1 AND region = $2
		 FOR UPDATE`,
		record.ProductName, record.Region,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to lock version rows: %w", err)
	}

	maxVersion := 0
	var obsoletedIDs []int64
	for rows.Next() {
		var id int64
		var version int
		var isLatest bool
		if err := rows.Scan(&id, &version, &isLatest); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan version row: %w", err)
		}
		if version > maxVersion {
			maxVersion = version
		}
		if isLatest {
			obsoletedIDs = append(obsoletedIDs, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read version rows: %w", err)
	}
	newVersion := maxVersion + 1

	if len(obsoletedIDs) > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE golden_records SET is_latest = false, updated_at = now()
			 WHERE id = ANY($1)`,
			obsoletedIDs,
		); err != nil {
			return nil, fmt.Errorf("failed to obsolete previous versions: %w", err)
		}
		s.logger.Info().
			Str("product", record.ProductName).
			Str("region", record.Region).
			Int("obsoleted", len(obsoletedIDs)).
			Int("new_version", newVersion).
			Msg("Obsoleted previous versions")
	}

	stored := *record
	stored.Version = newVersion
	stored.IsLatest = true

	err = tx.QueryRow(ctx,
		`INSERT INTO golden_records
			(run_id, product_name, brand, region, doc_language, revision_date,
			 document_type, version, is_latest, golden_record, source_files,
			 source_count, missing_count, completeness)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		record.RunID, record.ProductName, record.Brand, record.Region,
		record.DocLanguage, record.RevisionDate, record.DocumentType,
		newVersion, dataJSON, record.SourceFiles,
		record.SourceCount, record.MissingCount, record.Completeness,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert golden record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit golden record: %w", err)
	}

	return &stored, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetByID fetches one golden record.
func (s *GoldenStorage) GetByID(ctx context.Context, id int64) (*models.GoldenRecord, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+goldenRecordColumns+` FROM golden_records WHERE id = $1`, id)
	record, err := scanGoldenRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("golden record not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get golden record %d: %w", id, err)
	}
	return record, nil
}

// ListByRun returns all records created by one run.
func (s *GoldenStorage) ListByRun(ctx context.Context, runID int64) ([]models.GoldenRecord, error) {
	rows, err := s.db.Pool().Query(ctx,
		`SELECT `+goldenRecordColumns+` FROM golden_records
		 WHERE run_id = $1 ORDER BY product_name, region`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list golden records for run %d: %w", runID, err)
	}
	return collectGoldenRecords(rows)
}

// ListLatest returns the latest version of every (product, region).
func (s *GoldenStorage) ListLatest(ctx context.Context, limit, offset int) ([]models.GoldenRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Pool().Query(ctx,
		`SELECT `+goldenRecordColumns+` FROM golden_records
		 WHERE is_latest = true
		 ORDER BY product_name, region
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest golden records: %w", err)
	}
	return collectGoldenRecords(rows)
}

// ListVersions returns the full version history for one product and
// region, newest first.
func (s *GoldenStorage) ListVersions(ctx context.Context, productName, region string) ([]models.GoldenRecord, error) {
	rows, err := s.db.Pool().Query(ctx,
		`SELECT `+goldenRecordColumns+` FROM golden_records
		 WHERE product_name = $1 AND region = $2
		 ORDER BY version DESC`, productName, region)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions for %s/%s: %w", productName, region, err)
	}
	return collectGoldenRecords(rows)
}

func collectGoldenRecords(rows pgx.Rows) ([]models.GoldenRecord, error) {
	defer rows.Close()

	var records []models.GoldenRecord
	for rows.Next() {
		record, err := scanGoldenRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan golden record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanGoldenRecord(row rowScanner) (*models.GoldenRecord, error) {
	var record models.GoldenRecord
	var dataJSON []byte
	var sourceCount, missingCount *int
	var completeness *float64

	err := row.Scan(
		&record.ID, &record.RunID, &record.ProductName, &record.Brand,
		&record.Region, &record.DocLanguage, &record.RevisionDate,
		&record.DocumentType, &record.Version, &record.IsLatest, &dataJSON,
		&record.SourceFiles, &sourceCount, &missingCount, &completeness,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &record.Data); err != nil {
			return nil, fmt.Errorf("failed to decode golden record payload: %w", err)
		}
	}
	if sourceCount != nil {
		record.SourceCount = *sourceCount
	}
	if missingCount != nil {
		record.MissingCount = *missingCount
	}
	if completeness != nil {
		record.Completeness = *completeness
	}

	return &record, nil
}
