package interfaces

import (
	"context"

	"github.com/ternarybob/mendel/internal/models"
)

// HistoryService answers read-side queries over stored runs and Golden
// Records: run listings, record lookups, version history and diffs.
type HistoryService interface {
	// ListRuns returns extraction runs, newest first.
	ListRuns(ctx context.Context, limit, offset int) ([]models.ExtractionRun, error)

	// GetRunDetail returns one run together with the Golden Records it
	// produced.
	GetRunDetail(ctx context.Context, runID int64) (*models.RunDetail, error)

	// GetGoldenRecord returns one stored record, including its JSON data.
	GetGoldenRecord(ctx context.Context, id int64) (*models.GoldenRecord, error)

	// ListGoldenRecords returns records for a run when runID is positive,
	// otherwise the latest version of every product.
	ListGoldenRecords(ctx context.Context, runID int64, limit, offset int) ([]models.GoldenRecord, error)

	// ListProductVersions returns all versions for a product+region,
	// newest first.
	ListProductVersions(ctx context.Context, productName, region string) ([]models.GoldenRecord, error)

	// DiffVersions computes a field-by-field diff between two stored
	// versions of the same product+region.
	DiffVersions(ctx context.Context, productName, region string, versionA, versionB int) (*models.VersionDiff, error)
}
