package interfaces

import (
	"context"

	"github.com/ternarybob/mendel/internal/models"
)

// RunStorage persists extraction runs.
type RunStorage interface {
	CreateRun(ctx context.Context, pdfCount int, metadata map[string]any) (*models.ExtractionRun, error)
	CompleteRun(ctx context.Context, runID int64, goldenCount int, totalCost float64) error
	FailRun(ctx context.Context, runID int64, errorMessage string) error
	GetRun(ctx context.Context, runID int64) (*models.ExtractionRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]models.ExtractionRun, error)
}

// GoldenStorage persists versioned Golden Records.
type GoldenStorage interface {
	// InsertVersioned stores a record under the next version number for
	// its (product_name, region) pair and clears is_latest on the
	// previous versions, all in one transaction. Returns the stored
	// record with version and IDs filled in.
	InsertVersioned(ctx context.Context, record *models.GoldenRecord) (*models.GoldenRecord, error)

	GetByID(ctx context.Context, id int64) (*models.GoldenRecord, error)
	ListByRun(ctx context.Context, runID int64) ([]models.GoldenRecord, error)
	ListLatest(ctx context.Context, limit, offset int) ([]models.GoldenRecord, error)

	// ListVersions returns the full version history for one product and
	// region, newest first.
	ListVersions(ctx context.Context, productName, region string) ([]models.GoldenRecord, error)
}

// ParseCache caches parsed PDF output keyed by content hash so repeated
// batch runs skip re-parsing unchanged files.
type ParseCache interface {
	Get(ctx context.Context, contentHash string) (*models.ParsedDocument, bool)
	Put(ctx context.Context, contentHash string, doc *models.ParsedDocument) error
	Close() error
}

// StorageManager bundles the storage backends for injection into services.
type StorageManager interface {
	Runs() RunStorage
	GoldenRecords() GoldenStorage
	Close() error
}
