// -----------------------------------------------------------------------
// History Service - Version history and diff queries over Golden Records
// -----------------------------------------------------------------------

package history

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
)

// Service answers version-history and diff queries.
type Service struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.HistoryService = (*Service)(nil)

// NewService creates a history service backed by the given storage.
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// ListRuns returns extraction runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit, offset int) ([]models.ExtractionRun, error) {
	return s.storage.Runs().ListRuns(ctx, limit, offset)
}

// GetRunDetail returns one run together with its Golden Records.
func (s *Service) GetRunDetail(ctx context.Context, runID int64) (*models.RunDetail, error) {
	run, err := s.storage.Runs().GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	records, err := s.storage.GoldenRecords().ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	return &models.RunDetail{Run: *run, GoldenRecords: records}, nil
}

// GetGoldenRecord returns one stored record, including its JSON data.
func (s *Service) GetGoldenRecord(ctx context.Context, id int64) (*models.GoldenRecord, error) {
	return s.storage.GoldenRecords().GetByID(ctx, id)
}

// ListGoldenRecords returns records for a run when runID is positive,
// otherwise the latest version of every product.
func (s *Service) ListGoldenRecords(ctx context.Context, runID int64, limit, offset int) ([]models.GoldenRecord, error) {
	if runID > 0 {
		return s.storage.GoldenRecords().ListByRun(ctx, runID)
	}
	return s.storage.GoldenRecords().ListLatest(ctx, limit, offset)
}

// ListProductVersions returns all versions for a product and region,
// newest first.
func (s *Service) ListProductVersions(ctx context.Context, productName, region string) ([]models.GoldenRecord, error) {
	return s.storage.GoldenRecords().ListVersions(ctx, productName, region)
}

// DiffVersions computes a field-by-field diff between two stored
// versions of the same product and region.
func (s *Service) DiffVersions(ctx context.Context, productName, region string, versionA, versionB int) (*models.VersionDiff, error) {
	versions, err := s.storage.GoldenRecords().ListVersions(ctx, productName, region)
	if err != nil {
		return nil, err
	}

	var recordA, recordB *models.GoldenRecord
	for i := range versions {
		switch versions[i].Version {
		case versionA:
			recordA = &versions[i]
		case versionB:
			recordB = &versions[i]
		}
	}
	if recordA == nil {
		return nil, fmt.Errorf("version %d not found for %s/%s", versionA, productName, region)
	}
	if recordB == nil {
		return nil, fmt.Errorf("version %d not found for %s/%s", versionB, productName, region)
	}

	sections, total := ComputeDiff(recordA.Data, recordB.Data)

	s.logger.Debug().
		Str("product", productName).
		Str("region", region).
		Int("version_a", versionA).
		Int("version_b", versionB).
		Int("changes", total).
		Msg("Computed version diff")

	return &models.VersionDiff{
		ProductName:  productName,
		Region:       region,
		VersionA:     versionA,
		VersionB:     versionB,
		Sections:     sections,
		TotalChanges: total,
	}, nil
}
