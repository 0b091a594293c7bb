// -----------------------------------------------------------------------
// Versioning Service - Region resolution and versioned persistence
// -----------------------------------------------------------------------

package versioning

import (
	"context"
	"fmt"
	"math"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
)

// attributeCount is the number of canonical record attributes used for
// the completeness percentage.
var attributeCount = len(models.AllAttributeNames)

// Service persists merged Golden Records with region resolution and
// per-(product, region) version assignment.
type Service struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.VersioningService = (*Service)(nil)

// NewService creates a versioning service backed by the given storage.
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// ResolveRegion implements the VersioningService interface.
func (s *Service) ResolveRegion(result *models.ExtractionResult) string {
	return ResolveRegion(result)
}

// StoreGoldenRecord resolves the region for a merged product, assigns
// the next version number and persists the record. The version bump and
// is_latest flip on previous versions happen in one transaction inside
// the storage layer.
func (s *Service) StoreGoldenRecord(ctx context.Context, runID int64, merged *models.MergedProduct, sourceFiles []string) (*models.GoldenRecord, error) {
	if merged.GoldenRecord == nil {
		return nil, fmt.Errorf("merged product %s has no golden record", merged.ProductName)
	}

	result, err := models.DecodeExtractionResult(merged.GoldenRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to decode golden record for %s: %w", merged.ProductName, err)
	}

	region := ResolveRegion(result)
	missing := len(result.MissingAttributes)
	completeness := math.Round(float64(attributeCount-missing)/float64(attributeCount)*1000) / 10

	record := &models.GoldenRecord{
		RunID:        runID,
		ProductName:  merged.ProductName,
		Brand:        resolveBrand(result, merged),
		Region:       region,
		IsLatest:     true,
		Data:         merged.GoldenRecord,
		SourceFiles:  sourceFiles,
		SourceCount:  merged.SourceCount,
		MissingCount: missing,
		Completeness: completeness,
	}
	if result.DocumentInfo.Language != "" {
		lang := result.DocumentInfo.Language
		record.DocLanguage = &lang
	}
	record.RevisionDate = result.DocumentInfo.RevisionDate
	if result.DocumentInfo.DocumentType != "" {
		docType := result.DocumentInfo.DocumentType
		record.DocumentType = &docType
	}

	stored, err := s.storage.GoldenRecords().InsertVersioned(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to store golden record for %s: %w", merged.ProductName, err)
	}

	s.logger.Info().
		Str("product", stored.ProductName).
		Str("region", stored.Region).
		Int("version", stored.Version).
		Float64("completeness", stored.Completeness).
		Msg("Golden Record stored")

	return stored, nil
}

func resolveBrand(result *models.ExtractionResult, merged *models.MergedProduct) *string {
	if result.DocumentInfo.Brand != nil && *result.DocumentInfo.Brand != "" {
		return result.DocumentInfo.Brand
	}
	if merged.Brand != "" {
		brand := merged.Brand
		return &brand
	}
	return nil
}
