package interfaces

import (
	"context"

	"github.com/ternarybob/mendel/internal/models"
)

// VersioningService resolves regions and persists versioned Golden Records.
type VersioningService interface {
	// ResolveRegion determines the geographic region for a merged
	// extraction result: SDS documents get a language-derived region
	// (with an inventory override for US detection), every other
	// document type is GLOBAL.
	ResolveRegion(result *models.ExtractionResult) string

	// StoreGoldenRecord resolves the region, assigns the next version
	// for (product, region) and persists the record.
	StoreGoldenRecord(ctx context.Context, runID int64, merged *models.MergedProduct, sourceFiles []string) (*models.GoldenRecord, error)
}
