package interfaces

import (
	"context"

	"github.com/ternarybob/mendel/internal/models"
)

// DocumentParser extracts text and tables from PDF bytes into the
// markdown form the agents consume.
type DocumentParser interface {
	// Parse extracts per-page text and tables from PDF bytes.
	Parse(ctx context.Context, pdfBytes []byte) (*models.ParsedDocument, error)

	// ParseFile reads and parses a PDF from disk. Implementations may
	// serve repeated parses of the same file from a local cache.
	ParseFile(ctx context.Context, path string) (*models.ParsedDocument, error)
}
