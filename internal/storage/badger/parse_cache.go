package badger

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// cachedParse is the stored form of a parsed document, keyed by the
// SHA-256 hash of the raw PDF bytes so re-runs over the same corpus
// skip the expensive extraction step.
type cachedParse struct {
	ContentHash string `badgerhold:"key"`
	Document    models.ParsedDocument
	CachedAt    time.Time
}

// ParseCache implements the ParseCache interface for Badger
type ParseCache struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.ParseCache = (*ParseCache)(nil)

// NewParseCache creates a new ParseCache instance
func NewParseCache(db *BadgerDB, logger arbor.ILogger) interfaces.ParseCache {
	return &ParseCache{
		db:     db,
		logger: logger,
	}
}

// Get returns the cached parse for a content hash, or false when the
// document has not been parsed before.
func (c *ParseCache) Get(ctx context.Context, contentHash string) (*models.ParsedDocument, bool) {
	var entry cachedParse
	if err := c.db.Store().Get(contentHash, &entry); err != nil {
		if err != badgerhold.ErrNotFound {
			c.logger.Warn().Err(err).Str("hash", contentHash).Msg("Parse cache lookup failed")
		}
		return nil, false
	}

	c.logger.Debug().
		Str("hash", contentHash).
		Int("pages", entry.Document.PageCount).
		Msg("Parse cache hit")

	doc := entry.Document
	return &doc, true
}

// Put stores a parsed document under its content hash.
func (c *ParseCache) Put(ctx context.Context, contentHash string, doc *models.ParsedDocument) error {
	entry := cachedParse{
		ContentHash: contentHash,
		Document:    *doc,
		CachedAt:    time.Now(),
	}
	if err := c.db.Store().Upsert(contentHash, &entry); err != nil {
		c.logger.Warn().Err(err).Str("hash", contentHash).Msg("Failed to write parse cache entry")
		return err
	}
	return nil
}

// Close closes the underlying database.
func (c *ParseCache) Close() error {
	return c.db.Close()
}
