package postgres

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
	"github.com/ternarybob/mendel/internal/interfaces"
)

// Manager bundles the Postgres-backed storages
type Manager struct {
	db     *PostgresDB
	runs   *RunStorage
	golden *GoldenStorage
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens the database and wires the storage implementations.
func NewManager(ctx context.Context, logger arbor.ILogger, config *common.PostgresConfig) (*Manager, error) {
	db, err := NewPostgresDB(ctx, logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:     db,
		runs:   NewRunStorage(db, logger),
		golden: NewGoldenStorage(db, logger),
	}, nil
}

// Runs returns the run storage
func (m *Manager) Runs() interfaces.RunStorage {
	return m.runs
}

// GoldenRecords returns the golden record storage
func (m *Manager) GoldenRecords() interfaces.GoldenStorage {
	return m.golden
}

// DB returns the underlying database for services that need direct
// query access.
func (m *Manager) DB() *PostgresDB {
	return m.db
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}
