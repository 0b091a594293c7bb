package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
)

// PostgresDB manages the golden-record database connection pool
type PostgresDB struct {
	pool   *pgxpool.Pool
	logger arbor.ILogger
	config *common.PostgresConfig
}

// NewPostgresDB creates a new Postgres connection pool and verifies
// connectivity with a ping.
func NewPostgresDB(ctx context.Context, logger arbor.ILogger, config *common.PostgresConfig) (*PostgresDB, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required (set via MENDEL_POSTGRES_DSN or storage.postgres.dsn in config)")
	}

	poolConfig, err := pgxpool.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres DSN: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = int32(config.MaxConns)
	}

	connectTimeout := 5 * time.Second
	if config.ConnectTimeout != "" {
		if d, err := time.ParseDuration(config.ConnectTimeout); err == nil {
			connectTimeout = d
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	logger.Debug().
		Int("max_conns", int(poolConfig.MaxConns)).
		Msg("Postgres connection pool initialized")

	db := &PostgresDB{
		pool:   pool,
		logger: logger,
		config: config,
	}

	if config.MigrateOnStart {
		if err := db.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return db, nil
}

// Pool returns the underlying pgx connection pool
func (db *PostgresDB) Pool() *pgxpool.Pool {
	return db.pool
}

// Migrate creates the tables and indexes if they do not exist.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	db.logger.Debug().Msg("Postgres schema migrated")
	return nil
}

// Close closes the connection pool
func (db *PostgresDB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}
