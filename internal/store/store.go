// Package store persists run history in Postgres. The reaper's decision
// logic never reads from it; it exists purely as an audit trail behind the
// API history endpoints.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides database operations
type Store struct {
	pool *pgxpool.Pool

	Runs *RunStore
}

// New creates a new Store with all sub-stores initialized
func New(pool *pgxpool.Pool) *Store {
	s := &Store{
		pool: pool,
	}

	s.Runs = &RunStore{pool: pool}

	return s
}

// NewStore creates a new Store from a database URL
func NewStore(databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	return New(pool), nil
}

// Close closes the database connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the schema if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			policy_name TEXT NOT NULL,
			zone        TEXT NOT NULL,
			deleted     JSONB NOT NULL DEFAULT '[]',
			kept        JSONB NOT NULL DEFAULT '[]',
			run_at      TIMESTAMPTZ NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS runs_run_at_idx ON runs (run_at DESC);
	`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return nil
}
