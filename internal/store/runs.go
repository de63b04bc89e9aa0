package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hypersec/macjanitor/pkg/types"
)

// RunStore handles run history operations
type RunStore struct {
	pool *pgxpool.Pool
}

// Create inserts an immutable run record
func (s *RunStore) Create(ctx context.Context, run *types.RunRecord) error {
	query := `
		INSERT INTO runs (id, policy_name, zone, deleted, kept, run_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		run.ID,
		run.PolicyName,
		run.Zone,
		run.Deleted,
		run.Kept,
		run.RunAt,
	)

	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

// GetByID retrieves a single run record
func (s *RunStore) GetByID(ctx context.Context, id string) (*types.RunRecord, error) {
	query := `
		SELECT id, policy_name, zone, deleted, kept, run_at, created_at
		FROM runs
		WHERE id = $1
	`

	var run types.RunRecord
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.PolicyName,
		&run.Zone,
		&run.Deleted,
		&run.Kept,
		&run.RunAt,
		&run.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	return &run, nil
}

// List retrieves run records newest first
func (s *RunStore) List(ctx context.Context, limit, offset int) ([]*types.RunRecord, error) {
	query := `
		SELECT id, policy_name, zone, deleted, kept, run_at, created_at
		FROM runs
		ORDER BY run_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []*types.RunRecord{}
	for rows.Next() {
		var run types.RunRecord
		err := rows.Scan(
			&run.ID,
			&run.PolicyName,
			&run.Zone,
			&run.Deleted,
			&run.Kept,
			&run.RunAt,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// Count returns the total number of stored runs
func (s *RunStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return count, nil
}
