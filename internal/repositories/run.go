package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/shared"
)

const runColumns = `id, migration, dry_run, success, items_processed, items_migrated, items_skipped,
	items_failed, error_message, started_at, completed_at`

// RunRepository implements [models.Repository] for migration_runs.
type RunRepository struct {
	db Querier
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db Querier) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a migration run, generating its ID when empty
func (r *RunRepository) Create(ctx context.Context, run *models.MigrationRun) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `INSERT INTO migration_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Migration, run.DryRun, run.Success,
		run.ItemsProcessed, run.ItemsMigrated, run.ItemsSkipped, run.ItemsFailed,
		nullable(run.ErrorMessage), run.StartedAt.UTC(), run.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert migration run: %w", err)
	}
	return nil
}

// Get retrieves a migration run by ID
func (r *RunRepository) Get(ctx context.Context, id string) (*models.MigrationRun, error) {
	query := `SELECT ` + runColumns + ` FROM migration_runs WHERE id = $1`
	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "migration run", id)
	}
	return run, nil
}

// List retrieves every migration run, newest first
func (r *RunRepository) List(ctx context.Context) ([]*models.MigrationRun, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+runColumns+` FROM migration_runs ORDER BY completed_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration runs: %w", err)
	}
	return collect(rows, scanRun)
}

// Recent retrieves at most limit runs, newest first
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]*models.MigrationRun, error) {
	query := `SELECT ` + runColumns + ` FROM migration_runs ORDER BY completed_at DESC, id LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration runs: %w", err)
	}
	return collect(rows, scanRun)
}

// Count returns the number of recorded runs
func (r *RunRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM migration_runs`)
}

func scanRun(s scanner) (*models.MigrationRun, error) {
	var (
		run     models.MigrationRun
		message sql.NullString
	)
	err := s.Scan(&run.ID, &run.Migration, &run.DryRun, &run.Success,
		&run.ItemsProcessed, &run.ItemsMigrated, &run.ItemsSkipped, &run.ItemsFailed,
		&message, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}
	run.ErrorMessage = message.String
	return &run, nil
}
