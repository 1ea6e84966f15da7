package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipeshift/internal/formatter"
	"github.com/desertthunder/recipeshift/internal/migrate"
	"github.com/desertthunder/recipeshift/internal/services"
	"github.com/desertthunder/recipeshift/internal/shared"
)

type migrationOp func(admin services.Admin, ctx context.Context, dryRun bool, progress chan<- migrate.ProgressUpdate) *migrate.Result

var (
	migrateRecipes     migrationOp = services.Admin.MigrateRecipes
	migrateRatings     migrationOp = services.Admin.MigrateRatings
	migrateFriendships migrationOp = services.Admin.MigrateFriendships
)

// MigrateRun runs the complete migration.
func (r *Runner) MigrateRun(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}
	defer r.close()

	dryRun := cmd.Bool("dry-run")
	r.logger.Info("starting complete migration", "dry_run", dryRun)

	progress, wait := r.reportProgress()
	result := r.admin.RunCompleteMigration(ctx, dryRun, progress)
	close(progress)
	wait()

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	text, err := formatter.CompleteResultToText(result)
	if err != nil {
		return err
	}
	return r.write(text)
}

// Migrate returns the action running a single migration.
//
// A migration that fails still prints its result; the command only errors when the output cannot be written.
func (r *Runner) Migrate(op migrationOp) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.prepare(cmd); err != nil {
			return err
		}
		defer r.close()

		progress, wait := r.reportProgress()
		result := op(r.admin, ctx, cmd.Bool("dry-run"), progress)
		close(progress)
		wait()

		if cmd.Bool("json") {
			return r.writeJSON(result, true)
		}

		text, err := formatter.ResultToText(result)
		if err != nil {
			return err
		}
		return r.write(text)
	}
}

// MigrateStats prints migration progress.
func (r *Runner) MigrateStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}
	defer r.close()

	stats, err := r.admin.MigrationStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	text, err := formatter.StatsToText(stats)
	if err != nil {
		return err
	}
	return r.write(text)
}

// MigrateHistory lists recorded migration runs, newest first.
func (r *Runner) MigrateHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}
	defer r.close()

	limit := cmd.Int("limit")
	if limit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", shared.ErrInvalidFlag)
	}

	runs, err := r.admin.MigrationHistory(ctx, int(limit))
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	text, err := formatter.HistoryToText(runs)
	if err != nil {
		return err
	}
	return r.write(text)
}

// reportProgress logs progress updates until the returned channel is closed.
// wait blocks until the last update has been logged.
func (r *Runner) reportProgress() (chan migrate.ProgressUpdate, func()) {
	progress := make(chan migrate.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case migrate.ConvertRecords:
				r.logger.Debug(update.Message, "migration", update.Migration, "step", update.Step, "total", update.Total)
			default:
				r.logger.Info(update.Message, "migration", update.Migration, "phase", update.Phase)
			}
		}
	}()

	return progress, func() { <-done }
}
