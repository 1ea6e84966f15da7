// package services defines interface Admin for running migrations and verifications
package services

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/recipeshift/internal/metrics"
	"github.com/desertthunder/recipeshift/internal/migrate"
	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/verify"
)

// DefaultHistoryLimit is the number of runs [Admin.MigrationHistory] returns when asked for none.
const DefaultHistoryLimit = 20

// Admin defines the administrative operations on the catalog migration.
type Admin interface {
	// RunCompleteMigration runs the recipe, rating and friendship migrations in order.
	RunCompleteMigration(ctx context.Context, dryRun bool, progress chan<- migrate.ProgressUpdate) *migrate.CompleteResult

	// MigrateRecipes copies owned household recipes into user recipes.
	MigrateRecipes(ctx context.Context, dryRun bool, progress chan<- migrate.ProgressUpdate) *migrate.Result

	// MigrateRatings repoints ratings at migrated recipes.
	MigrateRatings(ctx context.Context, dryRun bool, progress chan<- migrate.ProgressUpdate) *migrate.Result

	// MigrateFriendships converts accepted household friendships.
	MigrateFriendships(ctx context.Context, dryRun bool, progress chan<- migrate.ProgressUpdate) *migrate.Result

	// MigrationStats reports migration progress.
	MigrationStats(ctx context.Context) (*migrate.Stats, error)

	// MigrationHistory returns the most recent migration runs, newest first.
	MigrationHistory(ctx context.Context, limit int) ([]*models.MigrationRun, error)

	// RunAllVerifications runs every check and aggregates a report.
	RunAllVerifications(ctx context.Context) (*verify.Report, error)

	VerifyRecipes(ctx context.Context) (*verify.Result, error)
	VerifyRatings(ctx context.Context) (*verify.Result, error)
	VerifyIntegrity(ctx context.Context) (*verify.Result, error)
	CheckOrphans(ctx context.Context) (*verify.Result, error)
}

// RunHistory stores finished migration runs.
//
// [repositories.RunRepository] implements it.
type RunHistory interface {
	Create(ctx context.Context, run *models.MigrationRun) error
	Recent(ctx context.Context, limit int) ([]*models.MigrationRun, error)
}

// AdminService implements [Admin] on top of a [migrate.Migrator] and a [verify.Verifier].
type AdminService struct {
	migrator migrate.Migrator
	verifier verify.Verifier
	history  RunHistory
	logger   *log.Logger
	metrics  *metrics.Metrics
}

// NewAdminService creates a new AdminService. logger and m may be nil.
func NewAdminService(migrator migrate.Migrator, verifier verify.Verifier, logger *log.Logger, m *metrics.Metrics) *AdminService {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &AdminService{migrator: migrator, verifier: verifier, logger: logger, metrics: m}
}

// WithHistory records every finished migration in h.
func (s *AdminService) WithHistory(h RunHistory) *AdminService {
	s.history = h
	return s
}

func (s *AdminService) RunCompleteMigration(ctx context.Context, dryRun bool, progress chan<- migrate.ProgressUpdate) *migrate.CompleteResult {
	s.logger.Info("running complete migration", "dry_run", dryRun)
	result := s.migrator.RunComplete(ctx, dryRun, progress)
	for _, res := range result.Results() {
		if res != nil {
			s.observe(res)
		}
	}
	return result
}

func (s *AdminService) MigrateRecipes(ctx context.Context, dryRun bool, progress chan<- migrate.ProgressUpdate) *migrate.Result {
	return s.observe(s.migrator.MigrateRecipes(ctx, dryRun, progress))
}

func (s *AdminService) MigrateRatings(ctx context.Context, dryRun bool, progress chan<- migrate.ProgressUpdate) *migrate.Result {
	return s.observe(s.migrator.MigrateRatings(ctx, dryRun, progress))
}

func (s *AdminService) MigrateFriendships(ctx context.Context, dryRun bool, progress chan<- migrate.ProgressUpdate) *migrate.Result {
	return s.observe(s.migrator.MigrateFriendships(ctx, dryRun, progress))
}

func (s *AdminService) MigrationStats(ctx context.Context) (*migrate.Stats, error) {
	stats, err := s.migrator.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to read migration stats", "err", err)
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) MigrationHistory(ctx context.Context, limit int) ([]*models.MigrationRun, error) {
	if s.history == nil {
		return []*models.MigrationRun{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	runs, err := s.history.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("failed to read migration history", "err", err)
		return nil, err
	}
	if runs == nil {
		runs = []*models.MigrationRun{}
	}
	return runs, nil
}

func (s *AdminService) RunAllVerifications(ctx context.Context) (*verify.Report, error) {
	report, err := s.verifier.RunAll(ctx)
	if err != nil {
		s.logger.Error("verification failed to run", "err", err)
		return nil, err
	}
	for _, res := range report.Results {
		s.observeCheck(res)
	}
	return report, nil
}

func (s *AdminService) VerifyRecipes(ctx context.Context) (*verify.Result, error) {
	return s.check(s.verifier.VerifyRecipeMigration(ctx))
}

func (s *AdminService) VerifyRatings(ctx context.Context) (*verify.Result, error) {
	return s.check(s.verifier.VerifyRatingMigration(ctx))
}

func (s *AdminService) VerifyIntegrity(ctx context.Context) (*verify.Result, error) {
	return s.check(s.verifier.VerifyDataIntegrity(ctx))
}

func (s *AdminService) CheckOrphans(ctx context.Context) (*verify.Result, error) {
	return s.check(s.verifier.CheckOrphanedRecords(ctx))
}

// observe records a finished migration in the metrics and the run history.
// A history write failure is logged and never changes the result.
func (s *AdminService) observe(res *migrate.Result) *migrate.Result {
	duration := time.Duration(res.DurationMs) * time.Millisecond
	s.metrics.ObserveMigration(res.Migration, res.DryRun, res.Success,
		res.ItemsMigrated, res.ItemsSkipped, res.ItemsFailed, duration)

	if s.history == nil {
		return res
	}

	completed := time.Now().UTC()
	run := &models.MigrationRun{
		Migration:      res.Migration,
		DryRun:         res.DryRun,
		Success:        res.Success,
		ItemsProcessed: res.ItemsProcessed,
		ItemsMigrated:  res.ItemsMigrated,
		ItemsSkipped:   res.ItemsSkipped,
		ItemsFailed:    res.ItemsFailed,
		ErrorMessage:   strings.Join(res.Errors, "; "),
		StartedAt:      completed.Add(-duration),
		CompletedAt:    completed,
	}
	// the run outlives a cancelled request
	if err := s.history.Create(context.Background(), run); err != nil {
		s.logger.Warn("failed to record migration run", "migration", res.Migration, "err", err)
	}
	return res
}

func (s *AdminService) check(res *verify.Result, err error) (*verify.Result, error) {
	if err != nil {
		s.logger.Error("check failed to run", "err", err)
		return nil, err
	}
	s.observeCheck(res)
	return res, nil
}

func (s *AdminService) observeCheck(res *verify.Result) {
	s.metrics.ObserveVerification(res.Check, res.Passed, map[string]int{
		string(verify.SeverityError):   res.Count(verify.SeverityError),
		string(verify.SeverityWarning): res.Count(verify.SeverityWarning),
		string(verify.SeverityInfo):    res.Count(verify.SeverityInfo),
	})
}
