// package migrate implements the catalog migrations between ownership models.
//
// The core abstraction is [Migrator], implemented by [Engine], which converts records,
// reports counts in a [Result] and emits progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package migrate

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/repositories"
	"github.com/desertthunder/recipeshift/internal/shared"
)

// DefaultIDAttempts bounds how many candidate IDs a new friendship may draw.
const DefaultIDAttempts = 5

// Store is the part of the record store the migrations read from and commit to.
//
// [repositories.Store] implements it.
type Store interface {
	OwnedLegacyRecipes(ctx context.Context) ([]*models.LegacyRecipe, error)
	RecipeIDs(ctx context.Context) (map[string]struct{}, error)
	UnmigratedRatings(ctx context.Context) ([]*models.Rating, error)
	AcceptedLegacyFriendships(ctx context.Context) ([]*models.LegacyFriendship, error)
	HouseholdLeaders(ctx context.Context) (map[string]string, error)
	FriendshipPairs(ctx context.Context) (map[models.PairKey]struct{}, error)
	FriendshipIDs(ctx context.Context) (map[string]struct{}, error)
	Counts(ctx context.Context) (*repositories.Counts, error)
	Commit(ctx context.Context, batch *repositories.Batch) error
}

// Migrator defines the migration operations.
type Migrator interface {
	// MigrateRecipes copies owned household recipes into user recipes, keeping their IDs.
	MigrateRecipes(ctx context.Context, dryRun bool, progress chan<- ProgressUpdate) *Result

	// MigrateRatings points ratings at the user recipe that shares their household recipe's ID.
	MigrateRatings(ctx context.Context, dryRun bool, progress chan<- ProgressUpdate) *Result

	// MigrateFriendships turns accepted household friendships into friendships between leaders.
	MigrateFriendships(ctx context.Context, dryRun bool, progress chan<- ProgressUpdate) *Result

	// RunComplete runs recipes, ratings and friendships in that order.
	RunComplete(ctx context.Context, dryRun bool, progress chan<- ProgressUpdate) *CompleteResult

	// Stats reports migration progress without writing.
	Stats(ctx context.Context) (*Stats, error)
}

// Engine implements [Migrator] over a [Store].
type Engine struct {
	store      Store
	logger     *log.Logger
	newID      func() string
	idAttempts int
}

// NewEngine creates a new Engine. A nil logger discards output.
func NewEngine(store Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		store:      store,
		logger:     logger,
		newID:      shared.GenerateID,
		idAttempts: DefaultIDAttempts,
	}
}

// SetIDGenerator replaces the generator used for new friendship IDs and the number of
// candidates it may produce per friendship.
func (e *Engine) SetIDGenerator(gen func() string, attempts int) {
	e.newID = gen
	e.idAttempts = attempts
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// commit persists batch unless this is a dry run or there is nothing to write.
func (e *Engine) commit(ctx context.Context, res *Result, batch *repositories.Batch, progress chan<- ProgressUpdate) {
	if res.DryRun || batch.Len() == 0 {
		return
	}

	e.sendProgress(progress, commitUpdate(res.Migration, batch.Len()))
	if err := e.store.Commit(ctx, batch); err != nil {
		res.abort("commit failed: %v", err)
	}
}

// done stamps the result, logs it and reports the final update.
func (e *Engine) done(logger *log.Logger, res *Result, start time.Time, progress chan<- ProgressUpdate) *Result {
	res.finish(start)

	kv := []any{
		"processed", res.ItemsProcessed,
		"migrated", res.ItemsMigrated,
		"skipped", res.ItemsSkipped,
		"failed", res.ItemsFailed,
		"duration_ms", res.DurationMs,
	}
	if res.Success {
		logger.Info("migration finished", kv...)
	} else {
		logger.Error("migration finished with errors", append(kv, "errors", len(res.Errors))...)
	}

	e.sendProgress(progress, finishedUpdate(res))
	return res
}

func (e *Engine) migrationLogger(migration string, dryRun bool) *log.Logger {
	return shared.WithLogger(e.logger, "migration", migration, "dry_run", dryRun)
}
