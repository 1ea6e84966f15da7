// package verify implements consistency checks between the two ownership models.
package verify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/repositories"
	"github.com/desertthunder/recipeshift/internal/shared"
)

// DefaultOrphanSampleLimit bounds how many orphaned ratings are listed individually.
const DefaultOrphanSampleLimit = 100

// Store is the part of the record store the checks read from.
//
// [repositories.Store] implements it.
type Store interface {
	OwnedLegacyRecipes(ctx context.Context) ([]*models.LegacyRecipe, error)
	AllLegacyRecipes(ctx context.Context) ([]*models.LegacyRecipe, error)
	AllRecipes(ctx context.Context) ([]*models.Recipe, error)
	RecipeIDs(ctx context.Context) (map[string]struct{}, error)
	UnmigratedRatings(ctx context.Context) ([]*models.Rating, error)
	OrphanedRatings(ctx context.Context, limit int) ([]models.OrphanedRating, int, error)
	RecipesWithoutOwner(ctx context.Context) ([]*models.Recipe, error)
	Counts(ctx context.Context) (*repositories.Counts, error)
}

// Options tunes an [Engine].
type Options struct {
	OrphanSampleLimit int  // maximum orphaned ratings listed individually
	Concurrent        bool // run the checks of RunAll in parallel
}

// Verifier defines the verification operations.
type Verifier interface {
	VerifyRecipeMigration(ctx context.Context) (*Result, error)
	VerifyRatingMigration(ctx context.Context) (*Result, error)
	VerifyDataIntegrity(ctx context.Context) (*Result, error)
	CheckOrphanedRecords(ctx context.Context) (*Result, error)
	RunAll(ctx context.Context) (*Report, error)
}

// Engine implements [Verifier] over a [Store].
type Engine struct {
	store  Store
	logger *log.Logger
	opts   Options
}

// NewEngine creates a new Engine. A nil logger discards output and a non-positive sample
// limit falls back to [DefaultOrphanSampleLimit].
func NewEngine(store Store, logger *log.Logger, opts Options) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.OrphanSampleLimit <= 0 {
		opts.OrphanSampleLimit = DefaultOrphanSampleLimit
	}
	return &Engine{store: store, logger: logger, opts: opts}
}

// Run executes the named check.
func (e *Engine) Run(ctx context.Context, check string) (*Result, error) {
	switch check {
	case CheckRecipeMigration:
		return e.VerifyRecipeMigration(ctx)
	case CheckRatingMigration:
		return e.VerifyRatingMigration(ctx)
	case CheckDataIntegrity:
		return e.VerifyDataIntegrity(ctx)
	case CheckOrphanedRecords:
		return e.CheckOrphanedRecords(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown check %q", shared.ErrInvalidInput, check)
	}
}

// RunAll runs every check and aggregates the results in the order of [Checks].
//
// The first check that cannot read the store cancels the rest and its error is returned.
func (e *Engine) RunAll(ctx context.Context) (*Report, error) {
	start := time.Now()
	results := make([]*Result, len(Checks))

	if e.opts.Concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for i, check := range Checks {
			g.Go(func() error {
				res, err := e.Run(gctx, check)
				results[i] = res
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, check := range Checks {
			res, err := e.Run(ctx, check)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
	}

	report := NewReport(results, start.UTC(), time.Since(start))
	e.logger.Info("verification finished",
		"all_passed", report.AllPassed,
		"errors", report.Summary.TotalErrors,
		"warnings", report.Summary.TotalWarnings,
		"duration_ms", report.DurationMs)
	return report, nil
}

func (e *Engine) log(res *Result) *Result {
	e.logger.Info("check finished",
		"check", res.Check,
		"passed", res.Passed,
		"checked", res.ItemsChecked,
		"issues", res.IssuesFound)
	return res
}
