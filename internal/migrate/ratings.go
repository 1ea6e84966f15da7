package migrate

import (
	"context"
	"time"

	"github.com/desertthunder/recipeshift/internal/repositories"
)

// MigrateRatings sets user_recipe_id on every rating that only references a household
// recipe, provided a user recipe with that ID exists. No rating is created.
func (e *Engine) MigrateRatings(ctx context.Context, dryRun bool, progress chan<- ProgressUpdate) *Result {
	start := time.Now()
	res := newResult(MigrationRatings, dryRun)
	logger := e.migrationLogger(MigrationRatings, dryRun)
	logger.Info("migration started")

	e.sendProgress(progress, loadUpdate(MigrationRatings, "ratings"))

	ratings, err := e.store.UnmigratedRatings(ctx)
	if err != nil {
		res.abort("failed to load ratings: %v", err)
		return e.done(logger, res, start, progress)
	}

	recipeIDs, err := e.store.RecipeIDs(ctx)
	if err != nil {
		res.abort("failed to load user recipe ids: %v", err)
		return e.done(logger, res, start, progress)
	}

	batch := &repositories.Batch{}
	total := len(ratings)

	for i, rating := range ratings {
		if err := ctx.Err(); err != nil {
			res.abort("interrupted: %v", err)
			return e.done(logger, res, start, progress)
		}

		res.ItemsProcessed++
		e.sendProgress(progress, convertUpdate(MigrationRatings, i+1, total, rating.ID))

		if _, ok := recipeIDs[rating.HouseholdRecipeID]; !ok {
			res.skip("rating %s: no migrated recipe found for household recipe %s", rating.ID, rating.HouseholdRecipeID)
			logger.Warn("skipping rating", "id", rating.ID, "household_recipe", rating.HouseholdRecipeID)
			continue
		}

		batch.RatingLinks = append(batch.RatingLinks, repositories.RatingLink{
			RatingID:     rating.ID,
			UserRecipeID: rating.HouseholdRecipeID,
		})
		res.ItemsMigrated++
	}

	e.commit(ctx, res, batch, progress)
	return e.done(logger, res, start, progress)
}
