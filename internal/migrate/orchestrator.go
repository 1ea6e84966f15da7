package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/recipeshift/internal/shared"
)

// RunComplete runs the recipe, rating and friendship migrations in that order.
//
// Each step commits on its own. A failed step does not stop the later ones and nothing
// already committed is undone; rerunning is the recovery path.
func (e *Engine) RunComplete(ctx context.Context, dryRun bool, progress chan<- ProgressUpdate) *CompleteResult {
	start := time.Now()
	e.logger.Info("complete migration started", "dry_run", dryRun)

	result := &CompleteResult{DryRun: dryRun}
	result.RecipesMigration = e.MigrateRecipes(ctx, dryRun, progress)
	result.RatingsMigration = e.MigrateRatings(ctx, dryRun, progress)
	result.FriendshipsMigration = e.MigrateFriendships(ctx, dryRun, progress)

	result.Success = result.RecipesMigration.Success &&
		result.RatingsMigration.Success &&
		result.FriendshipsMigration.Success
	result.TotalDurationMs = time.Since(start).Milliseconds()

	e.logger.Info("complete migration finished", "dry_run", dryRun, "success", result.Success, "duration_ms", result.TotalDurationMs)
	return result
}

// Stats reads the table counts that describe how far the migration has progressed.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	counts, err := e.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStoreRead, err)
	}

	return &Stats{
		TotalHouseholdRecipes:        counts.LegacyRecipes,
		TotalUserRecipes:             counts.UserRecipes,
		HouseholdRecipesNotMigrated:  counts.LegacyRecipesNotMigrated,
		RatingsWithHouseholdRecipeID: counts.RatingsWithHouseholdRecipe,
		RatingsWithUserRecipeID:      counts.RatingsWithUserRecipe,
		HouseholdFriendships:         counts.AcceptedLegacyFriendships,
		UserFriendships:              counts.AcceptedFriendships,
		MigrationComplete: counts.LegacyRecipesNotMigrated == 0 &&
			counts.RatingsWithHouseholdRecipe == counts.RatingsWithUserRecipe,
	}, nil
}
