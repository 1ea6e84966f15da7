package migrate

import (
	"context"
	"time"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/repositories"
)

// MigrateRecipes copies every owned household recipe without a user recipe of the same
// ID into user_recipes. Recipes already present are skipped with a warning.
func (e *Engine) MigrateRecipes(ctx context.Context, dryRun bool, progress chan<- ProgressUpdate) *Result {
	start := time.Now()
	res := newResult(MigrationRecipes, dryRun)
	logger := e.migrationLogger(MigrationRecipes, dryRun)
	logger.Info("migration started")

	e.sendProgress(progress, loadUpdate(MigrationRecipes, "household recipes"))

	legacy, err := e.store.OwnedLegacyRecipes(ctx)
	if err != nil {
		res.abort("failed to load household recipes: %v", err)
		return e.done(logger, res, start, progress)
	}

	existing, err := e.store.RecipeIDs(ctx)
	if err != nil {
		res.abort("failed to load user recipe ids: %v", err)
		return e.done(logger, res, start, progress)
	}

	batch := &repositories.Batch{}
	total := len(legacy)

	for i, lr := range legacy {
		if err := ctx.Err(); err != nil {
			res.abort("interrupted: %v", err)
			return e.done(logger, res, start, progress)
		}

		res.ItemsProcessed++
		e.sendProgress(progress, convertUpdate(MigrationRecipes, i+1, total, lr.ID))

		if _, ok := existing[lr.ID]; ok {
			res.skip("household recipe %s already migrated", lr.ID)
			logger.Warn("skipping recipe", "id", lr.ID, "reason", "already migrated")
			continue
		}

		recipe := models.NewRecipeFromLegacy(lr)
		if err := recipe.Validate(); err != nil {
			res.fail(models.RecordHouseholdRecipe, lr.ID, err)
			logger.Error("cannot convert recipe", "id", lr.ID, "err", err)
			continue
		}

		logger.Debug("converted recipe", "id", recipe.ID, "user", recipe.UserID, "visibility", recipe.Visibility)
		batch.Recipes = append(batch.Recipes, recipe)
		res.ItemsMigrated++
	}

	e.commit(ctx, res, batch, progress)
	return e.done(logger, res, start, progress)
}
