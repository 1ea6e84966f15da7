package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/shared"
)

func readErr(what string, err error) error {
	return fmt.Errorf("%w: failed to load %s: %w", shared.ErrStoreRead, what, err)
}

// VerifyRecipeMigration reports an error for every owned household recipe with no user
// recipe of the same ID.
func (e *Engine) VerifyRecipeMigration(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := newResult(CheckRecipeMigration)

	legacy, err := e.store.OwnedLegacyRecipes(ctx)
	if err != nil {
		return nil, readErr("household recipes", err)
	}
	ids, err := e.store.RecipeIDs(ctx)
	if err != nil {
		return nil, readErr("user recipe ids", err)
	}

	for _, lr := range legacy {
		res.ItemsChecked++
		if _, ok := ids[lr.ID]; ok {
			continue
		}
		res.add(SeverityError, models.RecordHouseholdRecipe, lr.ID,
			"household recipe has not been migrated to a user recipe",
			Details{
				"householdId": Ident(lr.HouseholdID),
				"addedBy":     Ident(lr.AddedBy),
				"title":       Text(lr.Title),
			})
	}

	return e.log(res.finish(start)), nil
}

// VerifyRatingMigration inspects every rating that only references a household recipe.
// It is a warning when the matching user recipe exists (the rating can still be migrated)
// and an error when it does not (the reference dangles).
func (e *Engine) VerifyRatingMigration(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := newResult(CheckRatingMigration)

	ratings, err := e.store.UnmigratedRatings(ctx)
	if err != nil {
		return nil, readErr("ratings", err)
	}
	ids, err := e.store.RecipeIDs(ctx)
	if err != nil {
		return nil, readErr("user recipe ids", err)
	}

	for _, rating := range ratings {
		res.ItemsChecked++
		_, exists := ids[rating.HouseholdRecipeID]
		details := Details{
			"householdRecipeId": Ident(rating.HouseholdRecipeID),
			"userRecipeExists":  Bool(exists),
		}

		if exists {
			res.add(SeverityWarning, models.RecordRecipeRating, rating.ID,
				"rating can be migrated but has not been yet", details)
			continue
		}
		res.add(SeverityError, models.RecordRecipeRating, rating.ID,
			"rating references a household recipe with no migrated user recipe", details)
	}

	return e.log(res.finish(start)), nil
}

// VerifyDataIntegrity compares every recipe present in both tables. A different title is
// a warning; a different owner or catalog link is an error.
func (e *Engine) VerifyDataIntegrity(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := newResult(CheckDataIntegrity)

	legacy, err := e.store.AllLegacyRecipes(ctx)
	if err != nil {
		return nil, readErr("household recipes", err)
	}
	recipes, err := e.store.AllRecipes(ctx)
	if err != nil {
		return nil, readErr("user recipes", err)
	}

	byID := make(map[string]*models.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	for _, lr := range legacy {
		recipe, ok := byID[lr.ID]
		if !ok {
			continue
		}
		res.ItemsChecked++

		if lr.Title != recipe.Title {
			res.add(SeverityWarning, models.RecordUserRecipe, recipe.ID, "title differs from household recipe",
				Details{"householdTitle": Text(lr.Title), "userTitle": Text(recipe.Title)})
		}
		if lr.AddedBy != recipe.UserID {
			res.add(SeverityError, models.RecordUserRecipe, recipe.ID, "owner differs from the person who added the household recipe",
				Details{"expectedUserId": Ident(lr.AddedBy), "actualUserId": Ident(recipe.UserID)})
		}
		if lr.GlobalRecipeID != recipe.GlobalRecipeID {
			res.add(SeverityError, models.RecordUserRecipe, recipe.ID, "global recipe link differs from household recipe",
				Details{"householdGlobalRecipeId": Ident(lr.GlobalRecipeID), "userGlobalRecipeId": Ident(recipe.GlobalRecipeID)})
		}
	}

	return e.log(res.finish(start)), nil
}

// CheckOrphanedRecords reports ratings whose populated references point at a missing
// recipe as warnings, listing at most the configured sample and one info issue for the
// rest, and user recipes owned by a user that does not exist as errors.
func (e *Engine) CheckOrphanedRecords(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := newResult(CheckOrphanedRecords)

	counts, err := e.store.Counts(ctx)
	if err != nil {
		return nil, readErr("table counts", err)
	}
	orphans, total, err := e.store.OrphanedRatings(ctx, e.opts.OrphanSampleLimit)
	if err != nil {
		return nil, readErr("orphaned ratings", err)
	}
	ownerless, err := e.store.RecipesWithoutOwner(ctx)
	if err != nil {
		return nil, readErr("user recipes without owner", err)
	}

	res.ItemsChecked = counts.Ratings + counts.UserRecipes

	for _, o := range orphans {
		res.add(SeverityWarning, models.RecordRecipeRating, o.Rating.ID,
			"rating references a recipe that does not exist",
			Details{
				"householdRecipeId":      Ident(o.Rating.HouseholdRecipeID),
				"userRecipeId":           Ident(o.Rating.UserRecipeID),
				"missingHouseholdRecipe": Bool(o.MissingHouseholdRecipe),
				"missingUserRecipe":      Bool(o.MissingUserRecipe),
			})
	}
	if omitted := total - len(orphans); omitted > 0 {
		res.add(SeverityInfo, models.RecordRecipeRating, "",
			fmt.Sprintf("%d more orphaned ratings not listed", omitted),
			Details{"sampleLimit": Text(fmt.Sprint(e.opts.OrphanSampleLimit))})
	}

	for _, recipe := range ownerless {
		res.add(SeverityError, models.RecordUserRecipe, recipe.ID,
			"user recipe is owned by a user that does not exist",
			Details{"userId": Ident(recipe.UserID)})
	}

	return e.log(res.finish(start)), nil
}
