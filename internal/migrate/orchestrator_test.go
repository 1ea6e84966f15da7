package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/repositories"
	"github.com/desertthunder/recipeshift/internal/shared"
	tu "github.com/desertthunder/recipeshift/internal/testing"
)

func TestRunComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("end to end", func(t *testing.T) {
		store := tu.NewStore(t)
		sc := tu.SeedScenario(t, store)
		tu.AddFriendship(t, store, "hf-1", "household-a", "household-b", models.FriendshipAccepted)

		result := NewEngine(store, nil).RunComplete(ctx, false, nil)
		require.True(t, result.Success)
		assert.False(t, result.DryRun)
		assert.Equal(t, 2, result.RecipesMigration.ItemsMigrated)
		assert.Equal(t, 2, result.RatingsMigration.ItemsMigrated)
		assert.Equal(t, 1, result.FriendshipsMigration.ItemsMigrated)
		assert.Len(t, result.Results(), 3)

		for _, legacy := range sc.Recipes {
			recipe, err := store.Recipes.Get(ctx, legacy.ID)
			require.NoError(t, err)
			assert.Equal(t, legacy.Title, recipe.Title)
			assert.Equal(t, legacy.AddedBy, recipe.UserID)
		}

		stew, err := store.Recipes.Get(ctx, "recipe-stew")
		require.NoError(t, err)
		assert.Equal(t, models.VisibilityHousehold, stew.Visibility)

		salad, err := store.Recipes.Get(ctx, "recipe-salad")
		require.NoError(t, err)
		assert.Equal(t, models.VisibilityPublic, salad.Visibility)

		for _, seeded := range sc.Ratings {
			rating, err := store.Ratings.Get(ctx, seeded.ID)
			require.NoError(t, err)
			assert.Equal(t, seeded.HouseholdRecipeID, rating.UserRecipeID)
		}
	})

	t.Run("a failing step fails the run but not the others", func(t *testing.T) {
		base := tu.NewStore(t)
		tu.SeedScenario(t, base)
		store := &tu.FailingCommitStore{Store: base}

		result := NewEngine(store, nil).RunComplete(ctx, false, nil)
		assert.False(t, result.Success)
		assert.False(t, result.RecipesMigration.Success)
		assert.True(t, result.RatingsMigration.Success)
		assert.True(t, result.FriendshipsMigration.Success)
		assert.Equal(t, 1, store.Attempts)
	})

	t.Run("dry run", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)

		result := NewEngine(store, nil).RunComplete(ctx, true, nil)
		assert.True(t, result.DryRun)
		assert.True(t, result.Success)

		stats, err := NewEngine(store, nil).Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalUserRecipes)
		assert.False(t, stats.MigrationComplete)
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()

	t.Run("before and after migration", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		tu.AddFriendship(t, store, "hf-1", "household-a", "household-b", models.FriendshipAccepted)
		engine := NewEngine(store, nil)

		before, err := engine.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, before.TotalHouseholdRecipes)
		assert.Equal(t, 2, before.HouseholdRecipesNotMigrated)
		assert.Equal(t, 2, before.RatingsWithHouseholdRecipeID)
		assert.Equal(t, 1, before.HouseholdFriendships)
		assert.False(t, before.MigrationComplete)

		require.True(t, engine.RunComplete(ctx, false, nil).Success)

		after, err := engine.Stats(ctx)
		require.NoError(t, err)
		assert.True(t, after.MigrationComplete)
		assert.Equal(t, 2, after.TotalUserRecipes)
		assert.Equal(t, 2, after.RatingsWithUserRecipeID)
		assert.Zero(t, after.HouseholdRecipesNotMigrated)
		assert.Equal(t, 1, after.UserFriendships)
	})

	t.Run("store failure", func(t *testing.T) {
		_, err := NewEngine(brokenStore{}, nil).Stats(ctx)
		assert.True(t, errors.Is(err, shared.ErrStoreRead))
	})
}

// brokenStore fails every read.
type brokenStore struct{ Store }

func (brokenStore) Counts(context.Context) (*repositories.Counts, error) {
	return nil, tu.ErrInjected
}
