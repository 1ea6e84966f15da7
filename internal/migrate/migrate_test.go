package migrate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/recipeshift/internal/models"
	tu "github.com/desertthunder/recipeshift/internal/testing"
)

func TestMigrateRecipes(t *testing.T) {
	ctx := context.Background()

	t.Run("copies recipes with identity and visibility", func(t *testing.T) {
		store := tu.NewStore(t)
		sc := tu.SeedScenario(t, store)
		engine := NewEngine(store, nil)

		res := engine.MigrateRecipes(ctx, false, nil)
		require.True(t, res.Success, res.Errors)
		assert.Equal(t, 2, res.ItemsProcessed)
		assert.Equal(t, 2, res.ItemsMigrated)
		assert.Zero(t, res.ItemsSkipped)
		assert.False(t, res.DryRun)

		stew, err := store.Recipes.Get(ctx, "recipe-stew")
		require.NoError(t, err)
		assert.Equal(t, "user-ann", stew.UserID)
		assert.Equal(t, models.VisibilityHousehold, stew.Visibility)
		assert.Equal(t, sc.Recipes[0].Title, stew.Title)
		assert.Equal(t, []string{"https://img.example/stew.png"}, stew.ImageURLs)

		salad, err := store.Recipes.Get(ctx, "recipe-salad")
		require.NoError(t, err)
		assert.Equal(t, "user-bob", salad.UserID)
		assert.Equal(t, models.VisibilityPublic, salad.Visibility)
		assert.Equal(t, "global-salad", salad.GlobalRecipeID)
	})

	t.Run("second run skips everything", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		engine := NewEngine(store, nil)

		first := engine.MigrateRecipes(ctx, false, nil)
		require.True(t, first.Success)

		second := engine.MigrateRecipes(ctx, false, nil)
		assert.True(t, second.Success)
		assert.Zero(t, second.ItemsMigrated)
		assert.Equal(t, first.ItemsMigrated, second.ItemsSkipped)
		assert.Len(t, second.Warnings, 2)

		n, err := store.Recipes.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("dry run reports the real counts without writing", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		engine := NewEngine(store, nil)

		dry := engine.MigrateRecipes(ctx, true, nil)
		assert.True(t, dry.DryRun)

		n, err := store.Recipes.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		live := engine.MigrateRecipes(ctx, false, nil)
		assert.Equal(t, live.ItemsMigrated, dry.ItemsMigrated)
		assert.Equal(t, live.ItemsSkipped, dry.ItemsSkipped)
		assert.Equal(t, live.ItemsFailed, dry.ItemsFailed)
	})

	t.Run("ignores recipes without an owner", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		tu.Must(t, store.LegacyRecipes.Create(ctx, &models.LegacyRecipe{
			ID: "recipe-anon", HouseholdID: "household-a", Title: "Anonymous",
		}))

		res := NewEngine(store, nil).MigrateRecipes(ctx, false, nil)
		assert.Equal(t, 2, res.ItemsProcessed)

		_, err := store.Recipes.Get(ctx, "recipe-anon")
		assert.Error(t, err)
	})

	t.Run("recipes without title or catalog link are copied as they are", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		tu.Must(t, store.LegacyRecipes.Create(ctx, &models.LegacyRecipe{
			ID: "recipe-blank", HouseholdID: "household-a", AddedBy: "user-ann", CreatedAt: tu.Epoch.Add(2 * time.Hour),
		}))

		res := NewEngine(store, nil).MigrateRecipes(ctx, false, nil)
		require.True(t, res.Success, res.Errors)
		assert.Equal(t, 3, res.ItemsMigrated)

		blank, err := store.Recipes.Get(ctx, "recipe-blank")
		require.NoError(t, err)
		assert.Empty(t, blank.Title)
		assert.Empty(t, blank.GlobalRecipeID)
		assert.Equal(t, "user-ann", blank.UserID)
	})

	t.Run("a record that cannot be converted does not stop the batch", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		_, err := store.DB().ExecContext(ctx,
			`INSERT INTO household_recipes (id, household_id, title, added_by) VALUES ('', 'household-a', 'Nameless', 'user-ann')`)
		require.NoError(t, err)

		res := NewEngine(store, nil).MigrateRecipes(ctx, false, nil)
		assert.False(t, res.Success)
		assert.Equal(t, 3, res.ItemsProcessed)
		assert.Equal(t, 2, res.ItemsMigrated)
		assert.Equal(t, 1, res.ItemsFailed)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "id is required")

		n, err := store.Recipes.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("commit failure keeps the counts and fails the run", func(t *testing.T) {
		base := tu.NewStore(t)
		tu.SeedScenario(t, base)
		store := &tu.FailingCommitStore{Store: base}

		res := NewEngine(store, nil).MigrateRecipes(ctx, false, nil)
		assert.False(t, res.Success)
		assert.Equal(t, 2, res.ItemsMigrated)
		assert.Zero(t, res.ItemsFailed)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "commit failed")
		assert.Equal(t, 1, store.Attempts)
	})

	t.Run("dry run never commits", func(t *testing.T) {
		base := tu.NewStore(t)
		tu.SeedScenario(t, base)
		store := &tu.FailingCommitStore{Store: base}

		res := NewEngine(store, nil).MigrateRecipes(ctx, true, nil)
		assert.True(t, res.Success)
		assert.Zero(t, store.Attempts)
	})

	t.Run("cancelled context", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		res := NewEngine(store, nil).MigrateRecipes(cctx, false, nil)
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Errors)
	})
}

func TestMigrateRatings(t *testing.T) {
	ctx := context.Background()

	t.Run("before recipes everything is skipped", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)

		res := NewEngine(store, nil).MigrateRatings(ctx, false, nil)
		assert.True(t, res.Success)
		assert.Equal(t, 2, res.ItemsSkipped)
		assert.Zero(t, res.ItemsMigrated)
		assert.Len(t, res.Warnings, 2)
	})

	t.Run("converges references after recipes", func(t *testing.T) {
		store := tu.NewStore(t)
		sc := tu.SeedScenario(t, store)
		engine := NewEngine(store, nil)

		require.True(t, engine.MigrateRecipes(ctx, false, nil).Success)

		dry := engine.MigrateRatings(ctx, true, nil)
		assert.Equal(t, 2, dry.ItemsMigrated)
		pending, err := store.UnmigratedRatings(ctx)
		require.NoError(t, err)
		assert.Len(t, pending, 2)

		res := engine.MigrateRatings(ctx, false, nil)
		require.True(t, res.Success)
		assert.Equal(t, 2, res.ItemsMigrated)

		for _, seeded := range sc.Ratings {
			rating, err := store.Ratings.Get(ctx, seeded.ID)
			require.NoError(t, err)
			assert.Equal(t, rating.HouseholdRecipeID, rating.UserRecipeID)
		}

		again := engine.MigrateRatings(ctx, false, nil)
		assert.Zero(t, again.ItemsProcessed)
	})
}

func TestMigrateFriendships(t *testing.T) {
	ctx := context.Background()

	t.Run("A/B and B/A produce one friendship", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		tu.AddFriendship(t, store, "hf-1", "household-a", "household-b", models.FriendshipAccepted)
		tu.AddFriendship(t, store, "hf-2", "household-b", "household-a", models.FriendshipAccepted)

		res := NewEngine(store, nil).MigrateFriendships(ctx, false, nil)
		assert.True(t, res.Success)
		assert.Equal(t, 2, res.ItemsProcessed)
		assert.Equal(t, 1, res.ItemsMigrated)
		assert.Equal(t, 1, res.ItemsSkipped)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "already exists")

		friendships, err := store.Friendships.List(ctx)
		require.NoError(t, err)
		require.Len(t, friendships, 1)
		assert.Equal(t, models.NewPairKey("user-ann", "user-bob"), friendships[0].Pair())
		assert.Equal(t, models.FriendshipAccepted, friendships[0].Status)
	})

	t.Run("only accepted friendships are considered", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		tu.AddFriendship(t, store, "hf-1", "household-a", "household-b", models.FriendshipPending)

		res := NewEngine(store, nil).MigrateFriendships(ctx, false, nil)
		assert.Zero(t, res.ItemsProcessed)
	})

	t.Run("skips households without a leader or sharing one", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		tu.Must(t, store.Households.Create(ctx, &models.Household{ID: "household-c", LeaderID: "user-ann"}))
		tu.Must(t, store.Households.Create(ctx, &models.Household{ID: "household-d"}))
		tu.AddFriendship(t, store, "hf-same", "household-a", "household-c", models.FriendshipAccepted)
		tu.AddFriendship(t, store, "hf-none", "household-a", "household-d", models.FriendshipAccepted)

		res := NewEngine(store, nil).MigrateFriendships(ctx, false, nil)
		assert.True(t, res.Success)
		assert.Equal(t, 2, res.ItemsSkipped)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "household-d")
	})

	t.Run("existing user friendship is not duplicated", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		tu.Must(t, store.Friendships.Create(ctx, &models.Friendship{
			ID: "uf-1", RequesterID: "user-bob", TargetID: "user-ann", Status: models.FriendshipAccepted,
		}))
		tu.AddFriendship(t, store, "hf-1", "household-a", "household-b", models.FriendshipAccepted)

		res := NewEngine(store, nil).MigrateFriendships(ctx, false, nil)
		assert.Equal(t, 1, res.ItemsSkipped)
		assert.Zero(t, res.ItemsMigrated)
	})

	t.Run("ids containing the key separator stay distinct", func(t *testing.T) {
		store := tu.NewStore(t)
		for i, leader := range []string{"a|b", "c", "a", "b|c"} {
			tu.Must(t, store.Users.Create(ctx, &models.User{ID: leader}))
			tu.Must(t, store.Households.Create(ctx, &models.Household{ID: fmt.Sprintf("household-%d", i), LeaderID: leader}))
		}
		tu.AddFriendship(t, store, "hf-1", "household-0", "household-1", models.FriendshipAccepted)
		tu.AddFriendship(t, store, "hf-2", "household-2", "household-3", models.FriendshipAccepted)

		res := NewEngine(store, nil).MigrateFriendships(ctx, false, nil)
		require.True(t, res.Success, res.Errors)
		assert.Equal(t, 2, res.ItemsMigrated)

		n, err := store.Friendships.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		rerun := NewEngine(store, nil).MigrateFriendships(ctx, false, nil)
		assert.Zero(t, rerun.ItemsMigrated)
		assert.Equal(t, 2, rerun.ItemsSkipped)
	})

	t.Run("retries colliding ids", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		tu.Must(t, store.Users.Create(ctx, &models.User{ID: "user-cy"}))
		tu.Must(t, store.Households.Create(ctx, &models.Household{ID: "household-c", LeaderID: "user-cy"}))
		tu.Must(t, store.Friendships.Create(ctx, &models.Friendship{
			ID: "taken", RequesterID: "user-cy", TargetID: "user-ann", Status: models.FriendshipAccepted,
		}))
		tu.AddFriendship(t, store, "hf-1", "household-a", "household-b", models.FriendshipAccepted)

		candidates := []string{"taken", "fresh"}
		engine := NewEngine(store, nil)
		engine.SetIDGenerator(func() string {
			id := candidates[0]
			candidates = candidates[1:]
			return id
		}, 2)

		res := engine.MigrateFriendships(ctx, false, nil)
		require.True(t, res.Success, res.Errors)
		assert.Equal(t, 1, res.ItemsMigrated)

		f, err := store.Friendships.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, "user-ann", f.RequesterID)
	})

	t.Run("exhausted ids fail the record", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		tu.AddFriendship(t, store, "hf-1", "household-a", "household-b", models.FriendshipAccepted)

		engine := NewEngine(store, nil)
		engine.SetIDGenerator(func() string { return "" }, 3)

		res := engine.MigrateFriendships(ctx, false, nil)
		assert.False(t, res.Success)
		assert.Equal(t, 1, res.ItemsFailed)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "hf-1")
	})
}

func TestProgressUpdates(t *testing.T) {
	store := tu.NewStore(t)
	tu.SeedScenario(t, store)

	progress := make(chan ProgressUpdate, 32)
	NewEngine(store, nil).MigrateRecipes(context.Background(), false, progress)
	close(progress)

	var phases []Phase
	for u := range progress {
		assert.Equal(t, MigrationRecipes, u.Migration)
		phases = append(phases, u.Phase)
	}
	require.NotEmpty(t, phases)
	assert.Equal(t, LoadRecords, phases[0])
	assert.Contains(t, phases, ConvertRecords)
	assert.Contains(t, phases, CommitRecords)
	assert.Equal(t, Finished, phases[len(phases)-1])

	t.Run("full channel does not block", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		res := NewEngine(store, nil).MigrateRecipes(context.Background(), true, make(chan ProgressUpdate))
		assert.True(t, res.Success)
	})
}
