package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/recipeshift/internal/metrics"
	"github.com/desertthunder/recipeshift/internal/migrate"
	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/shared"
	tu "github.com/desertthunder/recipeshift/internal/testing"
	"github.com/desertthunder/recipeshift/internal/verify"
)

func newService(t *testing.T) (*AdminService, *metrics.Metrics) {
	t.Helper()
	store := tu.NewStore(t)
	tu.SeedScenario(t, store)

	m := metrics.New()
	svc := NewAdminService(
		migrate.NewEngine(store, nil),
		verify.NewEngine(store, nil, verify.Options{Concurrent: true}),
		nil,
		m,
	)
	return svc, m
}

func TestAdminService(t *testing.T) {
	ctx := context.Background()

	t.Run("complete migration then verification", func(t *testing.T) {
		svc, m := newService(t)

		result := svc.RunCompleteMigration(ctx, false, nil)
		require.True(t, result.Success)

		stats, err := svc.MigrationStats(ctx)
		require.NoError(t, err)
		assert.True(t, stats.MigrationComplete)
		assert.Equal(t, 2, stats.TotalUserRecipes)
		assert.Equal(t, 2, stats.RatingsWithUserRecipeID)

		report, err := svc.RunAllVerifications(ctx)
		require.NoError(t, err)
		assert.True(t, report.AllPassed)

		assert.Equal(t, 1.0, testutil.ToFloat64(m.MigrationRuns.WithLabelValues(migrate.MigrationRecipes, "false", "true")))
		assert.Equal(t, 2.0, testutil.ToFloat64(m.MigrationItems.WithLabelValues(migrate.MigrationRatings, "migrated")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.VerificationRuns.WithLabelValues(verify.CheckDataIntegrity, "true")))
	})

	t.Run("individual operations", func(t *testing.T) {
		svc, m := newService(t)

		res := svc.MigrateRecipes(ctx, true, nil)
		assert.True(t, res.DryRun)
		assert.Equal(t, 2, res.ItemsMigrated)

		check, err := svc.VerifyRecipes(ctx)
		require.NoError(t, err)
		assert.False(t, check.Passed)
		assert.Equal(t, 2.0, testutil.ToFloat64(m.VerificationIssues.WithLabelValues(verify.CheckRecipeMigration, "error")))

		for _, fn := range []func(context.Context) (*verify.Result, error){
			svc.VerifyRatings, svc.VerifyIntegrity, svc.CheckOrphans,
		} {
			_, err := fn(ctx)
			assert.NoError(t, err)
		}

		assert.True(t, svc.MigrateRatings(ctx, true, nil).Success)
		assert.True(t, svc.MigrateFriendships(ctx, true, nil).Success)
	})

	t.Run("history records every run", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		svc := NewAdminService(migrate.NewEngine(store, nil), verify.NewEngine(store, nil, verify.Options{}), nil, nil).
			WithHistory(store.Runs)

		svc.MigrateRecipes(ctx, true, nil)
		svc.RunCompleteMigration(ctx, false, nil)

		runs, err := svc.MigrationHistory(ctx, 0)
		require.NoError(t, err)
		require.Len(t, runs, 4)
		assert.True(t, runs[len(runs)-1].DryRun)
		assert.Equal(t, migrate.MigrationRecipes, runs[len(runs)-1].Migration)
		for _, run := range runs[:3] {
			assert.False(t, run.DryRun)
			assert.True(t, run.Success)
		}

		runs, err = svc.MigrationHistory(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})

	t.Run("history without a recorder is empty", func(t *testing.T) {
		svc, _ := newService(t)
		svc.MigrateRecipes(ctx, true, nil)

		runs, err := svc.MigrationHistory(ctx, 5)
		require.NoError(t, err)
		assert.NotNil(t, runs)
		assert.Empty(t, runs)
	})

	t.Run("history write failure keeps the result", func(t *testing.T) {
		store := tu.NewStore(t)
		tu.SeedScenario(t, store)
		svc := NewAdminService(migrate.NewEngine(store, nil), verify.NewEngine(store, nil, verify.Options{}), nil, nil).
			WithHistory(failingHistory{})

		res := svc.MigrateRecipes(ctx, true, nil)
		assert.True(t, res.Success)

		_, err := svc.MigrationHistory(ctx, 5)
		assert.True(t, errors.Is(err, shared.ErrStoreRead))
	})

	t.Run("store errors propagate", func(t *testing.T) {
		store := tu.NewStore(t)
		store.DB().Close()

		svc := NewAdminService(migrate.NewEngine(store, nil), verify.NewEngine(store, nil, verify.Options{}), nil, nil)

		_, err := svc.MigrationStats(ctx)
		assert.True(t, errors.Is(err, shared.ErrStoreRead))

		_, err = svc.RunAllVerifications(ctx)
		assert.True(t, errors.Is(err, shared.ErrStoreRead))

		_, err = svc.CheckOrphans(ctx)
		assert.True(t, errors.Is(err, shared.ErrStoreRead))

		res := svc.MigrateRecipes(ctx, false, nil)
		assert.False(t, res.Success)
	})
}

type failingHistory struct{}

func (failingHistory) Create(context.Context, *models.MigrationRun) error {
	return shared.ErrCommitFailed
}

func (failingHistory) Recent(context.Context, int) ([]*models.MigrationRun, error) {
	return nil, shared.ErrStoreRead
}
