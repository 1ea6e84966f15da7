package migrate

import (
	"context"
	"time"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/repositories"
	"github.com/desertthunder/recipeshift/internal/shared"
)

// MigrateFriendships creates a user friendship between the leaders of the two households
// of every accepted household friendship.
//
// Friendships whose households lack a leader are skipped with a warning, friendships whose
// households share a leader are skipped silently, and pairs that already have a friendship
// (in the table or earlier in the same run) are skipped with a warning.
func (e *Engine) MigrateFriendships(ctx context.Context, dryRun bool, progress chan<- ProgressUpdate) *Result {
	start := time.Now()
	res := newResult(MigrationFriendships, dryRun)
	logger := e.migrationLogger(MigrationFriendships, dryRun)
	logger.Info("migration started")

	e.sendProgress(progress, loadUpdate(MigrationFriendships, "household friendships"))

	legacy, err := e.store.AcceptedLegacyFriendships(ctx)
	if err != nil {
		res.abort("failed to load household friendships: %v", err)
		return e.done(logger, res, start, progress)
	}

	leaders, err := e.store.HouseholdLeaders(ctx)
	if err != nil {
		res.abort("failed to load household leaders: %v", err)
		return e.done(logger, res, start, progress)
	}

	pairs, err := e.store.FriendshipPairs(ctx)
	if err != nil {
		res.abort("failed to load user friendships: %v", err)
		return e.done(logger, res, start, progress)
	}

	ids, err := e.store.FriendshipIDs(ctx)
	if err != nil {
		res.abort("failed to load user friendship ids: %v", err)
		return e.done(logger, res, start, progress)
	}
	taken := func(id string) bool {
		_, ok := ids[id]
		return ok
	}

	batch := &repositories.Batch{}
	total := len(legacy)

	for i, lf := range legacy {
		if err := ctx.Err(); err != nil {
			res.abort("interrupted: %v", err)
			return e.done(logger, res, start, progress)
		}

		res.ItemsProcessed++
		e.sendProgress(progress, convertUpdate(MigrationFriendships, i+1, total, lf.ID))

		requester, ok := leaders[lf.RequesterHouseholdID]
		if !ok {
			res.skip("household friendship %s: household %s has no leader", lf.ID, lf.RequesterHouseholdID)
			logger.Warn("skipping friendship", "id", lf.ID, "household", lf.RequesterHouseholdID, "reason", "no leader")
			continue
		}
		target, ok := leaders[lf.TargetHouseholdID]
		if !ok {
			res.skip("household friendship %s: household %s has no leader", lf.ID, lf.TargetHouseholdID)
			logger.Warn("skipping friendship", "id", lf.ID, "household", lf.TargetHouseholdID, "reason", "no leader")
			continue
		}

		if requester == target {
			res.ItemsSkipped++
			logger.Debug("skipping friendship", "id", lf.ID, "reason", "same leader")
			continue
		}

		pair := models.NewPairKey(requester, target)
		if _, ok := pairs[pair]; ok {
			res.skip("household friendship %s: friendship between %s and %s already exists", lf.ID, pair[0], pair[1])
			logger.Warn("skipping friendship", "id", lf.ID, "pair", pair.String(), "reason", "already exists")
			continue
		}

		id, err := shared.UniqueID(e.newID, taken, e.idAttempts)
		if err != nil {
			res.fail(models.RecordHouseholdFriendship, lf.ID, err)
			logger.Error("cannot allocate friendship id", "id", lf.ID, "err", err)
			continue
		}

		friendship := &models.Friendship{
			ID:          id,
			RequesterID: requester,
			TargetID:    target,
			Status:      lf.Status,
			Message:     lf.Message,
			CreatedAt:   lf.CreatedAt,
			UpdatedAt:   lf.UpdatedAt,
		}
		if err := friendship.Validate(); err != nil {
			res.fail(models.RecordHouseholdFriendship, lf.ID, err)
			logger.Error("cannot convert friendship", "id", lf.ID, "err", err)
			continue
		}

		pairs[pair] = struct{}{}
		ids[id] = struct{}{}
		batch.Friendships = append(batch.Friendships, friendship)
		res.ItemsMigrated++
	}

	e.commit(ctx, res, batch, progress)
	return e.done(logger, res, start, progress)
}
