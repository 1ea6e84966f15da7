package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/shared"
)

func TestRunRepository(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	run := func(migration string, offset time.Duration) *models.MigrationRun {
		return &models.MigrationRun{
			Migration:     migration,
			Success:       true,
			ItemsMigrated: 3,
			StartedAt:     base.Add(offset),
			CompletedAt:   base.Add(offset + time.Second),
		}
	}

	t.Run("Create & Get", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))

		r := run("recipes", 0)
		r.ErrorMessage = "household recipe x: invalid record"
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if r.ID == "" {
			t.Fatal("expected an ID to be generated")
		}

		got, err := repo.Get(ctx, r.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Migration != "recipes" || got.ItemsMigrated != 3 || !got.Success {
			t.Errorf("unexpected run: %+v", got)
		}
		if got.ErrorMessage != r.ErrorMessage {
			t.Errorf("expected error message %q, got %q", r.ErrorMessage, got.ErrorMessage)
		}
		if got.Duration() != time.Second {
			t.Errorf("expected 1s duration, got %v", got.Duration())
		}
	})

	t.Run("Recent is newest first", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))

		for i, name := range []string{"recipes", "ratings", "friendships"} {
			if err := repo.Create(ctx, run(name, time.Duration(i)*time.Minute)); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		recent, err := repo.Recent(ctx, 2)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(recent) != 2 || recent[0].Migration != "friendships" || recent[1].Migration != "ratings" {
			t.Errorf("unexpected order: %v, %v", recent[0].Migration, recent[1].Migration)
		}

		all, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		n, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if len(all) != 3 || n != 3 {
			t.Errorf("expected 3 runs, got %d listed and %d counted", len(all), n)
		}
	})

	t.Run("validation", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))

		bad := run("", 0)
		if err := repo.Create(ctx, bad); !errors.Is(err, shared.ErrInvalidRecord) {
			t.Errorf("expected ErrInvalidRecord, got %v", err)
		}

		_, err := repo.Get(ctx, "missing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
