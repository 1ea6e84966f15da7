package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/shared"
)

func TestRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewRecipeRepository(setupTestDB(t))
			err := repo.Create(ctx, &models.Recipe{ID: "r1", UserID: "u1", Visibility: models.VisibilityPrivate})
			if !errors.Is(err, shared.ErrInvalidRecord) {
				t.Fatalf("expected validation error for recipe without title, got %v", err)
			}
		})

		t.Run("SelfFriendship", func(t *testing.T) {
			repo := NewFriendshipRepository(setupTestDB(t))
			err := repo.Create(ctx, &models.Friendship{ID: "f1", RequesterID: "a", TargetID: "a", Status: models.FriendshipAccepted})
			if err == nil {
				t.Fatal("expected error for self friendship")
			}
		})

		t.Run("DuplicateLegacyID", func(t *testing.T) {
			repo := NewLegacyRecipeRepository(setupTestDB(t))
			recipe := &models.LegacyRecipe{ID: "r1", HouseholdID: "h1"}
			if err := repo.Create(ctx, recipe); err != nil {
				t.Fatalf("failed to create recipe: %v", err)
			}
			if err := repo.Create(ctx, recipe); err == nil {
				t.Fatal("expected error for duplicate household recipe id")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)

			if _, err := NewUserRepository(db).Get(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound for user, got %v", err)
			}
			if _, err := NewRecipeRepository(db).Get(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound for recipe, got %v", err)
			}
			if _, err := NewFriendshipRepository(db).Get(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound for friendship, got %v", err)
			}
		})
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		db := setupTestDB(t)
		store := NewStore(db)
		db.Close()

		if _, err := store.OwnedLegacyRecipes(ctx); err == nil {
			t.Error("expected error reading from closed database")
		}
		if _, err := store.Counts(ctx); err == nil {
			t.Error("expected error counting on closed database")
		}
		if err := store.Commit(ctx, &Batch{RatingLinks: []RatingLink{{RatingID: "x", UserRecipeID: "y"}}}); !errors.Is(err, shared.ErrCommitFailed) {
			t.Errorf("expected ErrCommitFailed, got %v", err)
		}
	})
}
