// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/repositories"
	"github.com/desertthunder/recipeshift/internal/shared"
)

// ErrInjected is returned by the failing test doubles.
var ErrInjected = errors.New("injected failure")

// Epoch is the creation time of the first seeded record.
var Epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// NewStore opens an in-memory database with the schema applied and closes it when the test ends.
func NewStore(t *testing.T) *repositories.Store {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return repositories.NewStore(db)
}

// Scenario names the records seeded by [SeedScenario].
type Scenario struct {
	Users      []*models.User
	Households []*models.Household
	Recipes    []*models.LegacyRecipe
	Ratings    []*models.Rating
}

// SeedScenario seeds two households led by two users, one private and one public household
// recipe, and one rating for each recipe.
func SeedScenario(t *testing.T, store *repositories.Store) *Scenario {
	t.Helper()
	ctx := context.Background()

	sc := &Scenario{
		Users: []*models.User{
			{ID: "user-ann", Email: "ann@example.com", Name: "Ann"},
			{ID: "user-bob", Email: "bob@example.com", Name: "Bob"},
		},
		Households: []*models.Household{
			{ID: "household-a", Name: "Ann's kitchen", LeaderID: "user-ann"},
			{ID: "household-b", Name: "Bob's kitchen", LeaderID: "user-bob"},
		},
		Recipes: []*models.LegacyRecipe{
			{
				ID:          "recipe-stew",
				HouseholdID: "household-a",
				Title:       "Winter stew",
				Ingredients: "beef, carrots",
				ImageURL:    "https://img.example/stew.png",
				IsPublic:    false,
				AddedBy:     "user-ann",
				CreatedAt:   Epoch,
			},
			{
				ID:             "recipe-salad",
				HouseholdID:    "household-b",
				GlobalRecipeID: "global-salad",
				Title:          "Summer salad",
				IsPublic:       true,
				AddedBy:        "user-bob",
				CreatedAt:      Epoch.Add(time.Hour),
			},
		},
		Ratings: []*models.Rating{
			{ID: "rating-stew", UserID: "user-bob", Score: 5, HouseholdRecipeID: "recipe-stew", CreatedAt: Epoch},
			{ID: "rating-salad", UserID: "user-ann", Score: 4, HouseholdRecipeID: "recipe-salad", CreatedAt: Epoch},
		},
	}

	for _, u := range sc.Users {
		Must(t, store.Users.Create(ctx, u))
	}
	for _, h := range sc.Households {
		Must(t, store.Households.Create(ctx, h))
	}
	for _, r := range sc.Recipes {
		Must(t, store.LegacyRecipes.Create(ctx, r))
	}
	for _, r := range sc.Ratings {
		Must(t, store.Ratings.Create(ctx, r))
	}
	return sc
}

// AddFriendship seeds a household friendship.
func AddFriendship(t *testing.T, store *repositories.Store, id, requester, target string, status models.FriendshipStatus) {
	t.Helper()
	Must(t, store.LegacyFriendships.Create(context.Background(), &models.LegacyFriendship{
		ID:                   id,
		RequesterHouseholdID: requester,
		TargetHouseholdID:    target,
		Status:               status,
		CreatedAt:            Epoch,
	}))
}

// Must fails the test on a non-nil error.
func Must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// FailingCommitStore is a [repositories.Store] whose Commit always fails.
type FailingCommitStore struct {
	*repositories.Store
	Attempts int
}

func (s *FailingCommitStore) Commit(ctx context.Context, batch *repositories.Batch) error {
	s.Attempts++
	return ErrInjected
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
