package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/shared"
)

// RatingLink repoints one rating at the user recipe with the given ID.
type RatingLink struct {
	RatingID     string
	UserRecipeID string
}

// Batch is the set of writes one migrator produces.
type Batch struct {
	Recipes     []*models.Recipe
	RatingLinks []RatingLink
	Friendships []*models.Friendship
}

// Len returns the number of writes in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Recipes) + len(b.RatingLinks) + len(b.Friendships)
}

// Store is the record store of the catalog: typed reads over every table and a single
// atomic commit for migration output.
type Store struct {
	db *sql.DB

	Users             *UserRepository
	Households        *HouseholdRepository
	LegacyRecipes     *LegacyRecipeRepository
	Recipes           *RecipeRepository
	Ratings           *RatingRepository
	LegacyFriendships *LegacyFriendshipRepository
	Friendships       *FriendshipRepository
	Runs              *RunRepository
}

// NewStore creates a [Store] over db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		Users:             NewUserRepository(db),
		Households:        NewHouseholdRepository(db),
		LegacyRecipes:     NewLegacyRecipeRepository(db),
		Recipes:           NewRecipeRepository(db),
		Ratings:           NewRatingRepository(db),
		LegacyFriendships: NewLegacyFriendshipRepository(db),
		Friendships:       NewFriendshipRepository(db),
		Runs:              NewRunRepository(db),
	}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Commit writes every record in batch inside one transaction. Nothing is written when
// any statement fails.
func (s *Store) Commit(ctx context.Context, batch *Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", shared.ErrCommitFailed, err)
	}
	defer tx.Rollback()

	recipes := NewRecipeRepository(tx)
	for _, recipe := range batch.Recipes {
		if err := recipes.Create(ctx, recipe); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrCommitFailed, err)
		}
	}

	ratings := NewRatingRepository(tx)
	for _, link := range batch.RatingLinks {
		if err := ratings.LinkUserRecipe(ctx, link.RatingID, link.UserRecipeID); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrCommitFailed, err)
		}
	}

	friendships := NewFriendshipRepository(tx)
	for _, f := range batch.Friendships {
		if err := friendships.Create(ctx, f); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrCommitFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrCommitFailed, err)
	}
	return nil
}

// OwnedLegacyRecipes returns household recipes that name who added them, oldest first.
func (s *Store) OwnedLegacyRecipes(ctx context.Context) ([]*models.LegacyRecipe, error) {
	return s.LegacyRecipes.ListOwned(ctx)
}

// AllLegacyRecipes returns every household recipe.
func (s *Store) AllLegacyRecipes(ctx context.Context) ([]*models.LegacyRecipe, error) {
	return s.LegacyRecipes.List(ctx)
}

// AllRecipes returns every user recipe.
func (s *Store) AllRecipes(ctx context.Context) ([]*models.Recipe, error) {
	return s.Recipes.List(ctx)
}

// RecipeIDs returns the IDs of every user recipe.
func (s *Store) RecipeIDs(ctx context.Context) (map[string]struct{}, error) {
	return s.Recipes.IDs(ctx)
}

// RecipesWithoutOwner returns user recipes whose owner is not a known user.
func (s *Store) RecipesWithoutOwner(ctx context.Context) ([]*models.Recipe, error) {
	return s.Recipes.ListWithoutOwner(ctx)
}

// UnmigratedRatings returns ratings that still only reference a household recipe.
func (s *Store) UnmigratedRatings(ctx context.Context) ([]*models.Rating, error) {
	return s.Ratings.ListUnmigrated(ctx)
}

// OrphanedRatings returns up to limit ratings with dangling references plus their total.
func (s *Store) OrphanedRatings(ctx context.Context, limit int) ([]models.OrphanedRating, int, error) {
	return s.Ratings.ListOrphaned(ctx, limit)
}

// AcceptedLegacyFriendships returns accepted household friendships, oldest first.
func (s *Store) AcceptedLegacyFriendships(ctx context.Context) ([]*models.LegacyFriendship, error) {
	return s.LegacyFriendships.ListByStatus(ctx, models.FriendshipAccepted)
}

// HouseholdLeaders maps household IDs onto their leader's user ID.
func (s *Store) HouseholdLeaders(ctx context.Context) (map[string]string, error) {
	return s.Households.Leaders(ctx)
}

// FriendshipPairs returns the user pairs that already have a friendship.
func (s *Store) FriendshipPairs(ctx context.Context) (map[models.PairKey]struct{}, error) {
	return s.Friendships.Pairs(ctx)
}

// FriendshipIDs returns the IDs of every user friendship.
func (s *Store) FriendshipIDs(ctx context.Context) (map[string]struct{}, error) {
	return s.Friendships.IDs(ctx)
}

// Counts is a snapshot of table sizes used for migration statistics.
type Counts struct {
	LegacyRecipes              int
	UserRecipes                int
	LegacyRecipesNotMigrated   int
	RatingsWithHouseholdRecipe int
	RatingsWithUserRecipe      int
	Ratings                    int
	AcceptedLegacyFriendships  int
	AcceptedFriendships        int
}

// Counts reads every statistic in one pass. The first failing query aborts the snapshot.
func (s *Store) Counts(ctx context.Context) (*Counts, error) {
	var (
		c   Counts
		err error
	)

	steps := []struct {
		dst *int
		fn  func(context.Context) (int, error)
	}{
		{&c.LegacyRecipes, s.LegacyRecipes.Count},
		{&c.UserRecipes, s.Recipes.Count},
		{&c.LegacyRecipesNotMigrated, s.LegacyRecipes.CountNotMigrated},
		{&c.RatingsWithHouseholdRecipe, s.Ratings.CountWithHouseholdRecipe},
		{&c.RatingsWithUserRecipe, s.Ratings.CountWithUserRecipe},
		{&c.Ratings, s.Ratings.Count},
		{&c.AcceptedLegacyFriendships, func(ctx context.Context) (int, error) {
			return s.LegacyFriendships.CountByStatus(ctx, models.FriendshipAccepted)
		}},
		{&c.AcceptedFriendships, func(ctx context.Context) (int, error) {
			return s.Friendships.CountByStatus(ctx, models.FriendshipAccepted)
		}},
	}

	for _, step := range steps {
		if *step.dst, err = step.fn(ctx); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
