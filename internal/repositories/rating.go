package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/recipeshift/internal/models"
)

const ratingColumns = `id, user_id, score, comment, household_recipe_id, user_recipe_id, created_at, updated_at`

// orphanFilter matches ratings with a populated reference to a recipe that does not exist.
const orphanFilter = `(r.household_recipe_id IS NOT NULL AND hr.id IS NULL)
	OR (r.user_recipe_id IS NOT NULL AND ur.id IS NULL)`

const orphanJoin = `FROM recipe_ratings r
	LEFT JOIN household_recipes hr ON hr.id = r.household_recipe_id
	LEFT JOIN user_recipes ur ON ur.id = r.user_recipe_id`

// RatingRepository implements [models.Repository] for recipe_ratings.
type RatingRepository struct {
	db Querier
}

// NewRatingRepository creates a new [RatingRepository] with the given database connection
func NewRatingRepository(db Querier) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts a rating
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if err := rating.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	stamp(&rating.CreatedAt, &rating.UpdatedAt)

	query := `INSERT INTO recipe_ratings (` + ratingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		rating.ID,
		rating.UserID,
		rating.Score,
		nullable(rating.Comment),
		nullable(rating.HouseholdRecipeID),
		nullable(rating.UserRecipeID),
		rating.CreatedAt.UTC(),
		rating.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rating: %w", err)
	}
	return nil
}

// Get retrieves a rating by ID
func (r *RatingRepository) Get(ctx context.Context, id string) (*models.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM recipe_ratings WHERE id = $1`
	rating, err := scanRating(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "rating", id)
	}
	return rating, nil
}

// List retrieves every rating
func (r *RatingRepository) List(ctx context.Context) ([]*models.Rating, error) {
	return r.query(ctx, `SELECT `+ratingColumns+` FROM recipe_ratings ORDER BY created_at, id`)
}

// ListUnmigrated retrieves ratings that reference a household recipe but no user recipe.
func (r *RatingRepository) ListUnmigrated(ctx context.Context) ([]*models.Rating, error) {
	return r.query(ctx, `SELECT `+ratingColumns+` FROM recipe_ratings
		WHERE household_recipe_id IS NOT NULL AND user_recipe_id IS NULL
		ORDER BY created_at, id`)
}

// Count returns the number of ratings
func (r *RatingRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM recipe_ratings`)
}

// CountWithHouseholdRecipe counts ratings whose legacy reference is populated.
func (r *RatingRepository) CountWithHouseholdRecipe(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM recipe_ratings WHERE household_recipe_id IS NOT NULL`)
}

// CountWithUserRecipe counts ratings whose new reference is populated.
func (r *RatingRepository) CountWithUserRecipe(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM recipe_ratings WHERE user_recipe_id IS NOT NULL`)
}

// LinkUserRecipe points a rating at a user recipe. Repeating the call is harmless.
func (r *RatingRepository) LinkUserRecipe(ctx context.Context, ratingID, userRecipeID string) error {
	query := `UPDATE recipe_ratings SET user_recipe_id = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, userRecipeID, time.Now().UTC(), ratingID)
	if err != nil {
		return fmt.Errorf("failed to link rating %s: %w", ratingID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound(sql.ErrNoRows, "rating", ratingID)
	}
	return nil
}

// ListOrphaned returns up to limit orphaned ratings ordered by ID, along with the total
// number of orphaned ratings.
func (r *RatingRepository) ListOrphaned(ctx context.Context, limit int) ([]models.OrphanedRating, int, error) {
	total, err := count(ctx, r.db, `SELECT COUNT(*) `+orphanJoin+` WHERE `+orphanFilter)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 || limit <= 0 {
		return nil, total, nil
	}

	query := `SELECT ` + prefixed("r", ratingColumns) + `,
		(r.household_recipe_id IS NOT NULL AND hr.id IS NULL),
		(r.user_recipe_id IS NOT NULL AND ur.id IS NULL)
		` + orphanJoin + `
		WHERE ` + orphanFilter + `
		ORDER BY r.id
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orphaned ratings: %w", err)
	}

	orphans, err := collect(rows, func(s scanner) (models.OrphanedRating, error) {
		var o models.OrphanedRating
		rating, err := scanRating(s, &o.MissingHouseholdRecipe, &o.MissingUserRecipe)
		if err != nil {
			return o, err
		}
		o.Rating = *rating
		return o, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return orphans, total, nil
}

func (r *RatingRepository) query(ctx context.Context, query string, args ...any) ([]*models.Rating, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	return collect(rows, func(s scanner) (*models.Rating, error) { return scanRating(s) })
}

// scanRating scans the rating columns followed by any extra destinations.
func scanRating(s scanner, extra ...any) (*models.Rating, error) {
	var (
		r                         models.Rating
		comment, legacy, migrated sql.NullString
	)

	dest := append([]any{&r.ID, &r.UserID, &r.Score, &comment, &legacy, &migrated, &r.CreatedAt, &r.UpdatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	r.Comment = comment.String
	r.HouseholdRecipeID = legacy.String
	r.UserRecipeID = migrated.String
	return &r, nil
}
