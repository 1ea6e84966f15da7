package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/recipeshift/internal/models"
)

const legacyRecipeColumns = `id, household_id, global_recipe_id, title, description, ingredients, instructions,
	notes, image_url, image_urls, is_public, is_archived, archived_at, added_by, created_at, updated_at`

// LegacyRecipeRepository reads household_recipes.
//
// Create exists for seeding; nothing in a migration writes to this table.
type LegacyRecipeRepository struct {
	db Querier
}

// NewLegacyRecipeRepository creates a new [LegacyRecipeRepository] with the given database connection
func NewLegacyRecipeRepository(db Querier) *LegacyRecipeRepository {
	return &LegacyRecipeRepository{db: db}
}

// Create inserts a household recipe
func (r *LegacyRecipeRepository) Create(ctx context.Context, recipe *models.LegacyRecipe) error {
	if err := recipe.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	stamp(&recipe.CreatedAt, &recipe.UpdatedAt)

	images, err := encodeImages(recipe.ImageURLs)
	if err != nil {
		return err
	}

	query := `INSERT INTO household_recipes (` + legacyRecipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.db.ExecContext(ctx, query,
		recipe.ID,
		recipe.HouseholdID,
		nullable(recipe.GlobalRecipeID),
		nullable(recipe.Title),
		nullable(recipe.Description),
		nullable(recipe.Ingredients),
		nullable(recipe.Instructions),
		nullable(recipe.Notes),
		nullable(recipe.ImageURL),
		images,
		recipe.IsPublic,
		recipe.IsArchived,
		nullableTime(recipe.ArchivedAt),
		nullable(recipe.AddedBy),
		recipe.CreatedAt.UTC(),
		recipe.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert household recipe: %w", err)
	}
	return nil
}

// Get retrieves a household recipe by ID
func (r *LegacyRecipeRepository) Get(ctx context.Context, id string) (*models.LegacyRecipe, error) {
	query := `SELECT ` + legacyRecipeColumns + ` FROM household_recipes WHERE id = $1`
	recipe, err := scanLegacyRecipe(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "household recipe", id)
	}
	return recipe, nil
}

// List retrieves every household recipe ordered by creation time
func (r *LegacyRecipeRepository) List(ctx context.Context) ([]*models.LegacyRecipe, error) {
	return r.query(ctx, `SELECT `+legacyRecipeColumns+` FROM household_recipes ORDER BY created_at, id`)
}

// ListOwned retrieves household recipes that name the person who added them.
func (r *LegacyRecipeRepository) ListOwned(ctx context.Context) ([]*models.LegacyRecipe, error) {
	return r.query(ctx, `SELECT `+legacyRecipeColumns+` FROM household_recipes
		WHERE added_by IS NOT NULL ORDER BY created_at, id`)
}

// ListNotMigrated retrieves owned household recipes with no user recipe of the same ID.
func (r *LegacyRecipeRepository) ListNotMigrated(ctx context.Context) ([]*models.LegacyRecipe, error) {
	return r.query(ctx, `SELECT `+prefixed("hr", legacyRecipeColumns)+` FROM household_recipes hr
		LEFT JOIN user_recipes ur ON ur.id = hr.id
		WHERE hr.added_by IS NOT NULL AND ur.id IS NULL
		ORDER BY hr.created_at, hr.id`)
}

// Count returns the number of household recipes
func (r *LegacyRecipeRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM household_recipes`)
}

// CountNotMigrated counts the rows [LegacyRecipeRepository.ListNotMigrated] would return.
func (r *LegacyRecipeRepository) CountNotMigrated(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM household_recipes hr
		LEFT JOIN user_recipes ur ON ur.id = hr.id
		WHERE hr.added_by IS NOT NULL AND ur.id IS NULL`)
}

func (r *LegacyRecipeRepository) query(ctx context.Context, query string, args ...any) ([]*models.LegacyRecipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query household recipes: %w", err)
	}
	return collect(rows, scanLegacyRecipe)
}

func scanLegacyRecipe(s scanner) (*models.LegacyRecipe, error) {
	var (
		r                                       models.LegacyRecipe
		global, title, desc, ingredients, steps sql.NullString
		notes, imageURL, addedBy                sql.NullString
		images                                  string
		archivedAt                              sql.NullTime
	)

	err := s.Scan(&r.ID, &r.HouseholdID, &global, &title, &desc, &ingredients, &steps,
		&notes, &imageURL, &images, &r.IsPublic, &r.IsArchived, &archivedAt, &addedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	urls, err := decodeImages(images)
	if err != nil {
		return nil, err
	}

	r.GlobalRecipeID = global.String
	r.Title = title.String
	r.Description = desc.String
	r.Ingredients = ingredients.String
	r.Instructions = steps.String
	r.Notes = notes.String
	r.ImageURL = imageURL.String
	r.ImageURLs = urls
	r.ArchivedAt = timePtr(archivedAt)
	r.AddedBy = addedBy.String
	return &r, nil
}

const recipeColumns = `id, user_id, global_recipe_id, title, description, ingredients, instructions,
	notes, image_url, image_urls, visibility, is_archived, archived_at, created_at, updated_at`

// RecipeRepository implements [models.Repository] for user_recipes.
type RecipeRepository struct {
	db Querier
}

// NewRecipeRepository creates a new [RecipeRepository] with the given database connection
func NewRecipeRepository(db Querier) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts a user recipe. A row with the same ID is left untouched.
func (r *RecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if err := recipe.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	stamp(&recipe.CreatedAt, &recipe.UpdatedAt)

	images, err := encodeImages(recipe.ImageURLs)
	if err != nil {
		return err
	}

	query := `INSERT INTO user_recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT DO NOTHING`

	_, err = r.db.ExecContext(ctx, query,
		recipe.ID,
		recipe.UserID,
		nullable(recipe.GlobalRecipeID),
		nullable(recipe.Title),
		nullable(recipe.Description),
		nullable(recipe.Ingredients),
		nullable(recipe.Instructions),
		nullable(recipe.Notes),
		nullable(recipe.ImageURL),
		images,
		string(recipe.Visibility),
		recipe.IsArchived,
		nullableTime(recipe.ArchivedAt),
		recipe.CreatedAt.UTC(),
		recipe.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user recipe %s: %w", recipe.ID, err)
	}
	return nil
}

// Get retrieves a user recipe by ID
func (r *RecipeRepository) Get(ctx context.Context, id string) (*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM user_recipes WHERE id = $1`
	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "user recipe", id)
	}
	return recipe, nil
}

// List retrieves every user recipe ordered by creation time
func (r *RecipeRepository) List(ctx context.Context) ([]*models.Recipe, error) {
	return r.query(ctx, `SELECT `+recipeColumns+` FROM user_recipes ORDER BY created_at, id`)
}

// ListWithoutOwner retrieves user recipes whose user_id matches no user.
func (r *RecipeRepository) ListWithoutOwner(ctx context.Context) ([]*models.Recipe, error) {
	return r.query(ctx, `SELECT `+prefixed("ur", recipeColumns)+` FROM user_recipes ur
		LEFT JOIN users u ON u.id = ur.user_id
		WHERE u.id IS NULL
		ORDER BY ur.created_at, ur.id`)
}

// Count returns the number of user recipes
func (r *RecipeRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM user_recipes`)
}

// IDs returns the set of every user recipe ID.
func (r *RecipeRepository) IDs(ctx context.Context) (map[string]struct{}, error) {
	return idSet(ctx, r.db, `SELECT id FROM user_recipes`)
}

func (r *RecipeRepository) query(ctx context.Context, query string, args ...any) ([]*models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user recipes: %w", err)
	}
	return collect(rows, scanRecipe)
}

func scanRecipe(s scanner) (*models.Recipe, error) {
	var (
		r                                       models.Recipe
		global, title, desc, ingredients, steps sql.NullString
		notes, imageURL                         sql.NullString
		images, visibility                      string
		archivedAt                              sql.NullTime
	)

	err := s.Scan(&r.ID, &r.UserID, &global, &title, &desc, &ingredients, &steps,
		&notes, &imageURL, &images, &visibility, &r.IsArchived, &archivedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	urls, err := decodeImages(images)
	if err != nil {
		return nil, err
	}

	r.GlobalRecipeID = global.String
	r.Title = title.String
	r.Description = desc.String
	r.Ingredients = ingredients.String
	r.Instructions = steps.String
	r.Notes = notes.String
	r.ImageURL = imageURL.String
	r.ImageURLs = urls
	r.Visibility = models.Visibility(visibility)
	r.ArchivedAt = timePtr(archivedAt)
	return &r, nil
}
