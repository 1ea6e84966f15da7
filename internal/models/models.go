// package models defines the data model for the recipe catalog
package models

import (
	"context"
	"fmt"

	"github.com/desertthunder/recipeshift/internal/shared"
)

// Model defines the base interface for records that can be validated before they are written.
type Model interface {
	Validate() error // Validate checks if the record's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific record types.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error     // Create inserts a new record into the database
	Get(ctx context.Context, id string) (T, error) // Get retrieves a record by its ID
	List(ctx context.Context) ([]T, error)         // List retrieves every record in the table
	Count(ctx context.Context) (int, error)        // Count returns the number of rows in the table
}

// RecordType names a table in the catalog as it appears in verification issues.
type RecordType string

const (
	RecordHouseholdRecipe     RecordType = "HouseholdRecipe"
	RecordUserRecipe          RecordType = "UserRecipe"
	RecordRecipeRating        RecordType = "RecipeRating"
	RecordHouseholdFriendship RecordType = "HouseholdFriendship"
	RecordUserFriendship      RecordType = "UserFriendship"
)

func invalid(rt RecordType, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", shared.ErrInvalidRecord, rt, fmt.Sprintf(format, args...))
}
