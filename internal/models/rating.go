package models

import "time"

// Rating is a row of recipe_ratings.
//
// HouseholdRecipeID is the legacy reference and UserRecipeID the new one. Once the
// catalog is migrated every populated HouseholdRecipeID has an equal UserRecipeID.
type Rating struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Score             int       `json:"score"`
	Comment           string    `json:"comment,omitempty"`
	HouseholdRecipeID string    `json:"householdRecipeId,omitempty"`
	UserRecipeID      string    `json:"userRecipeId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Validate requires an ID and a rater.
func (r *Rating) Validate() error {
	if r.ID == "" {
		return invalid(RecordRecipeRating, "id is required")
	}
	if r.UserID == "" {
		return invalid(RecordRecipeRating, "%s: user id is required", r.ID)
	}
	return nil
}

// NeedsMigration reports whether the rating still points only at a household recipe.
func (r *Rating) NeedsMigration() bool {
	return r.HouseholdRecipeID != "" && r.UserRecipeID == ""
}

// OrphanedRating is a rating whose populated references do not resolve.
type OrphanedRating struct {
	Rating                 Rating `json:"rating"`
	MissingHouseholdRecipe bool   `json:"missingHouseholdRecipe"`
	MissingUserRecipe      bool   `json:"missingUserRecipe"`
}
