package models

import (
	"time"
)

// Visibility controls who can see a [Recipe].
type Visibility string

const (
	VisibilityPrivate   Visibility = "private"
	VisibilityHousehold Visibility = "household"
	VisibilityPublic    Visibility = "public"
)

// VisibilityFromPublic maps the legacy public flag onto a [Visibility].
func VisibilityFromPublic(isPublic bool) Visibility {
	if isPublic {
		return VisibilityPublic
	}
	return VisibilityHousehold
}

// Valid reports whether v is one of the known visibilities.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityHousehold, VisibilityPublic:
		return true
	}
	return false
}

// LegacyRecipe is a row of household_recipes.
//
// AddedBy is the person who added the recipe; rows without one cannot be migrated.
type LegacyRecipe struct {
	ID             string     `json:"id"`
	HouseholdID    string     `json:"householdId"`
	GlobalRecipeID string     `json:"globalRecipeId,omitempty"`
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description,omitempty"`
	Ingredients    string     `json:"ingredients,omitempty"`
	Instructions   string     `json:"instructions,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	ImageURLs      []string   `json:"imageUrls"`
	IsPublic       bool       `json:"isPublic"`
	IsArchived     bool       `json:"isArchived"`
	ArchivedAt     *time.Time `json:"archivedAt,omitempty"`
	AddedBy        string     `json:"addedBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Validate checks the identifiers a household recipe needs to be stored.
func (r *LegacyRecipe) Validate() error {
	if r.ID == "" {
		return invalid(RecordHouseholdRecipe, "id is required")
	}
	if r.HouseholdID == "" {
		return invalid(RecordHouseholdRecipe, "%s: household id is required", r.ID)
	}
	return nil
}

// Recipe is a row of user_recipes.
type Recipe struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	GlobalRecipeID string     `json:"globalRecipeId,omitempty"`
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description,omitempty"`
	Ingredients    string     `json:"ingredients,omitempty"`
	Instructions   string     `json:"instructions,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	ImageURLs      []string   `json:"imageUrls"`
	Visibility     Visibility `json:"visibility"`
	IsArchived     bool       `json:"isArchived"`
	ArchivedAt     *time.Time `json:"archivedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Validate requires an ID, an owner and a known visibility. Content fields are copied as they are.
func (r *Recipe) Validate() error {
	if r.ID == "" {
		return invalid(RecordUserRecipe, "id is required")
	}
	if r.UserID == "" {
		return invalid(RecordUserRecipe, "%s: user id is required", r.ID)
	}
	if !r.Visibility.Valid() {
		return invalid(RecordUserRecipe, "%s: unknown visibility %q", r.ID, r.Visibility)
	}
	return nil
}

// NewRecipeFromLegacy builds the user-owned copy of a household recipe.
//
// The copy keeps the legacy ID, is owned by the person who added it and gets its
// visibility from the public flag. A lone ImageURL seeds an empty ImageURLs list.
func NewRecipeFromLegacy(legacy *LegacyRecipe) *Recipe {
	images := append([]string(nil), legacy.ImageURLs...)
	if len(images) == 0 && legacy.ImageURL != "" {
		images = []string{legacy.ImageURL}
	}

	var archivedAt *time.Time
	if legacy.ArchivedAt != nil {
		t := *legacy.ArchivedAt
		archivedAt = &t
	}

	return &Recipe{
		ID:             legacy.ID,
		UserID:         legacy.AddedBy,
		GlobalRecipeID: legacy.GlobalRecipeID,
		Title:          legacy.Title,
		Description:    legacy.Description,
		Ingredients:    legacy.Ingredients,
		Instructions:   legacy.Instructions,
		Notes:          legacy.Notes,
		ImageURL:       legacy.ImageURL,
		ImageURLs:      images,
		Visibility:     VisibilityFromPublic(legacy.IsPublic),
		IsArchived:     legacy.IsArchived,
		ArchivedAt:     archivedAt,
		CreatedAt:      legacy.CreatedAt,
		UpdatedAt:      legacy.UpdatedAt,
	}
}
