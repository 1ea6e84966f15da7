package migrate

import (
	"fmt"
	"time"

	"github.com/desertthunder/recipeshift/internal/models"
)

// Migration names as they appear in results, logs and metrics.
const (
	MigrationRecipes     = "recipes"
	MigrationRatings     = "ratings"
	MigrationFriendships = "friendships"
)

// Result is the outcome of one migration.
type Result struct {
	Migration      string   `json:"migration"`
	ItemsProcessed int      `json:"itemsProcessed"`
	ItemsMigrated  int      `json:"itemsMigrated"`
	ItemsSkipped   int      `json:"itemsSkipped"`
	ItemsFailed    int      `json:"itemsFailed"`
	Warnings       []string `json:"warnings"`
	Errors         []string `json:"errors"`
	DurationMs     int64    `json:"durationMs"`
	DryRun         bool     `json:"dryRun"`
	Success        bool     `json:"success"`

	aborted bool
}

func newResult(migration string, dryRun bool) *Result {
	return &Result{
		Migration: migration,
		Warnings:  []string{},
		Errors:    []string{},
		DryRun:    dryRun,
	}
}

// skip counts a record that needs no work, recording why.
func (r *Result) skip(format string, args ...any) {
	r.ItemsSkipped++
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// fail counts a record that could not be converted.
func (r *Result) fail(rt models.RecordType, id string, err error) {
	r.ItemsFailed++
	r.Errors = append(r.Errors, fmt.Sprintf("%s %s: %v", rt, id, err))
}

// abort records a failure that ended the whole migration.
func (r *Result) abort(format string, args ...any) {
	r.aborted = true
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) finish(start time.Time) {
	r.DurationMs = time.Since(start).Milliseconds()
	r.Success = r.ItemsFailed == 0 && !r.aborted
}

// CompleteResult is the outcome of [Engine.RunComplete].
type CompleteResult struct {
	RecipesMigration     *Result `json:"recipesMigration"`
	RatingsMigration     *Result `json:"ratingsMigration"`
	FriendshipsMigration *Result `json:"friendshipsMigration"`
	TotalDurationMs      int64   `json:"totalDurationMs"`
	DryRun               bool    `json:"dryRun"`
	Success              bool    `json:"success"`
}

// Results returns the three migration results in run order.
func (c *CompleteResult) Results() []*Result {
	return []*Result{c.RecipesMigration, c.RatingsMigration, c.FriendshipsMigration}
}

// Stats describes how far the catalog has been migrated.
type Stats struct {
	TotalHouseholdRecipes        int  `json:"totalHouseholdRecipes"`
	TotalUserRecipes             int  `json:"totalUserRecipes"`
	HouseholdRecipesNotMigrated  int  `json:"householdRecipesNotMigrated"`
	RatingsWithHouseholdRecipeID int  `json:"ratingsWithHouseholdRecipeId"`
	RatingsWithUserRecipeID      int  `json:"ratingsWithUserRecipeId"`
	HouseholdFriendships         int  `json:"householdFriendships"`
	UserFriendships              int  `json:"userFriendships"`
	MigrationComplete            bool `json:"migrationComplete"`
}
