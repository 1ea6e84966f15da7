// Package models defines the records of the recipe catalog in both ownership models.
//
// The package contains two generations of records:
//
// 1. Legacy records: shaped for the household-owns-recipe model and never mutated here
//   - [LegacyRecipe] : a recipe owned by a [Household], attributed to the person who added it
//   - [LegacyFriendship] : a friendship between two households
//
// 2. New-model records: shaped for the user-owns-recipe model
//   - [Recipe] : a recipe owned by a [User], sharing its ID with the legacy recipe it came from
//   - [Friendship] : a friendship between two users, unique per unordered [PairKey]
//
// [Rating] spans both generations: it carries a reference to each recipe table and the two
// converge as the catalog is migrated.
//
// Records that are written by this module implement [Model]; the [Repository] interface
// describes the common read/write surface of the per-table repositories.
package models
