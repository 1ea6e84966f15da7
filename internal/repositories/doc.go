// Package repositories implements SQL persistence for the recipe catalog.
//
// Each repository reads and writes one table and runs against either a [*sql.DB] or a
// [*sql.Tx] through the [Querier] interface, so the same code serves ad-hoc reads and
// the single transaction a migration commits in.
//
// Key Implementations:
//   - [UserRepository], [HouseholdRepository] : people and groups
//   - [LegacyRecipeRepository] : household_recipes, read-only outside of seeding
//   - [RecipeRepository] : user_recipes, written with ON CONFLICT DO NOTHING
//   - [RatingRepository] : recipe_ratings, including reference repointing and orphan queries
//   - [LegacyFriendshipRepository], [FriendshipRepository] : both friendship tables
//
// [Store] aggregates the repositories into the record store the migrators and
// verification checks read from, and [Store.Commit] persists a [Batch] atomically.
package repositories
