// Package migrate moves the recipe catalog from household ownership to user ownership.
//
// # Migrations
//
// The [Engine] runs three migrations, each of which reads everything it needs, builds the
// new records in memory and then commits them in a single [repositories.Batch]:
//
//  1. [Engine.MigrateRecipes] : household recipes become user recipes
//     - only recipes that name who added them are considered
//     - the user recipe keeps the household recipe's ID
//     - the public flag becomes a [models.Visibility]
//
//  2. [Engine.MigrateRatings] : ratings are pointed at the user recipe with the same ID
//     - ratings whose recipe has not been migrated yet are skipped with a warning
//
//  3. [Engine.MigrateFriendships] : accepted household friendships become user friendships
//     - each household is represented by its leader
//     - one friendship per unordered pair of users
//
// [Engine.RunComplete] runs the three in that order and [Engine.Stats] reports progress
// without writing anything.
//
// # Results
//
// Every migration returns a [Result]. A record that cannot be converted is counted as
// failed and the run continues; a load or commit failure ends the run with the counts it
// had reached. Neither case is returned as a Go error, so callers inspect Result.Success.
//
// # Dry runs
//
// With dryRun set, a migration does every read and conversion and reports the counts a
// real run would produce, but never commits.
//
// # Progress Reporting
//
// Migrations accept an optional channel of [ProgressUpdate]. Updates are sent without
// blocking and dropped when the channel is full.
package migrate
