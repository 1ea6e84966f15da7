// Package verify checks that the household and user ownership models agree.
//
// The [Engine] runs four read-only checks. Each returns a [Result] listing the [Issue]s it
// found; only issues of [SeverityError] fail a check.
//
//   - [Engine.VerifyRecipeMigration] : every owned household recipe has a user recipe
//   - [Engine.VerifyRatingMigration] : no rating is left pointing only at a household recipe
//   - [Engine.VerifyDataIntegrity] : recipes present in both tables agree on title, owner and catalog link
//   - [Engine.CheckOrphanedRecords] : ratings and user recipes whose references resolve to nothing
//
// [Engine.RunAll] runs all four, concurrently unless configured otherwise, and folds them
// into a [Report]. The checks never write and can run before, during or after a migration.
package verify
