// Package services defines the [Admin] interface, the administrative surface of the
// catalog migration, and implements it with [AdminService].
//
// # Admin Interface
//
// Every transport (HTTP, CLI and TUI) talks to the same facade, so migrations and checks
// behave identically regardless of how they are started:
//   - migrations take a dryRun flag; callers default it to true
//   - a failed migration is a result with Success false, never a Go error
//   - a verification that cannot read the store returns an error wrapping [shared.ErrStoreRead]
//
// # Observability
//
// [AdminService] logs each operation and records it with [metrics.Metrics]. Both are optional.
// With [AdminService.WithHistory] every finished migration is also stored as a
// [models.MigrationRun] and listed by [AdminService.MigrationHistory].
package services
