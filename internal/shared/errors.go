package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Persistence errors
	ErrNotFound       = fmt.Errorf("record not found")
	ErrStoreRead      = fmt.Errorf("store read failed")
	ErrCommitFailed   = fmt.Errorf("commit failed")
	ErrIDExhausted    = fmt.Errorf("unique identifier attempts exhausted")
	ErrUnknownDriver  = fmt.Errorf("unknown database driver")
	ErrNoMigrations   = fmt.Errorf("no migrations to rollback")
	ErrInvalidRecord  = fmt.Errorf("invalid record")
	ErrLockHeld       = fmt.Errorf("migration run already in progress")
	ErrLockNotHeld    = fmt.Errorf("migration lock not held")
	ErrServiceUnavail = fmt.Errorf("service unavailable")

	// Verification errors
	ErrVerificationFailed = fmt.Errorf("verification failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
