package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/recipeshift/internal/shared"
)

// MigrationRun records one finished migration, dry runs included.
type MigrationRun struct {
	ID             string    `json:"id"`
	Migration      string    `json:"migration"`
	DryRun         bool      `json:"dryRun"`
	Success        bool      `json:"success"`
	ItemsProcessed int       `json:"itemsProcessed"`
	ItemsMigrated  int       `json:"itemsMigrated"`
	ItemsSkipped   int       `json:"itemsSkipped"`
	ItemsFailed    int       `json:"itemsFailed"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	StartedAt      time.Time `json:"startedAt"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Duration returns how long the run took.
func (r *MigrationRun) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

func (r *MigrationRun) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: migration run id is required", shared.ErrInvalidRecord)
	case r.Migration == "":
		return fmt.Errorf("%w: migration run %s has no migration name", shared.ErrInvalidRecord, r.ID)
	case r.CompletedAt.Before(r.StartedAt):
		return fmt.Errorf("%w: migration run %s completed before it started", shared.ErrInvalidRecord, r.ID)
	}
	return nil
}
