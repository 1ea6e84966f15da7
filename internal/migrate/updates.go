package migrate

import "fmt"

// ProgressUpdate represents a progress event during a migration.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Migration string // Migration name (recipes, ratings, friendships)
	Phase     Phase  // Operation phase
	Step      int    // Current step number within phase
	Total     int    // Total steps in this phase
	Message   string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	LoadRecords Phase = iota
	ConvertRecords
	CommitRecords
	Finished
)

func (p Phase) String() string {
	switch p {
	case LoadRecords:
		return "load"
	case ConvertRecords:
		return "convert"
	case CommitRecords:
		return "commit"
	case Finished:
		return "finished"
	default:
		return ""
	}
}

func loadUpdate(migration, what string) ProgressUpdate {
	return ProgressUpdate{
		Migration: migration,
		Phase:     LoadRecords,
		Step:      0,
		Total:     1,
		Message:   fmt.Sprintf("Loading %s...", what),
	}
}

func convertUpdate(migration string, step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Migration: migration,
		Phase:     ConvertRecords,
		Step:      step,
		Total:     total,
		Message:   fmt.Sprintf("[%d/%d] %s", step, total, id),
	}
}

func commitUpdate(migration string, size int) ProgressUpdate {
	return ProgressUpdate{
		Migration: migration,
		Phase:     CommitRecords,
		Step:      0,
		Total:     size,
		Message:   fmt.Sprintf("Committing %d changes...", size),
	}
}

func finishedUpdate(res *Result) ProgressUpdate {
	status := "✓"
	if !res.Success {
		status = "✗"
	}
	return ProgressUpdate{
		Migration: res.Migration,
		Phase:     Finished,
		Step:      res.ItemsProcessed,
		Total:     res.ItemsProcessed,
		Message: fmt.Sprintf("%s %s: %d migrated, %d skipped, %d failed",
			status, res.Migration, res.ItemsMigrated, res.ItemsSkipped, res.ItemsFailed),
	}
}
