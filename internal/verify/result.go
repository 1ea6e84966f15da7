package verify

import (
	"time"

	"github.com/desertthunder/recipeshift/internal/models"
)

// Check names as they appear in results, logs and metrics.
const (
	CheckRecipeMigration = "recipe_migration"
	CheckRatingMigration = "rating_migration"
	CheckDataIntegrity   = "data_integrity"
	CheckOrphanedRecords = "orphaned_records"
)

// Checks lists every check in the order [Engine.RunAll] reports them.
var Checks = []string{CheckRecipeMigration, CheckRatingMigration, CheckDataIntegrity, CheckOrphanedRecords}

// Result is the outcome of one check. Passed is false only when an error-severity issue was found.
type Result struct {
	Check        string  `json:"check"`
	Passed       bool    `json:"passed"`
	ItemsChecked int     `json:"itemsChecked"`
	IssuesFound  int     `json:"issuesFound"`
	Issues       []Issue `json:"issues"`
	DurationMs   int64   `json:"durationMs"`
}

func newResult(check string) *Result {
	return &Result{Check: check, Issues: []Issue{}}
}

func (r *Result) add(severity Severity, rt models.RecordType, id, description string, details Details) {
	r.Issues = append(r.Issues, Issue{
		Severity:    severity,
		Description: description,
		RecordID:    id,
		RecordType:  rt,
		Details:     details,
	})
}

func (r *Result) finish(start time.Time) *Result {
	r.IssuesFound = len(r.Issues)
	r.Passed = r.Count(SeverityError) == 0
	r.DurationMs = time.Since(start).Milliseconds()
	return r
}

// Count returns the number of issues with the given severity.
func (r *Result) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// Summary tallies a [Report].
type Summary struct {
	TotalChecks   int `json:"totalChecks"`
	PassedChecks  int `json:"passedChecks"`
	FailedChecks  int `json:"failedChecks"`
	TotalErrors   int `json:"totalErrors"`
	TotalWarnings int `json:"totalWarnings"`
	TotalInfo     int `json:"totalInfo"`
}

// Report aggregates the results of every check.
type Report struct {
	Results     []*Result `json:"results"`
	AllPassed   bool      `json:"allPassed"`
	Summary     Summary   `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
	DurationMs  int64     `json:"durationMs"`
}

// NewReport folds results into a report.
func NewReport(results []*Result, generatedAt time.Time, duration time.Duration) *Report {
	report := &Report{
		Results:     results,
		AllPassed:   true,
		GeneratedAt: generatedAt,
		DurationMs:  duration.Milliseconds(),
	}

	for _, r := range results {
		report.Summary.TotalChecks++
		if r.Passed {
			report.Summary.PassedChecks++
		} else {
			report.Summary.FailedChecks++
			report.AllPassed = false
		}
		report.Summary.TotalErrors += r.Count(SeverityError)
		report.Summary.TotalWarnings += r.Count(SeverityWarning)
		report.Summary.TotalInfo += r.Count(SeverityInfo)
	}
	return report
}

// Issues returns every issue in the report along with the check that raised it.
func (r *Report) Issues() []CheckIssue {
	var out []CheckIssue
	for _, res := range r.Results {
		for _, issue := range res.Issues {
			out = append(out, CheckIssue{Check: res.Check, Issue: issue})
		}
	}
	return out
}

// CheckIssue pairs an issue with the name of its check.
type CheckIssue struct {
	Check string
	Issue
}
