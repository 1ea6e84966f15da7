// package formatter renders migration results, stats and verification reports as text, Markdown, CSV and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/recipeshift/internal/migrate"
	"github.com/desertthunder/recipeshift/internal/models"
	"github.com/desertthunder/recipeshift/internal/shared"
	"github.com/desertthunder/recipeshift/internal/verify"
)

// Output formats accepted by [FormatReport].
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Formats lists every supported output format.
var Formats = []string{FormatText, FormatJSON, FormatMarkdown, FormatCSV}

// ToJSON encodes v as indented JSON with a trailing newline.
func ToJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ResultToText converts a single migration result to plain text.
func ResultToText(res *migrate.Result) ([]byte, error) {
	var buf bytes.Buffer
	writeResult(&buf, res)
	return buf.Bytes(), nil
}

// CompleteResultToText converts a complete migration run to plain text, one section per migration.
func CompleteResultToText(res *migrate.CompleteResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Complete migration (%s): %s in %dms\n\n", mode(res.DryRun), status(res.Success), res.TotalDurationMs))
	for _, r := range res.Results() {
		if r == nil {
			continue
		}
		writeResult(&buf, r)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// StatsToText converts migration stats to plain text.
func StatsToText(stats *migrate.Stats) ([]byte, error) {
	var buf bytes.Buffer

	rows := []struct {
		label string
		value string
	}{
		{"Household recipes", strconv.Itoa(stats.TotalHouseholdRecipes)},
		{"User recipes", strconv.Itoa(stats.TotalUserRecipes)},
		{"Recipes not migrated", strconv.Itoa(stats.HouseholdRecipesNotMigrated)},
		{"Ratings on household recipes", strconv.Itoa(stats.RatingsWithHouseholdRecipeID)},
		{"Ratings on user recipes", strconv.Itoa(stats.RatingsWithUserRecipeID)},
		{"Household friendships", strconv.Itoa(stats.HouseholdFriendships)},
		{"User friendships", strconv.Itoa(stats.UserFriendships)},
		{"Complete", yesNo(stats.MigrationComplete)},
	}

	buf.WriteString("Migration stats\n")
	for _, row := range rows {
		buf.WriteString(fmt.Sprintf("  %-30s %s\n", row.label+":", row.value))
	}

	return buf.Bytes(), nil
}

// HistoryToText converts recorded migration runs to a plain text table.
func HistoryToText(runs []*models.MigrationRun) ([]byte, error) {
	var buf bytes.Buffer

	if len(runs) == 0 {
		buf.WriteString("No migration runs recorded\n")
		return buf.Bytes(), nil
	}

	buf.WriteString(fmt.Sprintf("%-20s %-12s %-8s %-9s %9s %8s %7s %6s %8s\n",
		"Completed", "Migration", "Mode", "Status", "Processed", "Migrated", "Skipped", "Failed", "Duration"))
	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("%-20s %-12s %-8s %-9s %9d %8d %7d %6d %8s\n",
			run.CompletedAt.UTC().Format("2006-01-02 15:04:05"), run.Migration, mode(run.DryRun), status(run.Success),
			run.ItemsProcessed, run.ItemsMigrated, run.ItemsSkipped, run.ItemsFailed, run.Duration().Round(time.Millisecond)))
		if run.ErrorMessage != "" {
			buf.WriteString(fmt.Sprintf("  error: %s\n", run.ErrorMessage))
		}
	}

	return buf.Bytes(), nil
}

// ReportToText converts a verification report to plain text, listing every issue under its check.
func ReportToText(report *verify.Report) ([]byte, error) {
	var buf bytes.Buffer

	s := report.Summary
	buf.WriteString(fmt.Sprintf("Verification: %s (%d/%d checks passed)\n", passFail(report.AllPassed), s.PassedChecks, s.TotalChecks))
	buf.WriteString(fmt.Sprintf("Errors: %d  Warnings: %d  Info: %d\n", s.TotalErrors, s.TotalWarnings, s.TotalInfo))

	for _, res := range report.Results {
		buf.WriteString(fmt.Sprintf("\n[%s] %s: %d checked, %d issues\n", passFail(res.Passed), res.Check, res.ItemsChecked, res.IssuesFound))
		for _, issue := range res.Issues {
			buf.WriteString(fmt.Sprintf("  %-7s %s %s: %s", issue.Severity, issue.RecordType, issue.RecordID, issue.Description))
			if d := details(issue.Details); d != "" {
				buf.WriteString(fmt.Sprintf(" (%s)", d))
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown converts a verification report to Markdown with a summary table and one section per check.
func ReportToMarkdown(report *verify.Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Verification Report\n\n")
	buf.WriteString(fmt.Sprintf("**Generated**: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n\n", passFail(report.AllPassed)))

	buf.WriteString("| Check | Status | Checked | Errors | Warnings | Info |\n")
	buf.WriteString("|-------|--------|---------|--------|----------|------|\n")
	for _, res := range report.Results {
		buf.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %d | %d |\n",
			res.Check, passFail(res.Passed), res.ItemsChecked,
			res.Count(verify.SeverityError), res.Count(verify.SeverityWarning), res.Count(verify.SeverityInfo)))
	}

	for _, res := range report.Results {
		if len(res.Issues) == 0 {
			continue
		}
		buf.WriteString(fmt.Sprintf("\n## %s\n\n", res.Check))
		for _, issue := range res.Issues {
			buf.WriteString(fmt.Sprintf("- **%s** `%s` %s: %s\n", issue.Severity, issue.RecordID, issue.RecordType, issue.Description))
		}
	}

	return buf.Bytes(), nil
}

// IssuesToCSV converts every issue of a report to CSV with columns: Check, Severity, RecordType, RecordID, Description, Details
func IssuesToCSV(report *verify.Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Check", "Severity", "RecordType", "RecordID", "Description", "Details"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, ci := range report.Issues() {
		record := []string{
			ci.Check,
			string(ci.Severity),
			string(ci.RecordType),
			ci.RecordID,
			ci.Description,
			details(ci.Details),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// FormatReport renders a report in one of [Formats].
func FormatReport(report *verify.Report, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return ReportToText(report)
	case FormatJSON:
		return ToJSON(report)
	case FormatMarkdown:
		return ReportToMarkdown(report)
	case FormatCSV:
		return IssuesToCSV(report)
	default:
		return nil, fmt.Errorf("%w: unknown format %q, expected one of %s", shared.ErrInvalidFlag, format, strings.Join(Formats, ", "))
	}
}

func writeResult(buf *bytes.Buffer, res *migrate.Result) {
	buf.WriteString(fmt.Sprintf("Migration %s (%s): %s in %dms\n", res.Migration, mode(res.DryRun), status(res.Success), res.DurationMs))
	buf.WriteString(fmt.Sprintf("  Processed: %d  Migrated: %d  Skipped: %d  Failed: %d\n",
		res.ItemsProcessed, res.ItemsMigrated, res.ItemsSkipped, res.ItemsFailed))

	for _, w := range res.Warnings {
		buf.WriteString(fmt.Sprintf("  warning: %s\n", w))
	}
	for _, e := range res.Errors {
		buf.WriteString(fmt.Sprintf("  error: %s\n", e))
	}
}

// details renders a detail map as sorted key=value pairs.
func details(d verify.Details) string {
	parts := make([]string, 0, len(d))
	for _, k := range slices.Sorted(maps.Keys(d)) {
		v := d[k].String()
		if d[k].Kind == verify.KindString {
			v = strconv.Quote(v)
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, " ")
}

func mode(dryRun bool) string {
	if dryRun {
		return "dry run"
	}
	return "live"
}

func status(ok bool) string {
	if ok {
		return "succeeded"
	}
	return "failed"
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
