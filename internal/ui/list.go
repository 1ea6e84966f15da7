package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/recipeshift/internal/verify"
)

var (
	_ list.Item = checkItem{}
)

// checkItem wraps a [verify.Result] to implement [list.Item].
type checkItem struct {
	result *verify.Result
}

func (i checkItem) FilterValue() string { return i.result.Check }
func (i checkItem) Title() string {
	return fmt.Sprintf("%s %s", styles.status(i.result.Passed, "PASS", "FAIL"), i.result.Check)
}
func (i checkItem) Description() string {
	desc := fmt.Sprintf("%d checked", i.result.ItemsChecked)
	if i.result.IssuesFound > 0 {
		desc = fmt.Sprintf("%s • %d errors • %d warnings • %d info", desc,
			i.result.Count(verify.SeverityError),
			i.result.Count(verify.SeverityWarning),
			i.result.Count(verify.SeverityInfo))
	}
	return desc
}

func checkItems(report *verify.Report) []list.Item {
	items := make([]list.Item, len(report.Results))
	for i, res := range report.Results {
		items[i] = checkItem{result: res}
	}
	return items
}
