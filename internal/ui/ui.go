package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/recipeshift/internal/migrate"
	"github.com/desertthunder/recipeshift/internal/services"
	"github.com/desertthunder/recipeshift/internal/verify"
)

// maxIssues bounds the issues listed under the selected check.
const maxIssues = 8

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DashboardView ViewState = iota
	ConfirmView
	RunningView
	ResultView
	ReportView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	admin        services.Admin
	width        int
	height       int
	stats        *migrate.Stats
	activity     string
	spinner      spinner.Model
	progressChan chan migrate.ProgressUpdate
	done         chan *migrate.CompleteResult
	progress     migrate.ProgressUpdate
	result       *migrate.CompleteResult
	report       *verify.Report
	checkList    list.Model
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model backed by admin.
func NewModel(ctx context.Context, admin services.Admin) *Model {
	return &Model{
		ctx:     ctx,
		view:    DashboardView,
		admin:   admin,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by loading the migration stats.
func (m *Model) Init() tea.Cmd {
	return m.fetchStats()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.report != nil {
			m.checkList.SetSize(msg.Width-4, msg.Height/2)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case DashboardView:
			return m.handleDashboardKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ReportView:
			return m.handleReportKeys(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != RunningView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStatsFetched:
		data := msg.data.(statsFetched)
		m.stats, m.err = data.stats, data.err
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(migrate.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgMigrationComplete:
		m.result = msg.data.(*migrate.CompleteResult)
		m.progressChan, m.done = nil, nil
		m.view = ResultView
		return m, nil

	case MsgVerificationComplete:
		data := msg.data.(verificationComplete)
		if data.err != nil {
			m.err = data.err
			m.view = DashboardView
			return m, nil
		}
		m.report = data.report
		m.checkList = list.New(checkItems(data.report), list.NewDefaultDelegate(), m.width-4, m.height/2)
		m.checkList.Title = "Verification"
		m.checkList.SetShowHelp(false)
		m.view = ReportView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DashboardView:
		return m.renderDashboard()
	case ConfirmView:
		return m.renderConfirm()
	case RunningView:
		return m.renderRunning()
	case ResultView:
		return m.renderResult()
	case ReportView:
		return m.renderReport()
	default:
		return ""
	}
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.dryRun):
		return m, m.startMigration(true)
	case key.Matches(msg, m.keys.migrate):
		m.view = ConfirmView
		return m, nil
	case key.Matches(msg, m.keys.verify):
		return m, m.startVerification()
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchStats()
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.startMigration(false)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = DashboardView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.verify):
		return m, m.startVerification()
	case key.Matches(msg, m.keys.back):
		return m.backToDashboard()
	}
	return m, nil
}

func (m *Model) handleReportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		return m.backToDashboard()
	}

	var cmd tea.Cmd
	m.checkList, cmd = m.checkList.Update(msg)
	return m, cmd
}

func (m *Model) backToDashboard() (tea.Model, tea.Cmd) {
	m.view = DashboardView
	m.result = nil
	m.report = nil
	m.err = nil
	return m, m.fetchStats()
}

func (m *Model) fetchStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.admin.MigrationStats(m.ctx)
		return statsFetchedMsg(stats, err)
	}
}

func (m *Model) startMigration(dryRun bool) tea.Cmd {
	m.view = RunningView
	m.err = nil
	m.progress = migrate.ProgressUpdate{}
	m.activity = "Running live migration"
	if dryRun {
		m.activity = "Running dry run"
	}

	progress := make(chan migrate.ProgressUpdate, 50)
	done := make(chan *migrate.CompleteResult, 1)
	m.progressChan, m.done = progress, done

	go func() {
		result := m.admin.RunCompleteMigration(m.ctx, dryRun, progress)
		close(progress)
		done <- result
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

func (m *Model) startVerification() tea.Cmd {
	m.view = RunningView
	m.err = nil
	m.activity = "Running verification"
	m.progress = migrate.ProgressUpdate{}

	verifyCmd := func() tea.Msg {
		report, err := m.admin.RunAllVerifications(m.ctx)
		return verificationCompleteMsg(report, err)
	}
	return tea.Batch(m.spinner.Tick, verifyCmd)
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return nil
		}

		update, ok := <-progress
		if !ok {
			return migrationCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Recipe catalog migration"))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	case m.stats == nil:
		b.WriteString("Loading stats...\n")
	default:
		s := m.stats
		rows := []struct {
			label string
			value int
		}{
			{"Household recipes", s.TotalHouseholdRecipes},
			{"User recipes", s.TotalUserRecipes},
			{"Recipes not migrated", s.HouseholdRecipesNotMigrated},
			{"Ratings on household recipes", s.RatingsWithHouseholdRecipeID},
			{"Ratings on user recipes", s.RatingsWithUserRecipeID},
			{"Household friendships", s.HouseholdFriendships},
			{"User friendships", s.UserFriendships},
		}
		for _, row := range rows {
			b.WriteString(fmt.Sprintf("%s%d\n", styles.label.Render(row.label), row.value))
		}
		b.WriteString(fmt.Sprintf("\n%s\n", styles.status(s.MigrationComplete, "Migration complete", "Migration pending")))
	}

	helpKeys := []key.Binding{m.keys.dryRun, m.keys.migrate, m.keys.verify, m.keys.refresh, m.keys.quit}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Run the live migration?")
	info := styles.warn.Render("Recipes, ratings and friendships will be written to the user-owned tables.")

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderRunning() string {
	title := styles.title.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.activity))

	var phase string
	switch {
	case m.progress.Migration == "":
		phase = "Working..."
	case m.progress.Phase == migrate.LoadRecords:
		phase = fmt.Sprintf("[%s] Loading records...", m.progress.Migration)
	case m.progress.Phase == migrate.ConvertRecords:
		phase = fmt.Sprintf("[%s] Converting (%d/%d)", m.progress.Migration, m.progress.Step, m.progress.Total)
	case m.progress.Phase == migrate.CommitRecords:
		phase = fmt.Sprintf("[%s] Committing...", m.progress.Migration)
	default:
		phase = fmt.Sprintf("[%s] Finished", m.progress.Migration)
	}

	return fmt.Sprintf("%s\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress esc to go back, q to quit")
	}

	mode := "Live run"
	if m.result.DryRun {
		mode = "Dry run"
	}
	title := styles.status(m.result.Success,
		fmt.Sprintf("✓ %s complete in %dms", mode, m.result.TotalDurationMs),
		fmt.Sprintf("✗ %s finished with errors", mode))

	var b strings.Builder
	for _, res := range m.result.Results() {
		if res == nil {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s %s: %d processed, %d migrated, %d skipped, %d failed",
			styles.status(res.Success, "✓", "✗"), res.Migration,
			res.ItemsProcessed, res.ItemsMigrated, res.ItemsSkipped, res.ItemsFailed))
		for _, e := range res.Errors {
			b.WriteString("\n  " + styles.err.Render(e))
		}
		if n := len(res.Warnings); n > 0 {
			b.WriteString("\n  " + styles.warn.Render(fmt.Sprintf("%d warnings", n)))
		}
	}

	helpKeys := []key.Binding{m.keys.verify, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", title, b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderReport() string {
	s := m.report.Summary
	summary := styles.status(m.report.AllPassed,
		fmt.Sprintf("All %d checks passed", s.TotalChecks),
		fmt.Sprintf("%d/%d checks failed", s.FailedChecks, s.TotalChecks))

	var issues strings.Builder
	if item, ok := m.checkList.SelectedItem().(checkItem); ok {
		for i, issue := range item.result.Issues {
			if i == maxIssues {
				issues.WriteString(fmt.Sprintf("\n  ... %d more", len(item.result.Issues)-maxIssues))
				break
			}
			style := styles.help
			switch issue.Severity {
			case verify.SeverityError:
				style = styles.err
			case verify.SeverityWarning:
				style = styles.warn
			}
			issues.WriteString("\n  " + style.Render(fmt.Sprintf("%s %s: %s", issue.Severity, issue.RecordID, issue.Description)))
		}
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", summary, m.checkList.View(), issues.String(), m.help.ShortHelpView(helpKeys))
}
