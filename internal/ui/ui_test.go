package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/recipeshift/internal/migrate"
	"github.com/desertthunder/recipeshift/internal/services"
	tu "github.com/desertthunder/recipeshift/internal/testing"
	"github.com/desertthunder/recipeshift/internal/verify"
)

func setupModel(t *testing.T) *Model {
	t.Helper()
	store := tu.NewStore(t)
	tu.SeedScenario(t, store)

	admin := services.NewAdminService(
		migrate.NewEngine(store, nil),
		verify.NewEngine(store, nil, verify.Options{}),
		nil, nil,
	)
	m := NewModel(context.Background(), admin)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func press(m *Model, k string) tea.Cmd {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	if k == "esc" {
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// run executes cmd and feeds every resulting application message back into m.
// Spinner ticks are dropped so the loop ends.
func run(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			run(m, c)
		}
	case Msg:
		_, next := m.Update(msg)
		run(m, next)
	}
}

func TestDashboard(t *testing.T) {
	m := setupModel(t)
	run(m, m.Init())

	require.NotNil(t, m.stats)
	assert.Equal(t, 2, m.stats.TotalHouseholdRecipes)

	view := m.View()
	assert.Contains(t, view, "Household recipes")
	assert.Contains(t, view, "Migration pending")
}

func TestMigrationFlow(t *testing.T) {
	t.Run("dry run", func(t *testing.T) {
		m := setupModel(t)
		run(m, m.Init())

		run(m, press(m, "d"))
		require.Equal(t, ResultView, m.view)
		require.NotNil(t, m.result)
		assert.True(t, m.result.DryRun)
		assert.Equal(t, 2, m.result.RecipesMigration.ItemsMigrated)
		assert.Contains(t, m.View(), "Dry run complete")

		run(m, press(m, "esc"))
		assert.Equal(t, DashboardView, m.view)
		assert.Equal(t, 0, m.stats.TotalUserRecipes)
	})

	t.Run("declining the confirmation", func(t *testing.T) {
		m := setupModel(t)

		assert.Nil(t, press(m, "m"))
		assert.Equal(t, ConfirmView, m.view)
		assert.Contains(t, m.View(), "live migration")

		press(m, "n")
		assert.Equal(t, DashboardView, m.view)
	})

	t.Run("live run then verify", func(t *testing.T) {
		m := setupModel(t)

		press(m, "m")
		run(m, press(m, "y"))
		require.Equal(t, ResultView, m.view)
		assert.False(t, m.result.DryRun)
		assert.True(t, m.result.Success)

		run(m, press(m, "v"))
		require.Equal(t, ReportView, m.view)
		assert.True(t, m.report.AllPassed)
		assert.Len(t, m.checkList.Items(), len(verify.Checks))
		assert.Contains(t, m.View(), "All 4 checks passed")

		run(m, press(m, "esc"))
		assert.Equal(t, DashboardView, m.view)
		assert.True(t, m.stats.MigrationComplete)
	})
}

func TestReportShowsIssues(t *testing.T) {
	m := setupModel(t)

	run(m, press(m, "v"))
	require.Equal(t, ReportView, m.view)
	assert.False(t, m.report.AllPassed)

	// the first check lists the unmigrated recipes
	view := m.View()
	assert.Contains(t, view, "recipe-stew")
	assert.Contains(t, view, "has not been migrated")
}

func TestRunningView(t *testing.T) {
	m := setupModel(t)
	m.view = RunningView
	m.activity = "Running dry run"

	assert.Contains(t, m.View(), "Working...")

	m.Update(progressUpdateMsg(migrate.ProgressUpdate{
		Migration: migrate.MigrationRecipes,
		Phase:     migrate.ConvertRecords,
		Step:      1,
		Total:     2,
	}))
	assert.Contains(t, m.View(), "[recipes] Converting (1/2)")
}
