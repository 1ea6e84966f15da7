package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveMigration(t *testing.T) {
	m := New()
	m.ObserveMigration("recipes", true, true, 3, 1, 0, 20*time.Millisecond)
	m.ObserveMigration("recipes", false, false, 2, 0, 1, 30*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MigrationRuns.WithLabelValues("recipes", "true", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MigrationRuns.WithLabelValues("recipes", "false", "false")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.MigrationItems.WithLabelValues("recipes", "migrated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MigrationItems.WithLabelValues("recipes", "failed")))
}

func TestObserveVerification(t *testing.T) {
	m := New()
	m.ObserveVerification("recipe_migration", false, map[string]int{"error": 2, "warning": 1})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.VerificationRuns.WithLabelValues("recipe_migration", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.VerificationIssues.WithLabelValues("recipe_migration", "error")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveMigration("recipes", true, true, 1, 0, 0, time.Millisecond)
	m.ObserveVerification("recipe_migration", true, nil)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveMigration("ratings", true, true, 1, 0, 0, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "recipeshift_migration_runs_total"))
}
