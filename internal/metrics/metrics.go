// Package metrics exposes Prometheus collectors for migration and verification runs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one process. Each instance owns its registry so tests
// can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	// Migration runs by migration, dry run flag and outcome
	MigrationRuns *prometheus.CounterVec

	// Records handled per migration by outcome: migrated, skipped, failed
	MigrationItems *prometheus.CounterVec

	MigrationDuration *prometheus.HistogramVec

	// Verification checks by check and outcome
	VerificationRuns *prometheus.CounterVec

	// Issues raised per check by severity
	VerificationIssues *prometheus.CounterVec
}

// New creates a new Metrics instance with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		MigrationRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeshift_migration_runs_total",
			Help: "Total migration runs by migration, dry run flag and success",
		}, []string{"migration", "dry_run", "success"}),

		MigrationItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeshift_migration_items_total",
			Help: "Records handled by migrations, by outcome",
		}, []string{"migration", "outcome"}),

		MigrationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipeshift_migration_duration_seconds",
			Help:    "Duration of a single migration run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"migration"}),

		VerificationRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeshift_verification_runs_total",
			Help: "Total verification checks by check and outcome",
		}, []string{"check", "passed"}),

		VerificationIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeshift_verification_issues_total",
			Help: "Verification issues raised by check and severity",
		}, []string{"check", "severity"}),
	}
}

// ObserveMigration records one migration run.
func (m *Metrics) ObserveMigration(migration string, dryRun, success bool, migrated, skipped, failed int, d time.Duration) {
	if m == nil {
		return
	}
	m.MigrationRuns.WithLabelValues(migration, strconv.FormatBool(dryRun), strconv.FormatBool(success)).Inc()
	m.MigrationItems.WithLabelValues(migration, "migrated").Add(float64(migrated))
	m.MigrationItems.WithLabelValues(migration, "skipped").Add(float64(skipped))
	m.MigrationItems.WithLabelValues(migration, "failed").Add(float64(failed))
	m.MigrationDuration.WithLabelValues(migration).Observe(d.Seconds())
}

// ObserveVerification records one check result and its issue counts by severity.
func (m *Metrics) ObserveVerification(check string, passed bool, issues map[string]int) {
	if m == nil {
		return
	}
	m.VerificationRuns.WithLabelValues(check, strconv.FormatBool(passed)).Inc()
	for severity, n := range issues {
		m.VerificationIssues.WithLabelValues(check, severity).Add(float64(n))
	}
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
