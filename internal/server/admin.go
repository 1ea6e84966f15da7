package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/recipeshift/internal/migrate"
	"github.com/desertthunder/recipeshift/internal/services"
	"github.com/desertthunder/recipeshift/internal/shared"
	"github.com/desertthunder/recipeshift/internal/verify"
)

type (
	migrationFunc    func(ctx context.Context, dryRun bool, progress chan<- migrate.ProgressUpdate) *migrate.Result
	verificationFunc func(ctx context.Context) (*verify.Result, error)
)

var _ Handler = (*AdminHandler)(nil)

// AdminHandler serves the [services.Admin] operations as JSON.
type AdminHandler struct {
	admin  services.Admin
	lock   RunLock
	logger *log.Logger
	mux    *BasicRouter
}

// NewAdminHandler creates a new AdminHandler. Migrations are serialized by lock.
func NewAdminHandler(admin services.Admin, lock RunLock, logger *log.Logger) *AdminHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if lock == nil {
		lock = NewMemoryLock()
	}
	h := &AdminHandler{admin: admin, lock: lock, logger: shared.WithLogger(logger, "component", "admin")}
	h.mux = NewBasicRouter()
	h.Register(h.mux)
	return h
}

// Register adds the admin routes to r.
func (h *AdminHandler) Register(r Router) {
	serialize := Serialize(h.lock, h.logger)

	r.Handle(http.MethodPost, "/admin/migration/run", serialize(http.HandlerFunc(h.runComplete)))
	r.Handle(http.MethodPost, "/admin/migration/recipes", serialize(h.migration(h.admin.MigrateRecipes)))
	r.Handle(http.MethodPost, "/admin/migration/ratings", serialize(h.migration(h.admin.MigrateRatings)))
	r.Handle(http.MethodPost, "/admin/migration/friendships", serialize(h.migration(h.admin.MigrateFriendships)))
	r.Handle(http.MethodGet, "/admin/migration/stats", http.HandlerFunc(h.stats))
	r.Handle(http.MethodGet, "/admin/migration/history", http.HandlerFunc(h.history))

	r.Handle(http.MethodGet, "/admin/verification", http.HandlerFunc(h.verifyAll))
	r.Handle(http.MethodGet, "/admin/verification/recipes", h.verification(h.admin.VerifyRecipes))
	r.Handle(http.MethodGet, "/admin/verification/ratings", h.verification(h.admin.VerifyRatings))
	r.Handle(http.MethodGet, "/admin/verification/integrity", h.verification(h.admin.VerifyIntegrity))
	r.Handle(http.MethodGet, "/admin/verification/orphans", h.verification(h.admin.CheckOrphans))
}

// ServeHTTP serves the admin routes without any router middleware.
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *AdminHandler) runComplete(w http.ResponseWriter, r *http.Request) {
	dryRun, ok := dryRunParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.admin.RunCompleteMigration(r.Context(), dryRun, nil))
}

func (h *AdminHandler) migration(run migrationFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dryRun, ok := dryRunParam(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, run(r.Context(), dryRun, nil))
	})
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.MigrationStats(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) history(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%v: limit must be a non-negative integer, got %q", shared.ErrInvalidFlag, raw))
			return
		}
		limit = n
	}

	runs, err := h.admin.MigrationHistory(r.Context(), limit)
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *AdminHandler) verifyAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.admin.RunAllVerifications(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) verification(check verificationFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := check(r.Context())
		if err != nil {
			h.internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}

func (h *AdminHandler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", "err", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// dryRunParam reads the dryRun query parameter, writing a 400 when it does not parse.
// An absent parameter means true.
func dryRunParam(w http.ResponseWriter, r *http.Request) (bool, bool) {
	raw := r.URL.Query().Get("dryRun")
	if raw == "" {
		return true, true
	}

	dryRun, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%v: dryRun must be a boolean, got %q", shared.ErrInvalidFlag, raw))
		return false, false
	}
	return dryRun, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
