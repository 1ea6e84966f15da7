// package server contains middleware & handlers for the catalog migration admin service
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/recipeshift/internal/metrics"
	"github.com/desertthunder/recipeshift/internal/services"
	"github.com/desertthunder/recipeshift/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that register their own routes.
type Handler interface {
	http.Handler       // ServeHTTP handles the HTTP request and writes the response
	Register(r Router) // Register adds the handler's routes to r
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Mount(prefix string, handler http.Handler)        // Mount serves every path below prefix with handler
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Options holds the collaborators of the admin server.
type Options struct {
	Config  shared.ServerConfig
	Admin   services.Admin
	Metrics *metrics.Metrics
	Lock    RunLock
	Logger  *log.Logger
}

// NewHandler builds the complete route tree: /health and /metrics at the root, the admin
// routes below /admin behind logging and rate limiting.
func NewHandler(opts Options) http.Handler {
	if opts.Lock == nil {
		opts.Lock = NewMemoryLock()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	admin := NewBasicRouter()
	admin.Use(Logging(opts.Logger), RateLimit(NewLimiter(opts.Config.RateLimit, opts.Config.Burst)))
	NewAdminHandler(opts.Admin, opts.Lock, opts.Logger).Register(admin)

	root := NewBasicRouter()
	root.Handle(http.MethodGet, "/health", http.HandlerFunc(health))
	root.Handle(http.MethodGet, "/metrics", opts.Metrics.Handler())
	root.Mount("/admin/", admin)
	return root
}

// New creates the admin HTTP server listening on the configured address.
func New(opts Options) *http.Server {
	return &http.Server{
		Addr:              opts.Config.Addr(),
		Handler:           NewHandler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
