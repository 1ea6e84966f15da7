package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipeshift/internal/metrics"
	"github.com/desertthunder/recipeshift/internal/migrate"
	"github.com/desertthunder/recipeshift/internal/repositories"
	"github.com/desertthunder/recipeshift/internal/services"
	"github.com/desertthunder/recipeshift/internal/shared"
	"github.com/desertthunder/recipeshift/internal/verify"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	admin   services.Admin
	metrics *metrics.Metrics
	logger  *log.Logger
	output  io.Writer
	db      *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When Admin is set the commands use it as is and never open a database.
type RunnerOpts struct {
	Config  *shared.Config
	Admin   services.Admin
	Metrics *metrics.Metrics
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	return &Runner{
		config:  opts.Config,
		admin:   opts.Admin,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, migrateCommand, verifyCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and by anything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// loadConfig reads the config at path, falling back to defaults when the file does not exist.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		r.config = shared.DefaultConfig()
		return r.config, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	r.config = config
	return config, nil
}

// openDatabase opens and tunes the configured database.
func openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.OpenDatabase(config.Database.Driver, config.Database.Path)
	if err != nil {
		return nil, err
	}

	// in-memory sqlite stays pinned to its single connection
	if config.Database.Path != ":memory:" {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	}
	return db, nil
}

// prepare loads the config named by the command's --config flag and wires the admin
// service over the configured store. It is a no-op when an admin was injected.
func (r *Runner) prepare(cmd *cli.Command) error {
	if r.admin != nil {
		return nil
	}

	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Logging.Level))

	db, err := openDatabase(config)
	if err != nil {
		return err
	}
	r.db = db

	store := repositories.NewStore(db)
	r.admin = services.NewAdminService(
		migrate.NewEngine(store, shared.WithLogger(r.logger, "component", "migrate")),
		verify.NewEngine(store, shared.WithLogger(r.logger, "component", "verify"), verify.Options{
			OrphanSampleLimit: config.Verification.OrphanSampleLimit,
			Concurrent:        config.Verification.Concurrent,
		}),
		r.logger,
		r.metrics,
	).WithHistory(store.Runs)
	return nil
}

// close releases the database opened by prepare.
func (r *Runner) close() {
	if r.db == nil {
		return
	}
	if err := r.db.Close(); err != nil {
		r.logger.Warn("failed to close database", "err", err)
	}
	r.db = nil
	r.admin = nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) write(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	return r.write([]byte(fmt.Sprintf(format, args...)))
}
