// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipeshift/internal/formatter"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func migrationFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Report what would change without writing (pass --dry-run=false to write)",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
	}
}

func verificationFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, markdown or csv",
			Value:   formatter.FormatText,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the report to a file instead of stdout",
		},
	}
}

// setupCommand handles database setup operations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if needed and apply schema migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent schema migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.RollbackDatabase,
			},
		},
	}
}

// migrateCommand runs the ownership migrations.
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migrate household-owned records to user ownership",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the recipe, rating and friendship migrations in order",
				Flags:  migrationFlags(),
				Action: r.MigrateRun,
			},
			{
				Name:   "recipes",
				Usage:  "Copy owned household recipes into user recipes",
				Flags:  migrationFlags(),
				Action: r.Migrate(migrateRecipes),
			},
			{
				Name:   "ratings",
				Usage:  "Point ratings at their migrated user recipes",
				Flags:  migrationFlags(),
				Action: r.Migrate(migrateRatings),
			},
			{
				Name:   "friendships",
				Usage:  "Convert accepted household friendships into user friendships",
				Flags:  migrationFlags(),
				Action: r.Migrate(migrateFriendships),
			},
			{
				Name:  "stats",
				Usage: "Show migration progress",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.MigrateStats,
			},
			{
				Name:  "history",
				Usage: "List recent migration runs",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum number of runs to list"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.MigrateHistory,
			},
		},
	}
}

// verifyCommand runs the consistency checks.
func verifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check consistency between the household and user ownership models",
		Commands: []*cli.Command{
			{
				Name:   "all",
				Usage:  "Run every check",
				Flags:  verificationFlags(),
				Action: r.VerifyAll,
			},
			{
				Name:   "recipes",
				Usage:  "Find owned household recipes without a user recipe",
				Flags:  verificationFlags(),
				Action: r.Verify(verifyRecipes),
			},
			{
				Name:   "ratings",
				Usage:  "Find ratings still pointing at household recipes",
				Flags:  verificationFlags(),
				Action: r.Verify(verifyRatings),
			},
			{
				Name:   "integrity",
				Usage:  "Compare field values of migrated recipes",
				Flags:  verificationFlags(),
				Action: r.Verify(verifyIntegrity),
			},
			{
				Name:   "orphans",
				Usage:  "Find ratings and user recipes referencing missing records",
				Flags:  verificationFlags(),
				Action: r.Verify(verifyOrphans),
			},
		},
	}
}

// serveCommand starts the admin HTTP server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the admin HTTP endpoints",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "port",
				Usage: "Override server.port from the config",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive migration dashboard",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
