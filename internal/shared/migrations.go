package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var schemaFiles embed.FS

// SchemaVersion is one numbered step of the catalog schema with its forward and reverse SQL.
type SchemaVersion struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// loadSchemaVersions reads sql/NNNN_name_{up,down}.sql pairs and returns them ordered by version.
func loadSchemaVersions() ([]SchemaVersion, error) {
	entries, err := schemaFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	byVersion := make(map[int]*SchemaVersion)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		prefix, rest, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		content, err := schemaFiles.ReadFile(path.Join("sql", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %s: %w", name, err)
		}

		sv, ok := byVersion[version]
		if !ok {
			sv = &SchemaVersion{Version: version}
			byVersion[version] = sv
		}

		switch {
		case strings.HasSuffix(rest, "_up.sql"):
			sv.Name = strings.TrimSuffix(rest, "_up.sql")
			sv.Up = string(content)
		case strings.HasSuffix(rest, "_down.sql"):
			sv.Down = string(content)
		}
	}

	versions := make([]SchemaVersion, 0, len(byVersion))
	for _, sv := range byVersion {
		if sv.Up == "" || sv.Down == "" {
			return nil, fmt.Errorf("incomplete schema version %d", sv.Version)
		}
		versions = append(versions, *sv)
	}

	slices.SortFunc(versions, func(a, b SchemaVersion) int { return a.Version - b.Version })
	return versions, nil
}

// RunMigrations applies every schema version not yet recorded in schema_migrations.
func RunMigrations(db *sql.DB) error {
	versions, err := loadSchemaVersions()
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, sv := range versions {
		var applied bool
		if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", sv.Version).Scan(&applied); err != nil {
			return fmt.Errorf("failed to check schema version: %w", err)
		}
		if applied {
			continue
		}

		if err := execVersion(db, sv.Up, "INSERT INTO schema_migrations (version) VALUES ($1)", sv.Version); err != nil {
			return fmt.Errorf("failed to apply schema version %d (%s): %w", sv.Version, sv.Name, err)
		}
	}

	return nil
}

// RollbackMigration reverts the most recently applied schema version.
func RollbackMigration(db *sql.DB) error {
	versions, err := loadSchemaVersions()
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	var current sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if !current.Valid {
		return ErrNoMigrations
	}

	idx := slices.IndexFunc(versions, func(sv SchemaVersion) bool { return sv.Version == int(current.Int64) })
	if idx < 0 {
		return fmt.Errorf("schema version %d not found", current.Int64)
	}

	sv := versions[idx]
	if err := execVersion(db, sv.Down, "DELETE FROM schema_migrations WHERE version = $1", sv.Version); err != nil {
		return fmt.Errorf("failed to roll back schema version %d: %w", sv.Version, err)
	}
	return nil
}

// execVersion strips comments from script, then runs each statement and then the bookkeeping statement in a single transaction.
func execVersion(db *sql.DB, script, record string, version int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for stmt := range strings.SplitSeq(stripComments(script), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%w\nstatement: %s", err, stmt)
		}
	}

	if _, err := tx.Exec(record, version); err != nil {
		return err
	}
	return tx.Commit()
}

// stripComments drops "--" comments and blank lines.
func stripComments(stmt string) string {
	var kept []string
	for line := range strings.SplitSeq(stmt, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
