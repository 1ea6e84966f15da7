package shared

import (
	"errors"
	"testing"
)

func TestSchemaVersions(t *testing.T) {
	t.Run("loadSchemaVersions", func(t *testing.T) {
		versions, err := loadSchemaVersions()
		if err != nil {
			t.Fatalf("failed to load schema: %v", err)
		}

		if len(versions) == 0 {
			t.Fatal("expected at least one schema version")
		}

		for i := 1; i < len(versions); i++ {
			if versions[i].Version <= versions[i-1].Version {
				t.Errorf("versions not sorted: %d comes after %d", versions[i].Version, versions[i-1].Version)
			}
		}

		if versions[0].Name != "create_catalog" {
			t.Errorf("expected first version to be create_catalog, got %q", versions[0].Name)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{
			"users", "households", "household_recipes", "user_recipes",
			"recipe_ratings", "household_friendships", "user_friendships", "migration_runs",
		} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM migration_runs LIMIT 1"); err == nil {
			t.Error("migration_runs should be dropped after the first rollback")
		}
		if _, err := db.Exec("SELECT 1 FROM user_recipes LIMIT 1"); err != nil {
			t.Errorf("user_recipes should survive the first rollback: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM user_recipes LIMIT 1"); err == nil {
			t.Error("user_recipes should be dropped after rollback")
		}

		if err := RollbackMigration(db); !errors.Is(err, ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations, got %v", err)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		versions, _ := loadSchemaVersions()
		if count != len(versions) {
			t.Errorf("expected %d versions applied, got %d", len(versions), count)
		}
	})

	t.Run("friendship pair constraints", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		insert := "INSERT INTO user_friendships (id, requester_id, target_id, pair_key, status) VALUES ($1, $2, $3, $4, 'accepted')"
		if _, err := db.Exec(insert, "f1", "u1", "u2", "2:u1|u2"); err != nil {
			t.Fatalf("first insert failed: %v", err)
		}
		if _, err := db.Exec(insert, "f2", "u2", "u1", "2:u1|u2"); err == nil {
			t.Error("expected duplicate pair_key to be rejected")
		}
		if _, err := db.Exec(insert, "f3", "u3", "u3", "2:u3|u3"); err == nil {
			t.Error("expected self friendship to be rejected")
		}
	})
}

func TestExecVersion(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()

	script := `-- notes owned by a user; ids are shared
CREATE TABLE notes (
    id TEXT PRIMARY KEY, -- primary; never reused
    body TEXT
);

-- seed; one row
INSERT INTO notes (id, body) VALUES ('n1', 'first');
`
	if err := execVersion(db, script, "INSERT INTO notes (id) VALUES ($1)", 7); err != nil {
		t.Fatalf("execVersion failed on semicolons inside comments: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count); err != nil {
		t.Fatalf("failed to count notes: %v", err)
	}
	if count != 2 {
		t.Errorf("expected seeded row and bookkeeping row, got %d", count)
	}

	if got := stripComments("SELECT 1; -- trailing; note\n\n-- whole line\nSELECT 2;"); got != "SELECT 1;\nSELECT 2;" {
		t.Errorf("unexpected stripped script %q", got)
	}
}

func TestOpenDatabase(t *testing.T) {
	if _, err := OpenDatabase("mysql", "whatever"); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}

	db, err := OpenDatabase(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("expected in-memory database pinned to 1 connection, got %d", got)
	}
}
