package shared

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	ConfigureDatabase(db, 1, 1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) < 2 {
			t.Fatalf("expected at least two migrations, got %d", len(migrations))
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db := newTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM runs LIMIT 1"); err != nil {
			t.Errorf("runs table should exist after migrations: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM run_actions LIMIT 1"); err != nil {
			t.Errorf("run_actions table should exist after migrations: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM run_actions LIMIT 1"); err == nil {
			t.Error("run_actions table should be gone after rollback")
		}
		if _, err := db.Exec("SELECT 1 FROM runs LIMIT 1"); err != nil {
			t.Errorf("runs table should survive a single rollback: %v", err)
		}
	})

	t.Run("Rollback with nothing applied", func(t *testing.T) {
		db := newTestDB(t)
		if _, err := db.Exec("CREATE TABLE schema_migrations (version INTEGER PRIMARY KEY)"); err != nil {
			t.Fatalf("failed to create table: %v", err)
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when no migrations are applied")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db := newTestDB(t)

		for i := 0; i < 2; i++ {
			if err := RunMigrations(db); err != nil {
				t.Fatalf("failed to run migrations (pass %d): %v", i+1, err)
			}
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
}

func TestOpenJournal(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		if _, err := OpenJournal(DatabaseConfig{}); err == nil {
			t.Error("expected error for empty path")
		}
	})

	t.Run("file database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "journal.db")
		db, err := OpenJournal(DatabaseConfig{Path: path, MaxOpenConns: 1, MaxIdleConns: 1})
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("SELECT 1 FROM runs LIMIT 1"); err != nil {
			t.Errorf("runs table should exist: %v", err)
		}
	})
}
