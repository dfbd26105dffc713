// Package sqlite provides a SQLite-backed implementation of db.Store
// using the pure Go driver, suitable for single-node deployments and
// for the test suite.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver (no CGO)

	"spendwise-server/src/db"
)

var _ db.Store = (*Store)(nil)

// dateLayout is how timestamps are stored: UTC text, compatible with
// sqlite's strftime and with lexicographic range comparisons.
const dateLayout = "2006-01-02 15:04:05"

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs the
// schema migration.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: sqlDB}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", v, err)
	}
	return t, nil
}
