// Package store provides the SQLite-backed local message cache: archive
// pages and recent windows fetched from the server, plus full persistence
// for offline practice conversations.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"

	"github.com/shettydev/mukti-tui/internal/config"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

const currentSchemaVersion = 1

// Store provides access to the SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a Store with the database at the default location.
func New() (*Store, error) {
	dir, err := config.EnsureDataDir()
	if err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "mukti.db")
	return Open(dbPath)
}

// Open opens a database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// OpenMemory opens an in-memory database for testing.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs schema migrations. The cache holds nothing the server
// cannot resend, so a version bump recreates rather than migrates.
func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		// Table doesn't exist, create fresh schema
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	if version == currentSchemaVersion {
		return nil
	}

	if version < currentSchemaVersion {
		if _, err := s.db.Exec(`
			DROP TABLE IF EXISTS messages;
			DROP TABLE IF EXISTS conversations;
			DROP TABLE IF EXISTS schema_version;
		`); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("recreate schema: %w", err)
		}
	}

	return nil
}
