package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	// Enable WAL mode (Write-Ahead Logging)
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for collaborating stores that share
// the same database file (the image blob store).
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	// Node and edge rows mirror the canvas graph. Position is stored as
	// two columns for cheap drag updates; the variant payload is a JSON
	// blob so prompt and image nodes share one table.
	query := `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		position_x REAL NOT NULL,
		position_y REAL NOT NULL,
		data JSON NOT NULL,
		selectable INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS edges (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		source_handle TEXT,
		target_handle TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);

	-- Binary payloads live apart from the graph so node rows stay small.
	CREATE TABLE IF NOT EXISTS images (
		id TEXT PRIMARY KEY,
		image_data TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		width INTEGER,
		height INTEGER,
		source TEXT NOT NULL,
		tags JSON
	);

	CREATE INDEX IF NOT EXISTS idx_images_source ON images(source);

	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	-- Credentials survive ClearAll on purpose: a data reset must not
	-- force the user to re-enter provider API keys.
	CREATE TABLE IF NOT EXISTS credentials (
		provider TEXT PRIMARY KEY,
		api_key TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create canvas tables: %w", err)
	}

	return nil
}
