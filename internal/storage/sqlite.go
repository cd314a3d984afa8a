// Package storage is the durable tier: consent records, session
// summaries, session snapshots, and the chat-history transcript log.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/curamyn/curamyn/internal/config"
	. "github.com/curamyn/curamyn/internal/logging"
)

// Schema version for migrations
const currentSchemaVersion = 1

// Store is the SQLite-backed durable store.
type Store struct {
	db *sql.DB
}

// NewStore opens (and migrates) the durable store.
func NewStore(cfg config.StoreConfig) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	L_info("storage: store opened", "path", cfg.Path)
	return store, nil
}

// NewStoreWithDB wraps an existing database handle (used by tests).
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *Store) Migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist, start from scratch
		version = 0
	}

	if version >= currentSchemaVersion {
		L_debug("storage: schema up to date", "version", version)
		return nil
	}

	L_info("storage: migrating schema", "from", version, "to", currentSchemaVersion)

	migrations := []func(*sql.DB) error{
		migrateV1,
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](s.db); err != nil {
			return fmt.Errorf("migration v%d failed: %w", i+1, err)
		}
		L_debug("storage: applied migration", "version", i+1)
	}

	return nil
}

// migrateV1 creates the initial schema.
func migrateV1(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	);

	-- Per-user consent flags; privacy by default (no row = all false)
	CREATE TABLE IF NOT EXISTS consent (
		user_id TEXT PRIMARY KEY,
		memory INTEGER NOT NULL DEFAULT 0,
		voice INTEGER NOT NULL DEFAULT 0,
		image INTEGER NOT NULL DEFAULT 0,
		document INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);

	-- End-of-session summaries (privacy-safe, categorical signals only)
	CREATE TABLE IF NOT EXISTS session_summaries (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		summary_json TEXT NOT NULL,
		ended_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_user ON session_summaries(user_id, session_id);

	-- Durable session snapshots, swept against the long TTL
	CREATE TABLE IF NOT EXISTS session_snapshots (
		session_id TEXT PRIMARY KEY,
		snapshot_json TEXT NOT NULL,
		last_activity INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_activity ON session_snapshots(last_activity);

	-- Chat-history transcript log (display only)
	CREATE TABLE IF NOT EXISTS transcripts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transcripts_session ON transcripts(user_id, session_id, id);
	`

	if _, err := db.Exec(schema); err != nil {
		return err
	}

	_, err := db.Exec("INSERT INTO schema_version (version, applied_at) VALUES (1, strftime('%s','now'))")
	return err
}

// newID mints a row id.
func newID() string {
	return uuid.NewString()
}
