package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"personabot/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// Store bundles the sqlite-backed repositories sharing one database handle
type Store struct {
	db *sql.DB

	Config  repo.ConfigRepo
	History repo.HistoryRepo
}

// NewStore opens the database, ensures the schema and wires the repositories
func NewStore(dbPath string) (*Store, error) {
	// Ensure directory exists
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		Config:  newConfigRepo(db),
		History: newHistoryRepo(db),
	}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			conversation_id INTEGER PRIMARY KEY,
			persona_role TEXT NOT NULL DEFAULT '',
			persona_task TEXT NOT NULL DEFAULT '',
			response_length TEXT NOT NULL DEFAULT 'medium',
			response_percentage INTEGER NOT NULL DEFAULT 100,
			memory_size INTEGER NOT NULL DEFAULT 10,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS conversation_admins (
			conversation_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			added_at INTEGER NOT NULL,
			PRIMARY KEY (conversation_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS tracked_users (
			conversation_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			added_at INTEGER NOT NULL,
			PRIMARY KEY (conversation_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			message TEXT NOT NULL,
			is_bot INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_conversation
			ON history(conversation_id, created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
