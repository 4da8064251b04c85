package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DecisionLog records every classification decision in SQLite so runs are
// auditable after the fact.
type DecisionLog struct {
	db     *sql.DB
	dbPath string
}

// NewDecisionLog opens (and if necessary creates) the decision database.
func NewDecisionLog(dbPath string) (*DecisionLog, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	l := &DecisionLog{db: db, dbPath: dbPath}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *DecisionLog) Close() error {
	return l.db.Close()
}

func (l *DecisionLog) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			evaluated INTEGER NOT NULL DEFAULT 0,
			passed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS decisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			listing_id TEXT NOT NULL,
			subreddit TEXT,
			title TEXT NOT NULL,
			url TEXT,
			passed BOOLEAN NOT NULL,
			reasons TEXT,
			price INTEGER,
			matched_type TEXT,
			matched_neighborhood TEXT,
			strategy TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (run_id) REFERENCES scan_runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_listing ON decisions(listing_id)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id)`,
	}

	for _, query := range queries {
		if _, err := l.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}
