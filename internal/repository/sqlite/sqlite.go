// Package sqlite implements the repository interfaces on SQLite via the
// pure-Go modernc.org/sqlite driver. One DB value owns the connection pool
// and hands out per-entity repositories that share it; the server closes
// the pool on shutdown.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// DB wraps the sql.DB pool and carries all repository methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath, configures it for
// concurrent web traffic, and runs migrations. Use ":memory:" in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty
	// database, so the pool must stay at one connection.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows reads concurrent with a write; foreign keys are off by
	// default in SQLite and the schema relies on them.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserRepo { return &UserRepo{db: db} }

// Habits returns the habit repository backed by this database.
func (db *DB) Habits() *HabitRepo { return &HabitRepo{db: db} }

// Tasks returns the task repository backed by this database.
func (db *DB) Tasks() *TaskRepo { return &TaskRepo{db: db} }

// Streaks returns the streak repository backed by this database.
func (db *DB) Streaks() *StreakRepo { return &StreakRepo{db: db} }

// Blacklist returns the revoked-token store backed by this database.
func (db *DB) Blacklist() *BlacklistRepo { return &BlacklistRepo{db: db} }

// migrate creates the schema. Every statement is idempotent, so this is
// safe to run on an existing database.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                    TEXT PRIMARY KEY,
			username              TEXT NOT NULL UNIQUE,
			email                 TEXT,
			password_hash         TEXT NOT NULL,
			is_guest              INTEGER NOT NULL DEFAULT 0,
			notifications_enabled INTEGER NOT NULL DEFAULT 1,
			created_on            TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
			ON users(email) WHERE email IS NOT NULL AND email != '';
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS habits (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			created_on       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			end_date         TEXT,
			reminder_enabled INTEGER NOT NULL DEFAULT 0,
			reminder_time    TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL DEFAULT 'active'
		);
		CREATE INDEX IF NOT EXISTS idx_habits_user_id ON habits(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating habits table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			habit_id    TEXT REFERENCES habits(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			date        TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'pending'
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_habit_id ON tasks(habit_id);
	`)
	if err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS streak_records (
			habit_id            TEXT PRIMARY KEY REFERENCES habits(id) ON DELETE CASCADE,
			current_streak      INTEGER NOT NULL DEFAULT 0,
			longest_streak      INTEGER NOT NULL DEFAULT 0,
			last_completed_date TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("creating streak_records table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS token_blacklist (
			token_id   TEXT PRIMARY KEY,
			expires_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_token_blacklist_expires_at
			ON token_blacklist(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("creating token_blacklist table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given column (e.g. "users.username").
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
