// Package sqlite implements the repository interfaces on SQLite through
// database/sql and the pure-Go modernc.org/sqlite driver (no CGo).
//
// TIMESTAMPS:
// Every time.Time is converted to UTC before it is written or used as a
// query parameter. The driver stores times as text, so keeping a single
// offset makes range predicates like "logged_at >= ?" compare correctly.
//
// CONNECTIONS:
// The pool is capped at one connection. SQLite allows a single writer
// anyway, per-connection PRAGMAs (foreign_keys) then hold for every query,
// and ":memory:" databases stay one database instead of one per connection.
// The flip side: never start a second query while iterating *sql.Rows.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/fittrack.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers of other processes (backups, sqlite3 CLI) proceed
	// while the server writes. In-memory databases silently keep "memory".
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn, now: func() time.Time { return time.Now().UTC() }}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable; used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// migrate creates tables idempotently. Columns added after the first
// release go through addColumnIfNotExists so older files upgrade in place.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			email           TEXT NOT NULL UNIQUE,
			name            TEXT NOT NULL,
			password_hash   TEXT NOT NULL DEFAULT '',
			profile_photo   TEXT NOT NULL DEFAULT '',
			age             INTEGER NOT NULL DEFAULT 0,
			gender          TEXT NOT NULL DEFAULT '',
			height          REAL NOT NULL DEFAULT 0,
			weight          REAL NOT NULL DEFAULT 0,
			goal_weight     REAL NOT NULL DEFAULT 0,
			diet_preference TEXT NOT NULL DEFAULT '',
			fitness_goal    TEXT NOT NULL DEFAULT '',
			activity_level  TEXT NOT NULL DEFAULT '',
			daily_calories  INTEGER NOT NULL DEFAULT 0,
			dark_mode       INTEGER NOT NULL DEFAULT 0,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Medical history arrived with the safety-aware plan prompts.
	if err := db.addColumnIfNotExists("users", "medical_conditions", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding medical_conditions to users: %w", err)
	}
	if err := db.addColumnIfNotExists("users", "past_surgeries", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding past_surgeries to users: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS meal_logs (
			id        TEXT PRIMARY KEY,
			user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name      TEXT NOT NULL,
			calories  REAL NOT NULL,
			protein   REAL NOT NULL DEFAULT 0,
			carbs     REAL NOT NULL DEFAULT 0,
			fat       REAL NOT NULL DEFAULT 0,
			notes     TEXT NOT NULL DEFAULT '',
			logged_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_meal_logs_user_time ON meal_logs(user_id, logged_at);

		CREATE TABLE IF NOT EXISTS workout_logs (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type            TEXT NOT NULL,
			duration        INTEGER NOT NULL DEFAULT 0,
			calories_burned REAL NOT NULL DEFAULT 0,
			notes           TEXT NOT NULL DEFAULT '',
			logged_at       DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_workout_logs_user_time ON workout_logs(user_id, logged_at);

		CREATE TABLE IF NOT EXISTS weight_logs (
			id        TEXT PRIMARY KEY,
			user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			weight    REAL NOT NULL,
			notes     TEXT NOT NULL DEFAULT '',
			logged_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_weight_logs_user_time ON weight_logs(user_id, logged_at);
	`)
	if err != nil {
		return fmt.Errorf("creating log tables: %w", err)
	}

	// The UNIQUE key is what makes UpsertPlan idempotent.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS daily_plans (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			date       TEXT NOT NULL,
			plan_type  TEXT NOT NULL CHECK (plan_type IN ('diet', 'workout')),
			content    TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE (user_id, date, plan_type)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating daily_plans table: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// upperBound turns the open end of a TimeRange into a usable parameter.
func upperBound(t time.Time) time.Time {
	if t.IsZero() {
		return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return t.UTC()
}
