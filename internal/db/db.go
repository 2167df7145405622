package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// TimeLayout is the timestamp format stored in the database. Timestamps
// are compared as strings in SQL, and RFC3339Nano trims trailing zeros,
// which puts a whole-second value after a fractional one in the same
// second. Fixed-width nanoseconds keep string order identical to time
// order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps a sql.DB with seismo-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
// usage_entries is append-only: rows are never updated or deleted.
const schema = `
CREATE TABLE IF NOT EXISTS usage_entries (
    id TEXT PRIMARY KEY,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    tokens_used INTEGER NOT NULL DEFAULT 0,
    cost_cents REAL NOT NULL DEFAULT 0,
    latency_ms INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL CHECK(status IN ('success','error','timeout')),
    timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
    organization_id TEXT NOT NULL,
    survey_id TEXT,
    item_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_usage_org_time ON usage_entries(organization_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_usage_provider ON usage_entries(provider);
CREATE INDEX IF NOT EXISTS idx_usage_survey ON usage_entries(survey_id);

CREATE TABLE IF NOT EXISTS batch_summaries (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL,
    survey_id TEXT NOT NULL,
    total_requested INTEGER NOT NULL,
    succeeded INTEGER NOT NULL,
    failed INTEGER NOT NULL,
    total_cost_cents REAL NOT NULL DEFAULT 0,
    total_tokens INTEGER NOT NULL DEFAULT 0,
    wall_clock_ms INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_batches_org ON batch_summaries(organization_id, created_at);

CREATE TABLE IF NOT EXISTS metrics_snapshots (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL,
    survey_id TEXT NOT NULL,
    metrics TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_org ON metrics_snapshots(organization_id, created_at);
`
