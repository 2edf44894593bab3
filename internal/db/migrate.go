package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS collections (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL UNIQUE,
		billing_anchor_day INTEGER NOT NULL DEFAULT 1
		                   CHECK(billing_anchor_day BETWEEN 1 AND 31),
		created_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS records (
		id                  TEXT PRIMARY KEY,
		collection_id       TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		stable_id           TEXT NOT NULL DEFAULT '',
		name                TEXT NOT NULL,
		duration_hours      REAL NOT NULL DEFAULT 0 CHECK(duration_hours >= 0),
		billing_month_hours REAL,
		record_date         TEXT NOT NULL,
		category            TEXT NOT NULL DEFAULT '',
		client              TEXT NOT NULL DEFAULT '',
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_records_collection_date ON records(collection_id, record_date)`,
	`CREATE INDEX IF NOT EXISTS idx_records_stable_id ON records(stable_id)`,

	`CREATE TABLE IF NOT EXISTS cache_entries (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		expires_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS sync_runs (
		id          TEXT PRIMARY KEY,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		task_date   TEXT NOT NULL,
		task_count  INTEGER NOT NULL DEFAULT 0,
		created     INTEGER NOT NULL DEFAULT 0,
		updated     INTEGER NOT NULL DEFAULT 0,
		skipped     INTEGER NOT NULL DEFAULT 0,
		failed      INTEGER NOT NULL DEFAULT 0,
		status      TEXT NOT NULL
		            CHECK(status IN ('succeeded','partial','failed','dry_run')),
		error       TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at)`,
}
