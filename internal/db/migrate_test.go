package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"collections", "records", "cache_entries", "sync_runs"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_records_collection_date",
		"idx_records_stable_id",
		"idx_sync_runs_started",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_WALModeRequested(t *testing.T) {
	// In-memory SQLite reports "memory"; WAL only applies to file DBs.
	db := openTestDB(t)

	var mode string
	err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "memory", mode)
}

func TestMigrate_CollectionAnchorCheck(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO collections (id, name, billing_anchor_day, created_at)
		VALUES ('c1', 'Work', 32, '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "anchor day outside 1..31 should be rejected")

	_, err = db.Exec(`INSERT INTO collections (id, name, billing_anchor_day, created_at)
		VALUES ('c1', 'Work', 31, '2025-01-01T00:00:00Z')`)
	assert.NoError(t, err)
}

func TestMigrate_RecordsCascadeOnCollectionDelete(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO collections (id, name, created_at) VALUES ('c1', 'Work', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO records (id, collection_id, name, duration_hours, record_date, created_at, updated_at)
		VALUES ('r1', 'c1', 'Standup', 0.25, '2025-03-10', '2025-03-10T00:00:00Z', '2025-03-10T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM collections WHERE id = 'c1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n))
	assert.Zero(t, n)
}

func TestMigrate_RecordsRejectOrphans(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO records (id, collection_id, name, record_date, created_at, updated_at)
		VALUES ('r1', 'missing', 'Standup', '2025-03-10', '2025-03-10T00:00:00Z', '2025-03-10T00:00:00Z')`)
	assert.Error(t, err, "records must reference an existing collection")
}

func TestMigrate_SyncRunsStatusCheck(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO sync_runs (id, started_at, finished_at, task_date, status)
		VALUES ('s1', '2025-03-10T00:00:00Z', '2025-03-10T00:00:01Z', '2025-03-10', 'INVALID')`)
	assert.Error(t, err)
}
