package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDB_PragmasOnEveryConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(3)

	ctx := context.Background()
	conns := make([]interface{ Close() error }, 0, 3)
	for i := 0; i < 3; i++ {
		conn, err := db.Conn(ctx)
		require.NoError(t, err)
		conns = append(conns, conn)

		var fk, busy int
		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&busy))
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
		assert.Equal(t, 1, fk, "connection %d", i)
		assert.Equal(t, int(BusyTimeout.Milliseconds()), busy)
		assert.Equal(t, "wal", mode)
	}
	for _, c := range conns {
		require.NoError(t, c.Close())
	}
}

func TestOpenDB_Memory(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestQueryAll(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	for _, name := range []string{"Work", "Acme", "Personal"} {
		_, err := db.Exec(`INSERT INTO collections (id, name, billing_anchor_day, created_at) VALUES (?, ?, 1, '2025-01-01T00:00:00Z')`,
			"id-"+name, name)
		require.NoError(t, err)
	}

	scanName := func(row RowScanner) (string, error) {
		var s string
		err := row.Scan(&s)
		return s, err
	}

	names, err := QueryAll(ctx, db, scanName, `SELECT name FROM collections ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Personal", "Work"}, names)

	none, err := QueryAll(ctx, db, scanName, `SELECT name FROM collections WHERE name = ?`, "missing")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = QueryAll(ctx, db, scanName, `SELECT nope FROM collections`)
	assert.Error(t, err)
}
