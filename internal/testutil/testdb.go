package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/tasksync/internal/db"
)

// NewTestDB opens a migrated in-memory ledger that is closed with the test.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("opening test ledger: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
