package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tasksync/internal/db"
)

// SQLiteCacheRepo is a key/value cache with per-entry expiry.
type SQLiteCacheRepo struct {
	db  db.DBTX
	now func() time.Time
}

// NewSQLiteCacheRepo creates a new SQLiteCacheRepo.
func NewSQLiteCacheRepo(conn db.DBTX) *SQLiteCacheRepo {
	return &SQLiteCacheRepo{db: conn, now: time.Now}
}

// Get returns the value stored under key. Expired entries read as missing.
func (r *SQLiteCacheRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}

	exp, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return nil, false, fmt.Errorf("parsing expires_at for %s: %w", key, err)
	}
	if !r.now().Before(exp) {
		return nil, false, nil
	}
	return value, true, nil
}

func (r *SQLiteCacheRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := r.now().Add(ttl).UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteCacheRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

// PurgeExpired removes every expired entry and reports how many were removed.
func (r *SQLiteCacheRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at <= ?`,
		r.now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}
