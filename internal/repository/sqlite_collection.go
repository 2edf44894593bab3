package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tasksync/internal/db"
	"github.com/alexanderramin/tasksync/internal/domain"
)

// SQLiteCollectionRepo implements CollectionRepo using a SQLite database.
type SQLiteCollectionRepo struct {
	db db.DBTX
}

// NewSQLiteCollectionRepo creates a new SQLiteCollectionRepo.
func NewSQLiteCollectionRepo(conn db.DBTX) *SQLiteCollectionRepo {
	return &SQLiteCollectionRepo{db: conn}
}

func (r *SQLiteCollectionRepo) Create(ctx context.Context, c *domain.Collection) error {
	query := `INSERT INTO collections (id, name, billing_anchor_day, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.BillingAnchorDay,
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting collection: %w", err)
	}
	return nil
}

func (r *SQLiteCollectionRepo) GetByID(ctx context.Context, id string) (*domain.Collection, error) {
	query := `SELECT id, name, billing_anchor_day, created_at FROM collections WHERE id = ?`
	return scanCollection(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteCollectionRepo) GetByName(ctx context.Context, name string) (*domain.Collection, error) {
	query := `SELECT id, name, billing_anchor_day, created_at FROM collections WHERE name = ? COLLATE NOCASE`
	return scanCollection(r.db.QueryRowContext(ctx, query, name))
}

func (r *SQLiteCollectionRepo) List(ctx context.Context) ([]*domain.Collection, error) {
	query := `SELECT id, name, billing_anchor_day, created_at FROM collections ORDER BY name`
	out, err := db.QueryAll(ctx, r.db, scanCollection, query)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return out, nil
}

func (r *SQLiteCollectionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("collection %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanCollection(row db.RowScanner) (*domain.Collection, error) {
	var c domain.Collection
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.BillingAnchorDay, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("collection: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	var err error
	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &c, nil
}
