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

// SQLiteSyncRunRepo implements SyncRunRepo using a SQLite database.
type SQLiteSyncRunRepo struct {
	db db.DBTX
}

// NewSQLiteSyncRunRepo creates a new SQLiteSyncRunRepo.
func NewSQLiteSyncRunRepo(conn db.DBTX) *SQLiteSyncRunRepo {
	return &SQLiteSyncRunRepo{db: conn}
}

const syncRunColumns = `id, started_at, finished_at, task_date, task_count,
	created, updated, skipped, failed, status, error`

func (r *SQLiteSyncRunRepo) Create(ctx context.Context, run *domain.SyncRun) error {
	query := `INSERT INTO sync_runs (` + syncRunColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		formatDate(run.TaskDate),
		run.TaskCount,
		run.Created,
		run.Updated,
		run.Skipped,
		run.Failed,
		string(run.Status),
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting sync run: %w", err)
	}
	return nil
}

func (r *SQLiteSyncRunRepo) GetByID(ctx context.Context, id string) (*domain.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE id = ?`
	run, err := scanSyncRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync run: %w", ErrNotFound)
	}
	return run, err
}

// ListRecent returns the newest runs first.
func (r *SQLiteSyncRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs ORDER BY started_at DESC, id LIMIT ?`
	out, err := db.QueryAll(ctx, r.db, scanSyncRun, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sync runs: %w", err)
	}
	return out, nil
}

func scanSyncRun(row db.RowScanner) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var startedAt, finishedAt, taskDate, status string
	err := row.Scan(
		&run.ID, &startedAt, &finishedAt, &taskDate, &run.TaskCount,
		&run.Created, &run.Updated, &run.Skipped, &run.Failed, &status, &run.Error,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning sync run: %w", err)
	}

	run.Status = domain.RunStatus(status)
	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
		return nil, fmt.Errorf("parsing finished_at: %w", err)
	}
	if run.TaskDate, err = time.Parse(dateLayout, taskDate); err != nil {
		return nil, fmt.Errorf("parsing task_date: %w", err)
	}
	return &run, nil
}
