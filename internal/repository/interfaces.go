package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/reconcile"
)

type CollectionRepo interface {
	Create(ctx context.Context, c *domain.Collection) error
	GetByID(ctx context.Context, id string) (*domain.Collection, error)
	GetByName(ctx context.Context, name string) (*domain.Collection, error)
	List(ctx context.Context) ([]*domain.Collection, error)
	Delete(ctx context.Context, id string) error
}

// RecordRepo is the local ledger of synced records. It doubles as a
// reconcile.RecordStore for offline runs.
type RecordRepo interface {
	reconcile.RecordStore
	GetByID(ctx context.Context, id string) (*domain.StoredRecord, error)
	ListByCollection(ctx context.Context, collectionID string, date *time.Time) ([]*domain.StoredRecord, error)
}

type CacheRepo interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type SyncRunRepo interface {
	Create(ctx context.Context, run *domain.SyncRun) error
	GetByID(ctx context.Context, id string) (*domain.SyncRun, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error)
}

var (
	_ CollectionRepo = (*SQLiteCollectionRepo)(nil)
	_ RecordRepo     = (*SQLiteRecordRepo)(nil)
	_ CacheRepo      = (*SQLiteCacheRepo)(nil)
	_ SyncRunRepo    = (*SQLiteSyncRunRepo)(nil)
)
