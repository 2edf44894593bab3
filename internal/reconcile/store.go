package reconcile

import (
	"context"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
)

// SnapshotReader is the read side of a record store used while planning.
type SnapshotReader interface {
	QueryExisting(ctx context.Context, collectionID string, date time.Time) ([]domain.ExistingRecord, error)
	GetBillingAnchor(ctx context.Context, collectionID string) (int, error)
}

// RecordStore is a remote or local set of task collections.
type RecordStore interface {
	SnapshotReader
	CreateRecord(ctx context.Context, collectionID string, fields domain.RecordFields) (string, error)
	UpdateRecord(ctx context.Context, recordID string, fields domain.RecordFields) error
}
