package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/ingest"
	"github.com/alexanderramin/tasksync/internal/reconcile"
)

type SyncService interface {
	Run(ctx context.Context, req SyncRequest) (*SyncReport, error)
}

type CollectionService interface {
	Add(ctx context.Context, name string, anchorDay int) (*domain.Collection, error)
	List(ctx context.Context) ([]*domain.Collection, error)
	EnsureFromRouting(ctx context.Context, table domain.RoutingTable, anchorDay int) ([]*domain.Collection, error)
}

type RunService interface {
	GetByID(ctx context.Context, id string) (*domain.SyncRun, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error)
}

// RoutingLoader yields a validated routing table.
type RoutingLoader interface {
	Load(ctx context.Context) (domain.RoutingTable, error)
}

// Planner turns classified tasks into intents.
type Planner interface {
	Plan(ctx context.Context, in reconcile.PlanInput) (*reconcile.Plan, error)
}

// RecordWriter applies intents to the record store.
type RecordWriter interface {
	CreateRecord(ctx context.Context, collectionID string, fields domain.RecordFields) (string, error)
	UpdateRecord(ctx context.Context, recordID string, fields domain.RecordFields) error
}

// SyncRequest selects the day to reconcile. A zero Date means today.
type SyncRequest struct {
	Date   time.Time
	DryRun bool
}

// IntentResult is the outcome of applying one intent.
type IntentResult struct {
	Intent   domain.Intent
	RecordID string
	Err      error
}

// SyncReport describes a finished run.
type SyncReport struct {
	Run       *domain.SyncRun
	Plan      *reconcile.Plan
	RowErrors []*ingest.RowError

	// Unclassified lists tasks the classifier returned no entry for.
	Unclassified []*domain.TaskError

	Results []IntentResult
}

// Failures returns the intents that could not be applied.
func (r *SyncReport) Failures() []*domain.TaskError {
	var out []*domain.TaskError
	for _, res := range r.Results {
		if res.Err == nil {
			continue
		}
		out = append(out, &domain.TaskError{Task: res.Intent.Name, Stage: domain.StageApply, Err: res.Err})
	}
	return out
}
