package testutil

import (
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/google/uuid"
)

// Collection options
type CollectionOption func(*domain.Collection)

func WithAnchorDay(day int) CollectionOption {
	return func(c *domain.Collection) {
		c.BillingAnchorDay = day
	}
}

func WithCollectionID(id string) CollectionOption {
	return func(c *domain.Collection) {
		c.ID = id
	}
}

func NewTestCollection(name string, opts ...CollectionOption) *domain.Collection {
	c := &domain.Collection{
		ID:               uuid.New().String(),
		Name:             name,
		BillingAnchorDay: 1,
		CreatedAt:        time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record options
type RecordOption func(*domain.RecordFields)

func WithStableID(id string) RecordOption {
	return func(f *domain.RecordFields) {
		f.StableID = id
	}
}

func WithCategory(c domain.Category) RecordOption {
	return func(f *domain.RecordFields) {
		f.Category = c
	}
}

func WithClient(name string) RecordOption {
	return func(f *domain.RecordFields) {
		f.Client = name
	}
}

func WithBillingMonthHours(h float64) RecordOption {
	return func(f *domain.RecordFields) {
		f.BillingMonthHours = &h
	}
}

// NewTestRecordFields returns create-ready fields for a record on date.
func NewTestRecordFields(name string, hours float64, date time.Time, opts ...RecordOption) domain.RecordFields {
	d := date
	f := domain.RecordFields{
		Name:          name,
		DurationHours: hours,
		Date:          &d,
		Category:      domain.CategoryWork,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// SyncRun options
type SyncRunOption func(*domain.SyncRun)

func WithRunStatus(s domain.RunStatus) SyncRunOption {
	return func(r *domain.SyncRun) {
		r.Status = s
	}
}

func WithStartedAt(t time.Time) SyncRunOption {
	return func(r *domain.SyncRun) {
		r.StartedAt = t
		r.FinishedAt = t.Add(2 * time.Second)
	}
}

func WithCounts(created, updated, skipped, failed int) SyncRunOption {
	return func(r *domain.SyncRun) {
		r.Created = created
		r.Updated = updated
		r.Skipped = skipped
		r.Failed = failed
		r.TaskCount = created + updated + skipped + failed
	}
}

func NewTestSyncRun(taskDate time.Time, opts ...SyncRunOption) *domain.SyncRun {
	now := time.Now().UTC().Truncate(time.Second)
	r := &domain.SyncRun{
		ID:         uuid.New().String(),
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
		TaskDate:   taskDate,
		Status:     domain.RunSucceeded,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
