package domain

import "time"

// Intent is the reconciliation outcome for one task: either update an
// existing record or create a new one. Only the fields relevant to Kind are set.
type Intent struct {
	Kind IntentKind

	// Update
	RecordID string
	// BillingMonthHours is nil when the billing window could not be derived.
	BillingMonthHours *float64

	// Create
	DatabaseRef DatabaseRef
	Date        time.Time
	Client      string

	// Shared
	Name          string
	DurationHours float64
	Category      Category
	StableID      string
}

// Fields converts the intent into the property set written to the store.
func (i Intent) Fields() RecordFields {
	f := RecordFields{
		Name:          i.Name,
		DurationHours: i.DurationHours,
		Category:      i.Category,
		StableID:      i.StableID,
	}
	switch i.Kind {
	case IntentUpdate:
		if i.BillingMonthHours != nil {
			h := *i.BillingMonthHours
			f.BillingMonthHours = &h
		}
	case IntentCreate:
		d := i.Date
		f.Date = &d
		f.Client = i.Client
	}
	return f
}

// SyncRun is the persisted summary of one sync invocation.
type SyncRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	TaskDate   time.Time
	TaskCount  int
	Created    int
	Updated    int
	Skipped    int
	Failed     int
	Status     RunStatus
	Error      string
}
