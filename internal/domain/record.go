package domain

import "time"

// ExistingRecord is a snapshot of a record already present in a collection.
type ExistingRecord struct {
	RecordID      string
	StableID      string
	Name          string
	DurationHours *float64
}

// RecordFields is the set of properties written to a record on create or update.
// Nil and empty values are left untouched by updates.
type RecordFields struct {
	Name              string
	DurationHours     float64
	Date              *time.Time
	Category          Category
	Client            string
	StableID          string
	BillingMonthHours *float64
}

// Collection is a target database known to the local ledger.
type Collection struct {
	ID               string
	Name             string
	BillingAnchorDay int
	CreatedAt        time.Time
}

// StoredRecord is a record persisted in the local ledger.
type StoredRecord struct {
	ID                string
	CollectionID      string
	StableID          string
	Name              string
	DurationHours     float64
	BillingMonthHours *float64
	RecordDate        time.Time
	Category          Category
	Client            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
