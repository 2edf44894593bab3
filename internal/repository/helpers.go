package repository

import (
	"database/sql"
	"time"
)

// dateLayout is the storage format for calendar dates.
const dateLayout = "2006-01-02"

// nullableFloatToValue converts a *float64 to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil.
func nullableFloatToValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// parseNullableFloat converts a sql.NullFloat64 into a *float64.
func parseNullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// formatDate stores only the calendar date of t.
func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
