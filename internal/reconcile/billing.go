package reconcile

import (
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
)

// BillingWindow is the half-open interval [Start, End) of one billing month.
type BillingWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls inside the window.
func (w BillingWindow) Contains(day time.Time) bool {
	d := dateOnly(day)
	return !d.Before(w.Start) && d.Before(w.End)
}

// BillingWindowFor returns the billing month that starts on anchorDay in the
// task's calendar month. An anchor that does not exist in either the start or
// the end month is rejected rather than rolled over.
func BillingWindowFor(taskDate time.Time, anchorDay int) (BillingWindow, error) {
	if anchorDay < 1 || anchorDay > 31 {
		return BillingWindow{}, fmt.Errorf("%w: day %d outside 1..31", domain.ErrInvalidBillingAnchor, anchorDay)
	}

	d := dateOnly(taskDate)
	startYear, startMonth := d.Year(), d.Month()
	next := time.Date(startYear, startMonth+1, 1, 0, 0, 0, 0, time.UTC)
	endYear, endMonth := next.Year(), next.Month()

	if n := daysIn(startYear, startMonth); anchorDay > n {
		return BillingWindow{}, fmt.Errorf("%w: day %d does not exist in %s %d (%d days)",
			domain.ErrInvalidBillingAnchor, anchorDay, startMonth, startYear, n)
	}
	if n := daysIn(endYear, endMonth); anchorDay > n {
		return BillingWindow{}, fmt.Errorf("%w: day %d does not exist in %s %d (%d days)",
			domain.ErrInvalidBillingAnchor, anchorDay, endMonth, endYear, n)
	}

	return BillingWindow{
		Start: time.Date(startYear, startMonth, anchorDay, 0, 0, 0, 0, time.UTC),
		End:   time.Date(endYear, endMonth, anchorDay, 0, 0, 0, 0, time.UTC),
	}, nil
}

// AllocateBillingHours returns the part of totalHours that belongs to the
// billing month anchored on anchorDay.
func AllocateBillingHours(taskDate time.Time, anchorDay int, totalHours float64) (float64, error) {
	w, err := BillingWindowFor(taskDate, anchorDay)
	if err != nil {
		return 0, err
	}
	return allocateWithin(w, taskDate, totalHours), nil
}

// allocateWithin applies the three allocation cases against a known window.
// Past the window end the overlap is approximated in whole days and never
// goes below zero.
func allocateWithin(w BillingWindow, taskDate time.Time, totalHours float64) float64 {
	d := dateOnly(taskDate)
	switch {
	case w.Contains(d):
		return totalHours
	case d.Before(w.Start):
		return 0
	default:
		overlapDays := w.End.Sub(d).Hours() / 24
		return math.Max(0, RoundQuarterHour(overlapDays*24))
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
