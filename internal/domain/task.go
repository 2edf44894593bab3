package domain

import (
	"regexp"
	"strings"
)

// Task is one row of the time-tracking export.
type Task struct {
	Name          string
	RawDuration   string
	DurationHours float64
	StableID      string

	// GeneratedID is set when StableID was minted during this ingestion and
	// has never been stored remotely.
	GeneratedID bool
}

// CategorizedTask is the classifier's verdict for one task name.
type CategorizedTask struct {
	OriginalName string
	Category     Category
	ClientName   string
	CleanedName  string
	StableID     string
}

// DisplayName returns the cleaned name, falling back to the original.
func (c CategorizedTask) DisplayName() string {
	return CoalesceStr(c.CleanedName, c.OriginalName)
}

var taskIDMarker = regexp.MustCompile(`\[TaskID: (.+?)\]`)

// ExtractTaskIDMarker pulls an embedded "[TaskID: x]" marker out of a task
// name. It returns the name without the marker and the ID, if any.
func ExtractTaskIDMarker(name string) (string, string) {
	m := taskIDMarker.FindStringSubmatchIndex(name)
	if m == nil {
		return name, ""
	}
	id := name[m[2]:m[3]]
	stripped := strings.TrimSpace(name[:m[0]] + name[m[1]:])
	return stripped, id
}
