package domain

import "strings"

// Category is the work category assigned to a task by the classifier.
type Category string

const (
	CategoryClientWork Category = "Client Work"
	CategoryWork       Category = "Work"
	CategoryPersonal   Category = "Personal"
)

// ValidCategories is the canonical set of accepted category strings.
var ValidCategories = map[Category]bool{
	CategoryClientWork: true,
	CategoryWork:       true,
	CategoryPersonal:   true,
}

// ParseCategory maps a loosely formatted category label onto a known Category.
// Matching ignores case and surrounding whitespace, and accepts "ClientWork"
// and "client_work" spellings.
func ParseCategory(s string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	if key == "clientwork" || key == "client" {
		key = "client work"
	}
	for c := range ValidCategories {
		if strings.ToLower(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

type IntentKind string

const (
	IntentUpdate IntentKind = "update"
	IntentCreate IntentKind = "create"
)

// Stage names the reconciliation step at which a task was dropped.
type Stage string

const (
	StageIngest   Stage = "ingest"
	StageClassify Stage = "classify"
	StageRoute    Stage = "route"
	StageMatch    Stage = "match"
	StageBilling  Stage = "billing"
	StageApply    Stage = "apply"
)

type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
	RunDryRun    RunStatus = "dry_run"
)
