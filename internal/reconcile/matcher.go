package reconcile

import (
	"strings"
	"unicode"

	"github.com/alexanderramin/tasksync/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FindMatch locates the existing record a candidate task refers to.
//
// When stableID is set only an identical StableID matches; an unmatched ID does
// not fall back to name comparison. Without a stableID the first record whose
// normalized name equals the candidate's wins.
func FindMatch(name, stableID string, existing []domain.ExistingRecord) (*domain.ExistingRecord, bool) {
	if stableID != "" {
		for i := range existing {
			if existing[i].StableID == stableID {
				rec := existing[i]
				return &rec, true
			}
		}
		return nil, false
	}

	want := NormalizeName(name)
	if want == "" {
		return nil, false
	}
	for i := range existing {
		if NormalizeName(existing[i].Name) == want {
			rec := existing[i]
			return &rec, true
		}
	}
	return nil, false
}

// NormalizeName lowercases s and removes everything except ASCII letters,
// digits and whitespace.
func NormalizeName(s string) string {
	lower := cases.Lower(language.Und).String(s)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
