// Package search implements the advanced-search filter state machine,
// the arXiv query compiler and the result navigator.
package search

import (
	"slices"
	"time"
)

// DateRange bounds paper submission dates. Zero values mean unbounded
// on that side; a range used in a query must have both set.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Predefined submission ranges offered in the date filter menu, all
// ending now.
const (
	LastWeek  = 7 * 24 * time.Hour
	LastMonth = 30 * 24 * time.Hour
	LastYear  = 365 * 24 * time.Hour
)

// RangeEndingNow returns a date range spanning the given duration back
// from now.
func RangeEndingNow(span time.Duration, now time.Time) DateRange {
	return DateRange{From: now.Add(-span), To: now}
}

// FilterSet accumulates the optional constraints of an advanced
// search. All fields are optional; compiling an entirely empty set is
// an error.
type FilterSet struct {
	Query        string    `json:"query"`
	Dates        DateRange `json:"dates"`
	Author       string    `json:"author"`
	Categories   []string  `json:"categories"`
	MinCitations int       `json:"min_citations"`
}

// IsEmpty reports whether no constraint at all has been set.
func (f *FilterSet) IsEmpty() bool {
	return f.Query == "" &&
		f.Dates.IsZero() &&
		f.Author == "" &&
		len(f.Categories) == 0 &&
		f.MinCitations == 0
}

// ToggleCategory adds the category if absent and removes it if
// present, preserving the selection order of the rest.
func (f *FilterSet) ToggleCategory(id string) {
	if i := slices.Index(f.Categories, id); i >= 0 {
		f.Categories = slices.Delete(f.Categories, i, i+1)
		return
	}
	f.Categories = append(f.Categories, id)
}

// HasCategory reports whether the category is currently selected.
func (f *FilterSet) HasCategory(id string) bool {
	return slices.Contains(f.Categories, id)
}

// Reset clears every filter.
func (f *FilterSet) Reset() {
	*f = FilterSet{}
}
