// Package prefs persists per-user search preferences between sessions.
package prefs

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/Deborah-9/PaperPilot/internal/fsstore"
)

// Allowed values for the results-per-search setting.
var MaxResultsChoices = []int{5, 10, 20}

const DefaultMaxResults = 10

// Preferences is one user's persisted settings.
type Preferences struct {
	UserID     int64    `json:"user_id"`
	MaxResults int      `json:"max_results"`
	Categories []string `json:"categories,omitempty"`
	Journals   []string `json:"journals,omitempty"`
}

// Default returns a fresh preference record for a user.
func Default(userID int64) *Preferences {
	return &Preferences{UserID: userID, MaxResults: DefaultMaxResults}
}

// SetMaxResults accepts only the menu choices.
func (p *Preferences) SetMaxResults(n int) error {
	if !slices.Contains(MaxResultsChoices, n) {
		return fmt.Errorf("prefs: max results must be one of %v", MaxResultsChoices)
	}
	p.MaxResults = n
	return nil
}

// ToggleCategory flips a preferred category on or off.
func (p *Preferences) ToggleCategory(id string) {
	if i := slices.Index(p.Categories, id); i >= 0 {
		p.Categories = slices.Delete(p.Categories, i, i+1)
		return
	}
	p.Categories = append(p.Categories, id)
}

// HasCategory reports whether a category is preferred.
func (p *Preferences) HasCategory(id string) bool {
	return slices.Contains(p.Categories, id)
}

// Reset restores the defaults, dropping categories and journals.
func (p *Preferences) Reset() {
	*p = *Default(p.UserID)
}

// ToggleJournal flips a followed journal on or off.
func (p *Preferences) ToggleJournal(name string) {
	if i := slices.Index(p.Journals, name); i >= 0 {
		p.Journals = slices.Delete(p.Journals, i, i+1)
		return
	}
	p.Journals = append(p.Journals, name)
}

// Store reads and writes preference records as one JSON file per user.
type Store struct {
	dir string
}

// NewStore uses dir for preference files, creating it lazily on write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(userID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(userID, 10)+".json")
}

// Load returns the user's preferences, or defaults when none are
// saved yet.
func (s *Store) Load(userID int64) (*Preferences, error) {
	p := Default(userID)
	found, err := fsstore.ReadJSON(s.path(userID), p)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if !found {
		return Default(userID), nil
	}
	if p.MaxResults == 0 {
		p.MaxResults = DefaultMaxResults
	}
	p.UserID = userID
	return p, nil
}

// Save writes the record atomically.
func (s *Store) Save(p *Preferences) error {
	if err := fsstore.WriteJSONAtomic(s.path(p.UserID), p, fsstore.FileOptions{}); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
