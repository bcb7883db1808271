// Package notify implements paper alert subscriptions and the
// background checker that delivers them.
package notify

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Deborah-9/PaperPilot/internal/fsstore"
)

// Frequency is how often a subscription fires.
type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

// Interval returns the wait between deliveries.
func (f Frequency) Interval() time.Duration {
	if f == Weekly {
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// Subscription is one user's alert configuration.
type Subscription struct {
	UserID     int64     `json:"user_id"`
	ChatID     int64     `json:"chat_id"`
	Enabled    bool      `json:"enabled"`
	Frequency  Frequency `json:"frequency"`
	Keywords   []string  `json:"keywords,omitempty"`
	Categories []string  `json:"categories,omitempty"`
	LastSent   time.Time `json:"last_sent,omitempty"`
}

// Default returns a disabled daily subscription.
func Default(userID, chatID int64) *Subscription {
	return &Subscription{UserID: userID, ChatID: chatID, Frequency: Daily}
}

// Due reports whether a delivery should run now.
func (s *Subscription) Due(now time.Time) bool {
	if !s.Enabled || (len(s.Keywords) == 0 && len(s.Categories) == 0) {
		return false
	}
	return now.Sub(s.LastSent) >= s.Frequency.Interval()
}

// AddKeyword registers a keyword, ignoring duplicates and blanks.
func (s *Subscription) AddKeyword(kw string) {
	kw = strings.TrimSpace(kw)
	if kw == "" || slices.Contains(s.Keywords, kw) {
		return
	}
	s.Keywords = append(s.Keywords, kw)
}

// RemoveKeyword drops a keyword if present.
func (s *Subscription) RemoveKeyword(kw string) {
	if i := slices.Index(s.Keywords, kw); i >= 0 {
		s.Keywords = slices.Delete(s.Keywords, i, i+1)
	}
}

// ToggleCategory flips an alert category on or off.
func (s *Subscription) ToggleCategory(id string) {
	if i := slices.Index(s.Categories, id); i >= 0 {
		s.Categories = slices.Delete(s.Categories, i, i+1)
		return
	}
	s.Categories = append(s.Categories, id)
}

// Query compiles the subscription into an arXiv search query, or ""
// when nothing is configured.
func (s *Subscription) Query() string {
	var clauses []string
	if len(s.Keywords) > 0 {
		terms := make([]string, len(s.Keywords))
		for i, kw := range s.Keywords {
			terms[i] = fmt.Sprintf("all:%q", kw)
		}
		clauses = append(clauses, "("+strings.Join(terms, " OR ")+")")
	}
	if len(s.Categories) > 0 {
		terms := make([]string, len(s.Categories))
		for i, c := range s.Categories {
			terms[i] = "cat:" + c
		}
		clauses = append(clauses, "("+strings.Join(terms, " OR ")+")")
	}
	return strings.Join(clauses, " AND ")
}

// Store keeps one JSON file per subscribed user.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(userID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(userID, 10)+".json")
}

// Load returns the user's subscription, or a disabled default.
func (s *Store) Load(userID, chatID int64) (*Subscription, error) {
	sub := Default(userID, chatID)
	found, err := fsstore.ReadJSON(s.path(userID), sub)
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if !found {
		return Default(userID, chatID), nil
	}
	if sub.Frequency == "" {
		sub.Frequency = Daily
	}
	return sub, nil
}

// Save writes the subscription atomically.
func (s *Store) Save(sub *Subscription) error {
	if err := fsstore.WriteJSONAtomic(s.path(sub.UserID), sub, fsstore.FileOptions{}); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

// All loads every stored subscription.
func (s *Store) All() ([]*Subscription, error) {
	names, err := fsstore.ListJSONFiles(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	subs := make([]*Subscription, 0, len(names))
	for _, name := range names {
		var sub Subscription
		found, err := fsstore.ReadJSON(filepath.Join(s.dir, name), &sub)
		if err != nil || !found {
			continue
		}
		subs = append(subs, &sub)
	}
	return subs, nil
}
