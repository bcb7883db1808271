// Package session holds per-chat conversational state. A session is
// mutated only by its chat's serialized handler; the registry map is
// the only shared structure.
package session

import (
	"errors"
	"time"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/compare"
	"github.com/Deborah-9/PaperPilot/docextract"
	"github.com/Deborah-9/PaperPilot/search"
)

// MaxComparisonsPerDay caps how many comparison reports one user can
// generate per calendar day.
const MaxComparisonsPerDay = 10

var ErrComparisonLimit = errors.New("session: daily comparison limit reached")

// InputMode says what the next free-text message means.
type InputMode int

const (
	InputNone InputMode = iota
	InputSearchQuery
	InputFilterValue // routed into the advanced-search machine
	InputKeyword
	InputJournal
	InputQuestion      // question about the analyzed document
	InputPaperQuestion // question about the last summarized paper
)

// CatBrowser says which flow opened the category browser, so toggles
// land in the right store.
type CatBrowser int

const (
	CatBrowserNone CatBrowser = iota
	CatBrowserSearch
	CatBrowserPrefs
	CatBrowserNotify
)

// Session is one chat's state between updates.
type Session struct {
	ChatID int64
	UserID int64

	Input      InputMode
	Browser    CatBrowser
	Machine    *search.Machine // nil outside advanced search
	Navigator  *search.Navigator
	Comparison compare.Set
	Document   *docextract.Document
	Paper      *arxiv.Paper // last summarized paper, the question target

	comparisonsOn  time.Time // day the counter belongs to
	comparisonsRun int

	lastActive time.Time
	now        func() time.Time
}

func newSession(chatID int64, now func() time.Time) *Session {
	s := &Session{ChatID: chatID, now: now}
	s.Touch()
	return s
}

// Touch marks the session as recently used.
func (s *Session) Touch() {
	s.lastActive = s.now()
}

// IdleSince returns the last activity time.
func (s *Session) IdleSince() time.Time {
	return s.lastActive
}

// ResetFlow clears transient flow state but keeps the comparison set
// and counters.
func (s *Session) ResetFlow() {
	s.Input = InputNone
	s.Browser = CatBrowserNone
	s.Machine = nil
	s.Paper = nil
}

// RecordComparison counts one comparison against the daily limit.
func (s *Session) RecordComparison() error {
	today := s.now().Truncate(24 * time.Hour)
	if !s.comparisonsOn.Equal(today) {
		s.comparisonsOn = today
		s.comparisonsRun = 0
	}
	if s.comparisonsRun >= MaxComparisonsPerDay {
		return ErrComparisonLimit
	}
	s.comparisonsRun++
	return nil
}

// ComparisonsLeft returns how many comparisons remain today.
func (s *Session) ComparisonsLeft() int {
	today := s.now().Truncate(24 * time.Hour)
	if !s.comparisonsOn.Equal(today) {
		return MaxComparisonsPerDay
	}
	return MaxComparisonsPerDay - s.comparisonsRun
}
