// Package compare holds the comparison workflow: a small bounded set
// of selected papers and the report built over them.
package compare

import (
	"errors"

	"github.com/Deborah-9/PaperPilot/arxiv"
)

// MaxSize caps how many papers one comparison can hold.
const MaxSize = 3

var (
	ErrAlreadyPresent  = errors.New("compare: paper already in comparison")
	ErrFull            = errors.New("compare: comparison is full")
	ErrNotEnoughPapers = errors.New("compare: need at least 2 papers")
)

// Set is one session's comparison selection, deduplicated by paper id
// and ordered by insertion. Owned by a single session; no locking.
type Set struct {
	papers []arxiv.Paper
}

// Add appends a paper, rejecting duplicates and overflow.
func (s *Set) Add(p arxiv.Paper) error {
	for _, have := range s.papers {
		if have.ID == p.ID {
			return ErrAlreadyPresent
		}
	}
	if len(s.papers) >= MaxSize {
		return ErrFull
	}
	s.papers = append(s.papers, p)
	return nil
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.papers = nil
}

// Papers returns the selection in insertion order.
func (s *Set) Papers() []arxiv.Paper {
	return s.papers
}

// Len returns the current size.
func (s *Set) Len() int {
	return len(s.papers)
}

// Ready reports whether a comparison can run.
func (s *Set) Ready() bool {
	return len(s.papers) >= 2
}
