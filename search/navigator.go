package search

import (
	"errors"

	"github.com/Deborah-9/PaperPilot/arxiv"
)

// Navigator errors.
var (
	ErrEmptyResults = errors.New("search: no results to navigate")
	ErrEndOfResults = errors.New("search: no more results")
)

// Navigator pages forward through one search's results. The result
// order is fixed at construction; there is no previous operation and
// the cursor never moves backward.
type Navigator struct {
	results []arxiv.Paper
	cursor  int
}

// NewNavigator wraps a non-empty result list with the cursor at the
// first paper.
func NewNavigator(results []arxiv.Paper) (*Navigator, error) {
	if len(results) == 0 {
		return nil, ErrEmptyResults
	}
	return &Navigator{results: results}, nil
}

// Current returns the paper at the cursor.
func (n *Navigator) Current() (*arxiv.Paper, error) {
	if n.cursor >= len(n.results) {
		return nil, ErrEndOfResults
	}
	return &n.results[n.cursor], nil
}

// Advance moves to the next paper. Past the last paper it returns
// ErrEndOfResults and clamps the cursor; it never wraps or resets.
func (n *Navigator) Advance() (*arxiv.Paper, error) {
	n.cursor++
	if n.cursor >= len(n.results) {
		n.cursor = len(n.results)
		return nil, ErrEndOfResults
	}
	return &n.results[n.cursor], nil
}

// HasMore reports whether Advance would yield another paper.
func (n *Navigator) HasMore() bool {
	return n.cursor < len(n.results)-1
}

// Position returns the 1-based cursor position and total count, for
// progress labels.
func (n *Navigator) Position() (current, total int) {
	pos := n.cursor + 1
	if pos > len(n.results) {
		pos = len(n.results)
	}
	return pos, len(n.results)
}

// Len returns the number of results.
func (n *Navigator) Len() int { return len(n.results) }
