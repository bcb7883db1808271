package search

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoClauses means the filter set and base query together produce no
// query at all. Callers must check before compiling.
var ErrNoClauses = errors.New("search: no filters or query to compile")

const compactDate = "20060102"

// Compile turns a filter set into a single arXiv query string. Clauses
// appear in a fixed order regardless of how the filters were entered:
// base text, date range, author, categories, citations. Each clause is
// parenthesized and the clauses are joined with AND.
func Compile(f *FilterSet) (string, error) {
	if f.Query == "" && f.IsEmpty() {
		return "", ErrNoClauses
	}

	var clauses []string
	if f.Query != "" {
		clauses = append(clauses, "("+f.Query+")")
	}
	if !f.Dates.From.IsZero() && !f.Dates.To.IsZero() {
		clauses = append(clauses, fmt.Sprintf("(submittedDate:[%s TO %s])",
			f.Dates.From.Format(compactDate), f.Dates.To.Format(compactDate)))
	}
	if f.Author != "" {
		clauses = append(clauses, fmt.Sprintf("(au:%q)", f.Author))
	}
	if len(f.Categories) > 0 {
		terms := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			terms[i] = "cat:" + strings.ToLower(c)
		}
		clauses = append(clauses, "("+strings.Join(terms, " OR ")+")")
	}
	if f.MinCitations > 0 {
		clauses = append(clauses, fmt.Sprintf("(citations:>=%d)", f.MinCitations))
	}

	if len(clauses) == 0 {
		return "", ErrNoClauses
	}
	return strings.Join(clauses, " AND "), nil
}
