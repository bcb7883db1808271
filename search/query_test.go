package search

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCompileAllFilters(t *testing.T) {
	f := &FilterSet{
		Query:        "quantum computing",
		Dates:        DateRange{From: date(2024, 1, 1), To: date(2024, 1, 31)},
		Author:       "John Smith",
		Categories:   []string{"cs.AI", "cs.LG"},
		MinCitations: 50,
	}
	got, err := Compile(f)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := `(quantum computing) AND (submittedDate:[20240101 TO 20240131]) AND (au:"John Smith") AND (cat:cs.ai OR cat:cs.lg) AND (citations:>=50)`
	if got != want {
		t.Errorf("Compile =\n  %s\nwant\n  %s", got, want)
	}
}

func TestCompileClauseOrderFixed(t *testing.T) {
	// Entry order of filters must not affect clause order. The struct
	// carries no entry-order information, so a set built "backwards"
	// compiles identically.
	a := &FilterSet{Author: "Knuth", MinCitations: 10}
	b := &FilterSet{MinCitations: 10, Author: "Knuth"}
	qa, err := Compile(a)
	if err != nil {
		t.Fatalf("Compile a: %v", err)
	}
	qb, err := Compile(b)
	if err != nil {
		t.Fatalf("Compile b: %v", err)
	}
	if qa != qb {
		t.Errorf("clause order varies: %q vs %q", qa, qb)
	}
	if qa != `(au:"Knuth") AND (citations:>=10)` {
		t.Errorf("Compile = %q", qa)
	}
}

func TestCompileSingleClause(t *testing.T) {
	cases := []struct {
		name string
		f    FilterSet
		want string
	}{
		{"base only", FilterSet{Query: "llm agents"}, "(llm agents)"},
		{"author only", FilterSet{Author: "Hinton"}, `(au:"Hinton")`},
		{"categories only", FilterSet{Categories: []string{"quant-ph"}}, "(cat:quant-ph)"},
		{"citations only", FilterSet{MinCitations: 100}, "(citations:>=100)"},
		{
			"dates only",
			FilterSet{Dates: DateRange{From: date(2023, 6, 1), To: date(2023, 6, 1)}},
			"(submittedDate:[20230601 TO 20230601])",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Compile(&c.f)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if got != c.want {
				t.Errorf("Compile = %q, want %q", got, c.want)
			}
		})
	}
}

func TestCompileEmptyRejected(t *testing.T) {
	if _, err := Compile(&FilterSet{}); !errors.Is(err, ErrNoClauses) {
		t.Fatalf("err = %v, want ErrNoClauses", err)
	}
}

func TestCompileHalfOpenDateIgnored(t *testing.T) {
	// Both bounds or no date clause at all; the state machine keeps
	// half-entered dates out of the set, the compiler double-checks.
	f := &FilterSet{Query: "x", Dates: DateRange{From: date(2024, 1, 1)}}
	got, err := Compile(f)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got != "(x)" {
		t.Errorf("Compile = %q, want date clause omitted", got)
	}
}
