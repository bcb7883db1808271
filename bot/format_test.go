package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/compare"
	"github.com/Deborah-9/PaperPilot/search"
	"github.com/Deborah-9/PaperPilot/taxonomy"
)

func samplePaper() *arxiv.Paper {
	return &arxiv.Paper{
		ID:              "2401.01234",
		Title:           "Attention Is All You Need (Again)",
		Authors:         []string{"Ada Lovelace", "Alan Turing"},
		Abstract:        "We revisit attention mechanisms.",
		Published:       time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		PrimaryCategory: "cs.LG",
		AbsURL:          "http://arxiv.org/abs/2401.01234v1",
	}
}

func TestFormatPaper(t *testing.T) {
	got := formatPaper(samplePaper(), 2, 10)
	if !strings.Contains(got, `Attention Is All You Need \(Again\)`) {
		t.Errorf("title not escaped: %q", got)
	}
	if !strings.Contains(got, "Ada Lovelace, Alan Turing") {
		t.Errorf("authors missing: %q", got)
	}
	if !strings.Contains(got, `_2 of 10_`) {
		t.Errorf("position missing: %q", got)
	}
	if !strings.Contains(got, "(http://arxiv.org/abs/2401.01234v1)") {
		t.Errorf("abs link missing: %q", got)
	}
}

func TestFormatPaperManyAuthors(t *testing.T) {
	p := samplePaper()
	p.Authors = []string{"A", "B", "C", "D", "E", "F", "G"}
	got := formatPaper(p, 1, 1)
	if !strings.Contains(got, "et al") {
		t.Errorf("long author list not shortened: %q", got)
	}
}

func TestFormatFilterSummary(t *testing.T) {
	tax, err := taxonomy.Load()
	if err != nil {
		t.Fatalf("taxonomy.Load: %v", err)
	}
	m := search.NewMachine(tax)
	got := formatFilterSummary(m)
	if !strings.Contains(got, "No filters set yet") {
		t.Errorf("empty summary = %q", got)
	}

	m.ChooseAuthor()
	m.EnterAuthor("Hinton")
	m.ToggleCategory("cs.LG")
	got = formatFilterSummary(m)
	if !strings.Contains(got, "Hinton") || !strings.Contains(got, `cs\.LG`) {
		t.Errorf("summary = %q", got)
	}
}

func TestFormatComparisonReport(t *testing.T) {
	rep := &compare.Report{
		Papers: []arxiv.Paper{
			{ID: "a", Title: "First"},
			{ID: "b", Title: "Second"},
		},
		Similarities: []compare.PairSimilarity{{A: "a", B: "b", Score: 0.42}},
		CommonTerms:  []string{"attention", "transformer"},
		Analysis:     "Both use transformers.",
	}
	got := formatComparisonReport(rep)
	for _, want := range []string{"First", "Second", "42%", "attention, transformer", "Both use transformers"} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestFormatDigest(t *testing.T) {
	got := formatDigest([]arxiv.Paper{*samplePaper()})
	if !strings.Contains(got, "New papers") || !strings.Contains(got, "2401.01234") {
		t.Errorf("digest = %q", got)
	}
}
