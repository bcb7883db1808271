package compare

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/llm"
)

// PairSimilarity is the lexical overlap of two papers' abstracts.
type PairSimilarity struct {
	A, B  string // paper ids
	Score float64
}

// Report is the outcome of comparing a set of papers.
type Report struct {
	Papers       []arxiv.Paper
	Similarities []PairSimilarity
	CommonTerms  []string
	Analysis     string // model-written methodology comparison
}

// Reporter builds comparison reports, delegating the narrative part to
// a chat model.
type Reporter struct {
	LLM   llm.Client
	Model string
}

// Compare computes pairwise abstract similarity and common terms, then
// asks the model for a methodology comparison. Requires at least two
// papers.
func (r *Reporter) Compare(ctx context.Context, papers []arxiv.Paper) (*Report, error) {
	if len(papers) < 2 {
		return nil, ErrNotEnoughPapers
	}

	rep := &Report{Papers: papers}
	for i := 0; i < len(papers); i++ {
		for j := i + 1; j < len(papers); j++ {
			rep.Similarities = append(rep.Similarities, PairSimilarity{
				A:     papers[i].ID,
				B:     papers[j].ID,
				Score: Similarity(papers[i].Abstract, papers[j].Abstract),
			})
		}
	}
	rep.CommonTerms = commonTerms(papers, 8)

	if r.LLM != nil {
		res, err := r.LLM.Chat(ctx, llm.Request{
			Model: r.Model,
			Messages: []llm.Message{
				llm.System("You are a research assistant. Compare the papers' methodologies, strengths and weaknesses. Be concise and structured."),
				llm.User(comparisonPrompt(papers)),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("comparison analysis: %w", err)
		}
		rep.Analysis = res.Text
	}
	return rep, nil
}

func comparisonPrompt(papers []arxiv.Paper) string {
	var b strings.Builder
	b.WriteString("Compare the following papers:\n")
	for i, p := range papers {
		fmt.Fprintf(&b, "\nPaper %d: %s\nAuthors: %s\nAbstract: %s\n",
			i+1, p.Title, strings.Join(p.Authors, ", "), p.Abstract)
	}
	return b.String()
}

// Similarity is the Jaccard overlap of the significant words of two
// texts, in [0, 1].
func Similarity(a, b string) float64 {
	wa := significantWords(a)
	wb := significantWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

// commonTerms returns up to limit words appearing in every paper's
// abstract, most frequent first.
func commonTerms(papers []arxiv.Paper, limit int) []string {
	counts := map[string]int{}
	seen := map[string]int{}
	for _, p := range papers {
		words := significantWords(p.Abstract)
		for w := range words {
			seen[w]++
		}
		for _, w := range strings.Fields(strings.ToLower(p.Abstract)) {
			if words[normalizeWord(w)] {
				counts[normalizeWord(w)]++
			}
		}
	}

	var shared []string
	for w, n := range seen {
		if n == len(papers) {
			shared = append(shared, w)
		}
	}
	sort.Slice(shared, func(i, j int) bool {
		if counts[shared[i]] != counts[shared[j]] {
			return counts[shared[i]] > counts[shared[j]]
		}
		return shared[i] < shared[j]
	})
	if len(shared) > limit {
		shared = shared[:limit]
	}
	return shared
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "our": true, "that": true, "the": true, "these": true,
	"this": true, "to": true, "we": true, "which": true, "with": true,
}

func significantWords(text string) map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = normalizeWord(w)
		if len(w) < 3 || stopwords[w] {
			continue
		}
		words[w] = true
	}
	return words
}

func normalizeWord(w string) string {
	return strings.Trim(w, ".,;:()[]{}\"'!?")
}
