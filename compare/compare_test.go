package compare

import (
	"context"
	"errors"
	"testing"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/llm"
)

func paper(id, title, abstract string) arxiv.Paper {
	return arxiv.Paper{ID: id, Title: title, Abstract: abstract}
}

func TestSetAddAndLimits(t *testing.T) {
	var s Set
	for i, id := range []string{"a", "b", "c"} {
		if err := s.Add(paper(id, "t", "x")); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d", s.Len())
	}
	if err := s.Add(paper("d", "t", "x")); !errors.Is(err, ErrFull) {
		t.Errorf("4th add err = %v, want ErrFull", err)
	}
	if err := s.Add(paper("b", "t", "x")); !errors.Is(err, ErrAlreadyPresent) {
		t.Errorf("duplicate add err = %v, want ErrAlreadyPresent", err)
	}
	s.Clear()
	if s.Len() != 0 || s.Ready() {
		t.Errorf("after Clear: len %d ready %v", s.Len(), s.Ready())
	}
}

func TestSetReady(t *testing.T) {
	var s Set
	s.Add(paper("a", "t", "x"))
	if s.Ready() {
		t.Error("Ready with 1 paper")
	}
	s.Add(paper("b", "t", "x"))
	if !s.Ready() {
		t.Error("not Ready with 2 papers")
	}
}

type fakeLLM struct {
	reply string
	err   error
	got   llm.Request
}

func (f *fakeLLM) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	f.got = req
	if f.err != nil {
		return llm.Result{}, f.err
	}
	return llm.Result{Text: f.reply}, nil
}

func TestCompareNeedsTwoPapers(t *testing.T) {
	r := &Reporter{}
	if _, err := r.Compare(context.Background(), []arxiv.Paper{paper("a", "t", "x")}); !errors.Is(err, ErrNotEnoughPapers) {
		t.Fatalf("err = %v, want ErrNotEnoughPapers", err)
	}
}

func TestCompareBuildsReport(t *testing.T) {
	fake := &fakeLLM{reply: "Both papers study transformers."}
	r := &Reporter{LLM: fake}
	papers := []arxiv.Paper{
		paper("a", "One", "transformer models improve translation quality"),
		paper("b", "Two", "transformer models reduce translation cost"),
		paper("c", "Three", "graph neural networks classify molecules"),
	}
	rep, err := r.Compare(context.Background(), papers)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(rep.Similarities) != 3 {
		t.Fatalf("pair count = %d, want 3", len(rep.Similarities))
	}
	// a/b share most words; both pairs with c share almost nothing.
	var ab, ac float64
	for _, p := range rep.Similarities {
		switch {
		case p.A == "a" && p.B == "b":
			ab = p.Score
		case p.A == "a" && p.B == "c":
			ac = p.Score
		}
	}
	if ab <= ac {
		t.Errorf("similarity a/b (%f) should exceed a/c (%f)", ab, ac)
	}
	if rep.Analysis != "Both papers study transformers." {
		t.Errorf("analysis = %q", rep.Analysis)
	}
	if len(fake.got.Messages) != 2 || fake.got.Messages[0].Role != llm.RoleSystem {
		t.Errorf("prompt messages = %+v", fake.got.Messages)
	}
}

func TestCompareLLMFailure(t *testing.T) {
	r := &Reporter{LLM: &fakeLLM{err: errors.New("quota")}}
	papers := []arxiv.Paper{paper("a", "t", "alpha beta"), paper("b", "t", "beta gamma")}
	if _, err := r.Compare(context.Background(), papers); err == nil {
		t.Fatal("want error when model call fails")
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity("", "anything"); s != 0 {
		t.Errorf("empty text similarity = %f", s)
	}
	if s := Similarity("deep learning models", "deep learning models"); s != 1 {
		t.Errorf("identical similarity = %f", s)
	}
	s := Similarity("deep learning for vision", "deep learning for language")
	if s <= 0 || s >= 1 {
		t.Errorf("partial similarity = %f, want in (0,1)", s)
	}
}
