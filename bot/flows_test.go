package bot

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/search"
	"github.com/Deborah-9/PaperPilot/session"
	"github.com/Deborah-9/PaperPilot/taxonomy"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return session.NewRegistry(logger).Get(1)
}

func TestReturnToFilterMenuDiscardsPartialInput(t *testing.T) {
	tax, err := taxonomy.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := testSession(t)
	s.Machine = search.NewMachine(tax)

	if err := s.Machine.ChooseDate(); err != nil {
		t.Fatalf("ChooseDate: %v", err)
	}
	s.Input = session.InputFilterValue
	if err := s.Machine.EnterDate("2024-01-01"); err != nil {
		t.Fatalf("EnterDate: %v", err)
	}

	returnToFilterMenu(s)

	if got := s.Machine.State(); got != search.ChoosingFilter {
		t.Errorf("state = %v, want ChoosingFilter", got)
	}
	if s.Input != session.InputNone {
		t.Errorf("input mode not released: %v", s.Input)
	}
	if !s.Machine.Filters().Dates.IsZero() {
		t.Error("partial date range was committed")
	}
}

func TestReturnToFilterMenuWithoutMachine(t *testing.T) {
	s := testSession(t)
	s.Input = session.InputFilterValue

	returnToFilterMenu(s)

	if s.Input != session.InputNone {
		t.Errorf("input mode not released: %v", s.Input)
	}
}

func TestPaperQuestionMessages(t *testing.T) {
	p := &arxiv.Paper{
		ID:       "2401.01234",
		Title:    "Attention Is All You Need",
		Authors:  []string{"A. Vaswani", "N. Shazeer"},
		Abstract: "We propose the Transformer.",
	}

	msgs := paperQuestionMessages(p, "What architecture do they propose?")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	sys := msgs[0].Content
	for _, want := range []string{p.Title, "A. Vaswani", p.Abstract} {
		if !strings.Contains(sys, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if msgs[1].Content != "What architecture do they propose?" {
		t.Errorf("user message = %q", msgs[1].Content)
	}
}
