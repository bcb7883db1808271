package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/compare"
	"github.com/Deborah-9/PaperPilot/internal/telegramutil"
	"github.com/Deborah-9/PaperPilot/search"
	"github.com/Deborah-9/PaperPilot/session"
)

const welcomeText = `Hi! I'm PaperPilot, your arXiv research assistant.

/search – find papers by keywords
/advanced – search with filters (dates, authors, categories, citations)
/latest – newest papers in your categories
/paper <id> – look up one paper
/compare – compare selected papers
/settings – results per search, preferred categories
/notifications – new-paper alerts
/cancel – abandon the current flow

You can also send me a PDF or TXT file to analyze.`

const aboutText = `PaperPilot searches arXiv, summarizes papers with a language model, compares up to three papers side by side and analyzes uploaded documents.`

// latestMaxPapers caps the /latest listing.
const latestMaxPapers = 5

func (b *Bot) handleUpdate(ctx context.Context, u *tgbotapi.Update) error {
	if u.CallbackQuery != nil {
		return b.handleCallback(ctx, u.CallbackQuery)
	}
	if u.Message == nil {
		return nil
	}
	msg := u.Message
	if msg.From != nil && b.guard != nil && !b.guard.Allow(msg.From.ID) {
		b.sendPlain(ctx, msg.Chat.ID, b.guard.DenialMessage())
		return nil
	}

	s := b.sessions.Get(msg.Chat.ID)
	if msg.From != nil {
		s.UserID = msg.From.ID
	}

	if msg.Document != nil {
		return b.handleDocument(ctx, s, msg)
	}
	if msg.IsCommand() {
		return b.handleCommand(ctx, s, msg)
	}
	return b.handleText(ctx, s, msg)
}

func (b *Bot) handleCommand(ctx context.Context, s *session.Session, msg *tgbotapi.Message) error {
	cmd := msg.Command()
	b.logger.Info("command", "chat_id", s.ChatID, "name", cmd)

	switch cmd {
	case "start":
		s.ResetFlow()
		b.sendPlain(ctx, s.ChatID, welcomeText)
		return nil
	case "help":
		b.sendPlain(ctx, s.ChatID, welcomeText)
		return nil
	case "about":
		b.sendPlain(ctx, s.ChatID, aboutText)
		return nil
	case "search":
		if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
			return b.runSearch(ctx, s, args, arxiv.SortRelevance)
		}
		s.Input = session.InputSearchQuery
		b.sendPlain(ctx, s.ChatID, "What should I search for?")
		return nil
	case "advanced":
		s.Machine = search.NewMachine(b.tax)
		s.Input = session.InputNone
		return b.sendMarkdown(ctx, s.ChatID, formatFilterSummary(s.Machine), ptr(filterMenuKeyboard()))
	case "latest":
		return b.runLatest(ctx, s, strings.TrimSpace(msg.CommandArguments()))
	case "paper":
		id := strings.TrimSpace(msg.CommandArguments())
		if id == "" {
			b.sendPlain(ctx, s.ChatID, "Usage: /paper <arxiv id>, e.g. /paper 2401.01234")
			return nil
		}
		return b.showPaperByID(ctx, s, id)
	case "compare":
		return b.showComparison(ctx, s)
	case "clear_comparison":
		s.Comparison.Clear()
		b.sendPlain(ctx, s.ChatID, "Comparison cleared.")
		return nil
	case "settings":
		return b.showSettings(ctx, s, 0)
	case "notifications":
		return b.showNotifications(ctx, s, 0)
	case "cancel":
		if s.Machine != nil {
			_ = s.Machine.Cancel()
		}
		s.ResetFlow()
		b.sendPlain(ctx, s.ChatID, "Cancelled.")
		return nil
	default:
		b.sendPlain(ctx, s.ChatID, "Unknown command. Try /help.")
		return nil
	}
}

func (b *Bot) handleText(ctx context.Context, s *session.Session, msg *tgbotapi.Message) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}
	switch s.Input {
	case session.InputSearchQuery:
		s.Input = session.InputNone
		return b.runSearch(ctx, s, text, arxiv.SortRelevance)
	case session.InputFilterValue:
		return b.handleFilterInput(ctx, s, text)
	case session.InputKeyword:
		s.Input = session.InputNone
		return b.addNotifyKeyword(ctx, s, text)
	case session.InputJournal:
		s.Input = session.InputNone
		return b.addJournal(ctx, s, text)
	case session.InputQuestion:
		s.Input = session.InputNone
		return b.answerDocumentQuestion(ctx, s, text)
	case session.InputPaperQuestion:
		// Stays in question mode so follow-ups keep working.
		return b.answerPaperQuestion(ctx, s, text)
	default:
		// Bare text is a simple search, the most common intent.
		return b.runSearch(ctx, s, text, arxiv.SortRelevance)
	}
}

// handleFilterInput routes free text into the advanced-search machine.
func (b *Bot) handleFilterInput(ctx context.Context, s *session.Session, text string) error {
	m := s.Machine
	if m == nil {
		s.Input = session.InputNone
		b.sendPlain(ctx, s.ChatID, "No advanced search in progress. Start one with /advanced.")
		return nil
	}
	switch m.State() {
	case search.EnteringDateFrom:
		if err := m.EnterDate(text); err != nil {
			b.sendPlain(ctx, s.ChatID, "That doesn't look like a date. Send the start date as YYYY-MM-DD.")
			return nil
		}
		b.sendPlain(ctx, s.ChatID, "Now send the end date (YYYY-MM-DD).")
		return nil
	case search.EnteringDateTo:
		if err := m.EnterDate(text); err != nil {
			if errors.Is(err, search.ErrDateOrder) {
				b.sendPlain(ctx, s.ChatID, "The end date is before the start date. Send an end date on or after the start.")
			} else {
				b.sendPlain(ctx, s.ChatID, "That doesn't look like a date. Send the end date as YYYY-MM-DD.")
			}
			return nil
		}
		s.Input = session.InputNone
		return b.sendMarkdown(ctx, s.ChatID, formatFilterSummary(m), ptr(filterMenuKeyboard()))
	case search.EnteringAuthor:
		if err := m.EnterAuthor(text); err != nil {
			b.sendPlain(ctx, s.ChatID, "Author can't be empty. Send an author name.")
			return nil
		}
		s.Input = session.InputNone
		return b.sendMarkdown(ctx, s.ChatID, formatFilterSummary(m), ptr(filterMenuKeyboard()))
	default:
		s.Input = session.InputNone
		return b.sendMarkdown(ctx, s.ChatID, formatFilterSummary(m), ptr(filterMenuKeyboard()))
	}
}

// runSearch executes a query and shows the first result.
func (b *Bot) runSearch(ctx context.Context, s *session.Session, query string, sort arxiv.SortCriterion) error {
	maxResults := b.maxResultsFor(s)
	b.logger.Info("search", "chat_id", s.ChatID, "max_results", maxResults)

	papers, err := b.search.Search(ctx, query, maxResults, sort)
	if errors.Is(err, arxiv.ErrNoResults) {
		b.sendPlain(ctx, s.ChatID, "No papers found. Try different keywords or fewer filters.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	nav, err := search.NewNavigator(papers)
	if err != nil {
		return err
	}
	s.Navigator = nav
	return b.showCurrentPaper(ctx, s)
}

func (b *Bot) runLatest(ctx context.Context, s *session.Session, categoryID string) error {
	if categoryID == "" {
		if p, err := b.loadPrefs(s); err == nil && len(p.Categories) > 0 {
			categoryID = p.Categories[0]
		}
	}
	if categoryID != "" && b.tax != nil && !b.tax.Valid(categoryID) {
		b.sendPlain(ctx, s.ChatID, fmt.Sprintf("I don't know the category %q. Browse valid ones in /settings.", categoryID))
		return nil
	}

	papers, err := b.search.Latest(ctx, categoryID, latestMaxPapers)
	if errors.Is(err, arxiv.ErrNoResults) {
		if categoryID != "" {
			b.sendPlain(ctx, s.ChatID, "Nothing recent in "+categoryID+".")
		} else {
			b.sendPlain(ctx, s.ChatID, "Nothing new this week.")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("latest: %w", err)
	}
	nav, err := search.NewNavigator(papers)
	if err != nil {
		return err
	}
	s.Navigator = nav
	return b.showCurrentPaper(ctx, s)
}

func (b *Bot) showCurrentPaper(ctx context.Context, s *session.Session) error {
	p, err := s.Navigator.Current()
	if err != nil {
		b.sendPlain(ctx, s.ChatID, "That's all the results. Start a new /search any time.")
		return nil
	}
	pos, total := s.Navigator.Position()
	return b.sendMarkdown(ctx, s.ChatID, formatPaper(p, pos, total), ptr(paperKeyboard(p, s.Navigator.HasMore())))
}

func (b *Bot) showPaperByID(ctx context.Context, s *session.Session, id string) error {
	p, err := b.search.FetchByID(ctx, id)
	if errors.Is(err, arxiv.ErrNoResults) {
		b.sendPlain(ctx, s.ChatID, "No paper with that id.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch paper: %w", err)
	}
	return b.sendMarkdown(ctx, s.ChatID, formatPaper(p, 0, 0), ptr(paperKeyboard(p, false)))
}

func (b *Bot) showComparison(ctx context.Context, s *session.Session) error {
	if s.Comparison.Len() == 0 {
		b.sendPlain(ctx, s.ChatID, "No papers selected yet. Use the Compare button under a search result.")
		return nil
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("*Comparison \\(%d of %d\\)*", s.Comparison.Len(), compare.MaxSize))
	for i, p := range s.Comparison.Papers() {
		lines = append(lines, fmt.Sprintf("%d\\. %s", i+1, telegramutil.EscapeMarkdownV2(p.Title)))
	}
	return b.sendMarkdown(ctx, s.ChatID, strings.Join(lines, "\n"), ptr(comparisonKeyboard(s.Comparison.Ready())))
}

// paperForAction resolves a paper id coming from a button. The current
// navigator and comparison set are checked before going to the
// network.
func (b *Bot) paperForAction(ctx context.Context, s *session.Session, id string) (*arxiv.Paper, error) {
	if s.Navigator != nil {
		if p, err := s.Navigator.Current(); err == nil && p.ID == id {
			return p, nil
		}
	}
	for _, p := range s.Comparison.Papers() {
		if p.ID == id {
			return &p, nil
		}
	}
	return b.search.FetchByID(ctx, id)
}

func ptr[T any](v T) *T { return &v }
