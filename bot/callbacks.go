package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/compare"
	"github.com/Deborah-9/PaperPilot/notify"
	"github.com/Deborah-9/PaperPilot/prefs"
	"github.com/Deborah-9/PaperPilot/search"
	"github.com/Deborah-9/PaperPilot/session"
)

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	// Ack first so the button stops spinning even if handling fails.
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Warn("callback_ack_failed", "error", err.Error())
	}
	if q.Message == nil {
		return nil
	}
	if q.From != nil && b.guard != nil && !b.guard.Allow(q.From.ID) {
		b.sendPlain(ctx, q.Message.Chat.ID, b.guard.DenialMessage())
		return nil
	}

	action, err := ParseAction(q.Data)
	if err != nil {
		b.logger.Warn("callback_unknown", "data", q.Data)
		return nil
	}

	s := b.sessions.Get(q.Message.Chat.ID)
	if q.From != nil {
		s.UserID = q.From.ID
	}
	msgID := q.Message.MessageID
	b.logger.Info("callback", "chat_id", s.ChatID, "kind", int(action.Kind))

	switch action.Kind {
	// Advanced-search filter flow.
	case ActionFilterMenu:
		returnToFilterMenu(s)
		return b.editFilterMenu(ctx, s, msgID)
	case ActionFilterDate:
		if s.Machine == nil {
			return b.staleFilterButton(ctx, s)
		}
		return b.editMarkdown(ctx, s.ChatID, msgID, "*Submission dates*", ptr(dateMenuKeyboard()))
	case ActionFilterDateRange:
		if s.Machine == nil {
			return b.staleFilterButton(ctx, s)
		}
		switch action.Arg {
		case "week":
			_ = s.Machine.ChoosePredefinedRange(search.LastWeek)
		case "month":
			_ = s.Machine.ChoosePredefinedRange(search.LastMonth)
		case "year":
			_ = s.Machine.ChoosePredefinedRange(search.LastYear)
		default:
			return nil
		}
		return b.editFilterMenu(ctx, s, msgID)
	case ActionFilterDateCustom:
		if s.Machine == nil {
			return b.staleFilterButton(ctx, s)
		}
		if err := s.Machine.ChooseDate(); err != nil {
			return err
		}
		s.Input = session.InputFilterValue
		b.sendPlain(ctx, s.ChatID, "Send the start date (YYYY-MM-DD).")
		return nil
	case ActionFilterAuthor:
		if s.Machine == nil {
			return b.staleFilterButton(ctx, s)
		}
		return b.editMarkdown(ctx, s.ChatID, msgID, "*Author match mode*", ptr(authorModeKeyboard()))
	case ActionFilterAuthorMode:
		if s.Machine == nil {
			return b.staleFilterButton(ctx, s)
		}
		if err := s.Machine.ChooseAuthor(); err != nil {
			return err
		}
		_ = s.Machine.SetAuthorMode(search.AuthorMode(action.Arg))
		s.Input = session.InputFilterValue
		b.sendPlain(ctx, s.ChatID, "Send the author name.")
		return nil
	case ActionFilterCitations:
		if s.Machine == nil {
			return b.staleFilterButton(ctx, s)
		}
		_ = s.Machine.ChooseCitations()
		return b.editMarkdown(ctx, s.ChatID, msgID, "*Minimum citations*", ptr(citationsKeyboard()))
	case ActionFilterCitationsSet:
		if s.Machine == nil {
			return b.staleFilterButton(ctx, s)
		}
		if err := s.Machine.SetMinCitations(action.N); err != nil {
			return err
		}
		return b.editFilterMenu(ctx, s, msgID)
	case ActionFilterCategories:
		if s.Machine == nil {
			return b.staleFilterButton(ctx, s)
		}
		s.Browser = session.CatBrowserSearch
		return b.editMarkdown(ctx, s.ChatID, msgID, "*Categories*", ptr(fieldsKeyboard(b.tax, "flt_menu")))
	case ActionFilterRun:
		if s.Machine == nil {
			return b.staleFilterButton(ctx, s)
		}
		query, err := s.Machine.Execute()
		if errors.Is(err, search.ErrNoFilters) {
			b.sendPlain(ctx, s.ChatID, "Set at least one filter first.")
			return nil
		}
		if err != nil {
			return err
		}
		s.ResetFlow()
		return b.runSearch(ctx, s, query, arxiv.SortSubmittedDesc)
	case ActionFilterCancel:
		if s.Machine != nil {
			_ = s.Machine.Cancel()
		}
		s.ResetFlow()
		return b.editMarkdown(ctx, s.ChatID, msgID, "Search cancelled\\.", nil)

	// Category navigation, shared by three flows.
	case ActionCategoryField:
		return b.showField(ctx, s, msgID, action.Arg)
	case ActionCategoryList:
		return b.showSubcategories(ctx, s, msgID, action.Arg)
	case ActionCategoryToggle:
		if s.Machine == nil {
			return b.staleFilterButton(ctx, s)
		}
		if err := s.Machine.ToggleCategory(action.Arg); err != nil {
			b.sendPlain(ctx, s.ChatID, "I don't know that category.")
			return nil
		}
		return b.rerenderCategoryLevel(ctx, s, msgID, action.Arg)
	case ActionPrefCategoryToggle:
		p, err := b.loadPrefs(s)
		if err != nil {
			return err
		}
		p.ToggleCategory(action.Arg)
		if err := b.prefs.Save(p); err != nil {
			return err
		}
		return b.rerenderCategoryLevel(ctx, s, msgID, action.Arg)
	case ActionNotifyCategoryToggle:
		sub, err := b.notify.Load(s.UserID, s.ChatID)
		if err != nil {
			return err
		}
		sub.ToggleCategory(action.Arg)
		if err := b.notify.Save(sub); err != nil {
			return err
		}
		return b.rerenderCategoryLevel(ctx, s, msgID, action.Arg)

	// Result navigation and per-paper actions.
	case ActionNextResult:
		if s.Navigator == nil {
			b.sendPlain(ctx, s.ChatID, "No search in progress. Try /search.")
			return nil
		}
		if _, err := s.Navigator.Advance(); errors.Is(err, search.ErrEndOfResults) {
			b.sendPlain(ctx, s.ChatID, "That's all the results. Start a new /search any time.")
			return nil
		}
		return b.showCurrentPaper(ctx, s)
	case ActionSummarize:
		return b.summarizePaper(ctx, s, action.Arg)
	case ActionAddCompare:
		return b.addToComparison(ctx, s, action.Arg)
	case ActionGetPDF:
		return b.sendPaperPDF(ctx, s, action.Arg)

	// Comparison.
	case ActionRunComparison:
		return b.runComparison(ctx, s)
	case ActionClearComparison:
		s.Comparison.Clear()
		return b.editMarkdown(ctx, s.ChatID, msgID, "Comparison cleared\\.", nil)

	// Settings.
	case ActionSettingsMenu:
		return b.showSettings(ctx, s, msgID)
	case ActionSettingsMaxResults:
		p, err := b.loadPrefs(s)
		if err != nil {
			return err
		}
		if err := p.SetMaxResults(action.N); err != nil {
			return nil
		}
		if err := b.prefs.Save(p); err != nil {
			return err
		}
		return b.showSettings(ctx, s, msgID)
	case ActionSettingsCategories:
		s.Browser = session.CatBrowserPrefs
		return b.editMarkdown(ctx, s.ChatID, msgID, "*Preferred categories*", ptr(fieldsKeyboard(b.tax, "set_menu")))
	case ActionSettingsAddJournal:
		s.Input = session.InputJournal
		b.sendPlain(ctx, s.ChatID, "Send a journal name to follow.")
		return nil
	case ActionSettingsDelJournal:
		p, err := b.loadPrefs(s)
		if err != nil {
			return err
		}
		p.ToggleJournal(action.Arg)
		if err := b.prefs.Save(p); err != nil {
			return err
		}
		return b.showSettings(ctx, s, msgID)
	case ActionSettingsReset:
		p, err := b.loadPrefs(s)
		if err != nil {
			return err
		}
		p.Reset()
		if err := b.prefs.Save(p); err != nil {
			return err
		}
		return b.showSettings(ctx, s, msgID)

	// Notifications.
	case ActionNotifyMenu:
		return b.showNotifications(ctx, s, msgID)
	case ActionNotifyToggle:
		sub, err := b.notify.Load(s.UserID, s.ChatID)
		if err != nil {
			return err
		}
		sub.Enabled = !sub.Enabled
		if err := b.notify.Save(sub); err != nil {
			return err
		}
		return b.showNotifications(ctx, s, msgID)
	case ActionNotifyFrequency:
		sub, err := b.notify.Load(s.UserID, s.ChatID)
		if err != nil {
			return err
		}
		sub.Frequency = notify.Frequency(action.Arg)
		if err := b.notify.Save(sub); err != nil {
			return err
		}
		return b.showNotifications(ctx, s, msgID)
	case ActionNotifyAddKeyword:
		s.Input = session.InputKeyword
		b.sendPlain(ctx, s.ChatID, "Send a keyword or phrase to watch for.")
		return nil
	case ActionNotifyDelKeyword:
		sub, err := b.notify.Load(s.UserID, s.ChatID)
		if err != nil {
			return err
		}
		sub.RemoveKeyword(action.Arg)
		if err := b.notify.Save(sub); err != nil {
			return err
		}
		return b.showNotifications(ctx, s, msgID)
	case ActionNotifyCategories:
		s.Browser = session.CatBrowserNotify
		return b.editMarkdown(ctx, s.ChatID, msgID, "*Alert categories*", ptr(fieldsKeyboard(b.tax, "ntf_menu")))

	// Document analysis.
	case ActionDocSummary, ActionDocDetailed, ActionDocKeyPoints, ActionDocRelated, ActionDocGaps:
		return b.analyzeDocument(ctx, s, action.Kind)
	case ActionDocAsk:
		if s.Document == nil {
			b.sendPlain(ctx, s.ChatID, "Send me a PDF or TXT file first.")
			return nil
		}
		s.Input = session.InputQuestion
		b.sendPlain(ctx, s.ChatID, "What would you like to know about the document?")
		return nil
	}
	return nil
}

// returnToFilterMenu backs the machine out of any value-entry state and
// releases the text-input mode, discarding partial input such as a
// pending start date.
func returnToFilterMenu(s *session.Session) {
	if s.Machine != nil {
		_ = s.Machine.Back()
	}
	s.Input = session.InputNone
}

func (b *Bot) editFilterMenu(ctx context.Context, s *session.Session, msgID int) error {
	if s.Machine == nil {
		return b.staleFilterButton(ctx, s)
	}
	return b.editMarkdown(ctx, s.ChatID, msgID, formatFilterSummary(s.Machine), ptr(filterMenuKeyboard()))
}

func (b *Bot) staleFilterButton(ctx context.Context, s *session.Session) error {
	b.sendPlain(ctx, s.ChatID, "That search has finished. Start a new one with /advanced.")
	return nil
}

// catFlow binds the shared category tree to the flow that opened it.
type catFlow struct {
	toggle   categoryToggler
	selected func(string) bool
	back     string
}

// currentCatFlow resolves the flow that opened the category browser.
func (b *Bot) currentCatFlow(s *session.Session) (catFlow, error) {
	switch s.Browser {
	case session.CatBrowserNotify:
		sub, err := b.notify.Load(s.UserID, s.ChatID)
		if err != nil {
			return catFlow{}, err
		}
		return catFlow{
			toggle: cbNotifyCategoryToggle,
			selected: func(id string) bool {
				return slices.Contains(sub.Categories, id)
			},
			back: "ntf_cats",
		}, nil
	case session.CatBrowserPrefs:
		p, err := b.loadPrefs(s)
		if err != nil {
			return catFlow{}, err
		}
		return catFlow{toggle: cbPrefCategoryToggle, selected: p.HasCategory, back: "set_cats"}, nil
	default:
		if s.Machine == nil {
			return catFlow{}, fmt.Errorf("no category flow open")
		}
		return catFlow{
			toggle:   cbCategoryToggle,
			selected: s.Machine.Filters().HasCategory,
			back:     "flt_cats",
		}, nil
	}
}

func (b *Bot) showField(ctx context.Context, s *session.Session, msgID int, fieldName string) error {
	field, ok := b.tax.Field(fieldName)
	if !ok {
		return nil
	}
	flow, err := b.currentCatFlow(s)
	if err != nil {
		return err
	}
	title := "*" + escapeMD(field.Name) + "*"
	return b.editMarkdown(ctx, s.ChatID, msgID, title, ptr(categoriesKeyboard(field, flow.selected, flow.toggle, flow.back)))
}

func (b *Bot) showSubcategories(ctx context.Context, s *session.Session, msgID int, catID string) error {
	cat, ok := b.tax.Category(catID)
	if !ok {
		return nil
	}
	flow, err := b.currentCatFlow(s)
	if err != nil {
		return err
	}
	title := "*" + escapeMD(cat.Name) + "*"
	return b.editMarkdown(ctx, s.ChatID, msgID, title, ptr(subcategoriesKeyboard(cat, flow.selected, flow.toggle, flow.back)))
}

// rerenderCategoryLevel redraws the keyboard level holding the toggled
// id so the check mark updates in place.
func (b *Bot) rerenderCategoryLevel(ctx context.Context, s *session.Session, msgID int, id string) error {
	if i := strings.IndexByte(id, '.'); i > 0 {
		return b.showSubcategories(ctx, s, msgID, id[:i])
	}
	// A top-level leaf category: redraw its field's category list.
	for _, f := range b.tax.Fields {
		for _, c := range f.Categories {
			if c.ID == id {
				return b.showField(ctx, s, msgID, f.Name)
			}
		}
	}
	return nil
}

func (b *Bot) addToComparison(ctx context.Context, s *session.Session, id string) error {
	p, err := b.paperForAction(ctx, s, id)
	if err != nil {
		return err
	}
	switch err := s.Comparison.Add(*p); {
	case errors.Is(err, compare.ErrAlreadyPresent):
		b.sendPlain(ctx, s.ChatID, "That paper is already in the comparison.")
		return nil
	case errors.Is(err, compare.ErrFull):
		b.sendPlain(ctx, s.ChatID, fmt.Sprintf("The comparison is full (%d papers). Run it or /clear_comparison.", compare.MaxSize))
		return nil
	case err != nil:
		return err
	}
	return b.showComparison(ctx, s)
}

func (b *Bot) runComparison(ctx context.Context, s *session.Session) error {
	if !s.Comparison.Ready() {
		b.sendPlain(ctx, s.ChatID, "Add at least 2 papers before comparing.")
		return nil
	}
	if err := s.RecordComparison(); errors.Is(err, session.ErrComparisonLimit) {
		b.sendPlain(ctx, s.ChatID, "You've hit today's comparison limit. Try again tomorrow.")
		return nil
	} else if err != nil {
		return err
	}

	b.sendPlain(ctx, s.ChatID, "Comparing, give me a moment…")
	rep, err := b.reporter.Compare(ctx, s.Comparison.Papers())
	if err != nil {
		return fmt.Errorf("comparison: %w", err)
	}
	s.Comparison.Clear()
	return b.sendMarkdown(ctx, s.ChatID, formatComparisonReport(rep), nil)
}

func (b *Bot) showSettings(ctx context.Context, s *session.Session, msgID int) error {
	p, err := b.loadPrefs(s)
	if err != nil {
		return err
	}
	var lines []string
	lines = append(lines, "*Settings*", "", fmt.Sprintf("Results per search: %d", p.MaxResults))
	if len(p.Categories) > 0 {
		lines = append(lines, "Preferred categories: "+escapeMD(strings.Join(p.Categories, ", ")))
	}
	if len(p.Journals) > 0 {
		lines = append(lines, "Followed journals: "+escapeMD(strings.Join(p.Journals, ", ")))
	}
	text := strings.Join(lines, "\n")
	if msgID > 0 {
		return b.editMarkdown(ctx, s.ChatID, msgID, text, ptr(settingsKeyboard(p)))
	}
	return b.sendMarkdown(ctx, s.ChatID, text, ptr(settingsKeyboard(p)))
}

func (b *Bot) showNotifications(ctx context.Context, s *session.Session, msgID int) error {
	sub, err := b.notify.Load(s.UserID, s.ChatID)
	if err != nil {
		return err
	}
	state := "off"
	if sub.Enabled {
		state = "on"
	}
	var lines []string
	lines = append(lines, "*Notifications*", "", fmt.Sprintf("Alerts: %s, %s", state, sub.Frequency))
	if len(sub.Categories) > 0 {
		lines = append(lines, "Categories: "+escapeMD(strings.Join(sub.Categories, ", ")))
	}
	text := strings.Join(lines, "\n")
	if msgID > 0 {
		return b.editMarkdown(ctx, s.ChatID, msgID, text, ptr(notificationsKeyboard(sub)))
	}
	return b.sendMarkdown(ctx, s.ChatID, text, ptr(notificationsKeyboard(sub)))
}

func (b *Bot) addJournal(ctx context.Context, s *session.Session, name string) error {
	p, err := b.loadPrefs(s)
	if err != nil {
		return err
	}
	if !slices.Contains(p.Journals, name) {
		p.ToggleJournal(name)
		if err := b.prefs.Save(p); err != nil {
			return err
		}
	}
	return b.showSettings(ctx, s, 0)
}

func (b *Bot) addNotifyKeyword(ctx context.Context, s *session.Session, kw string) error {
	sub, err := b.notify.Load(s.UserID, s.ChatID)
	if err != nil {
		return err
	}
	sub.AddKeyword(kw)
	if err := b.notify.Save(sub); err != nil {
		return err
	}
	return b.showNotifications(ctx, s, 0)
}

func (b *Bot) loadPrefs(s *session.Session) (*prefs.Preferences, error) {
	return b.prefs.Load(s.UserID)
}

func (b *Bot) maxResultsFor(s *session.Session) int {
	if p, err := b.loadPrefs(s); err == nil {
		return p.MaxResults
	}
	return prefs.DefaultMaxResults
}
