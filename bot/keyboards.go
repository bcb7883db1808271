package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/notify"
	"github.com/Deborah-9/PaperPilot/prefs"
	"github.com/Deborah-9/PaperPilot/search"
	"github.com/Deborah-9/PaperPilot/taxonomy"
)

func btn(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func filterMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("📅 Date", "flt_date"), btn("👤 Author", "flt_author")),
		tgbotapi.NewInlineKeyboardRow(btn("🏷 Categories", "flt_cats"), btn("📈 Citations", "flt_cit")),
		tgbotapi.NewInlineKeyboardRow(btn("🔍 Search", "flt_run"), btn("✖️ Cancel", "flt_cancel")),
	)
}

func dateMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("Last week", cbFilterDateRange("week")), btn("Last month", cbFilterDateRange("month"))),
		tgbotapi.NewInlineKeyboardRow(btn("Last year", cbFilterDateRange("year")), btn("Custom…", "flt_date_c")),
		tgbotapi.NewInlineKeyboardRow(btn("« Back", "flt_menu")),
	)
}

func authorModeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			btn("Exact match", cbAuthorMode(string(search.AuthorExact))),
			btn("Last name", cbAuthorMode(string(search.AuthorLastName))),
		),
		tgbotapi.NewInlineKeyboardRow(btn("« Back", "flt_menu")),
	)
}

func citationsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("Any", cbCitations(0)), btn("10+", cbCitations(10))),
		tgbotapi.NewInlineKeyboardRow(btn("50+", cbCitations(50)), btn("100+", cbCitations(100))),
		tgbotapi.NewInlineKeyboardRow(btn("« Back", "flt_menu")),
	)
}

// categoryToggler names the toggle namespace a category tree serves.
type categoryToggler func(id string) string

// fieldsKeyboard lists top-level fields.
func fieldsKeyboard(tax *taxonomy.Taxonomy, back string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, f := range tax.Fields {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(f.Name, cbCategoryField(f.Name))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("« Back", back)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// categoriesKeyboard lists one field's categories. Leaf categories get
// toggle buttons with a selection mark; the rest descend.
func categoriesKeyboard(field taxonomy.Field, selected func(string) bool, toggle categoryToggler, back string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range field.Categories {
		if len(c.Subcategories) == 0 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(toggleLabel(c.Name, selected(c.ID)), toggle(c.ID))))
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(c.Name+" »", cbCategoryList(c.ID))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("« Back", back)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// subcategoriesKeyboard lists the leaves under one category.
func subcategoriesKeyboard(cat taxonomy.Category, selected func(string) bool, toggle categoryToggler, back string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range cat.Subcategories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(toggleLabel(s.Name, selected(s.ID)), toggle(s.ID))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("« Back", back)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func toggleLabel(name string, on bool) string {
	if on {
		return "✅ " + name
	}
	return name
}

// paperKeyboard offers the per-result actions.
func paperKeyboard(p *arxiv.Paper, hasMore bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(btn("🤖 Summarize", cbSummarize(p.ID)), btn("⚖️ Compare", cbAddCompare(p.ID))),
		tgbotapi.NewInlineKeyboardRow(btn("📄 PDF", cbGetPDF(p.ID))),
	}
	if hasMore {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("Next ▶", "nav_next")))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func comparisonKeyboard(ready bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if ready {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("⚖️ Compare now", "cmp_run")))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("🗑 Clear", "cmp_clear")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func settingsKeyboard(p *prefs.Preferences) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range prefs.MaxResultsChoices {
		label := fmt.Sprintf("%d", n)
		if p.MaxResults == n {
			label = "• " + label + " •"
		}
		row = append(row, btn(label, cbMaxResults(n)))
	}
	rows := [][]tgbotapi.InlineKeyboardButton{
		row,
		tgbotapi.NewInlineKeyboardRow(btn("🏷 Preferred categories", "set_cats")),
		tgbotapi.NewInlineKeyboardRow(btn("➕ Add journal", "set_jrnl_add")),
	}
	for _, j := range p.Journals {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("❌ "+j, cbDelJournal(j))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("↩️ Reset to defaults", "set_reset")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func notificationsKeyboard(sub *notify.Subscription) tgbotapi.InlineKeyboardMarkup {
	toggleLabel := "🔔 Enable"
	if sub.Enabled {
		toggleLabel = "🔕 Disable"
	}
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(btn(toggleLabel, "ntf_toggle")),
		tgbotapi.NewInlineKeyboardRow(
			btn(freqLabel("Daily", sub.Frequency == notify.Daily), cbNotifyFrequency(string(notify.Daily))),
			btn(freqLabel("Weekly", sub.Frequency == notify.Weekly), cbNotifyFrequency(string(notify.Weekly))),
		),
		tgbotapi.NewInlineKeyboardRow(btn("➕ Add keyword", "ntf_kw_add"), btn("🏷 Categories", "ntf_cats")),
	}
	for _, kw := range sub.Keywords {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("❌ "+kw, cbNotifyDelKeyword(kw))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func freqLabel(name string, on bool) string {
	if on {
		return "• " + name + " •"
	}
	return name
}

func documentKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("📝 Summary", "doc_sum"), btn("📖 Detailed", "doc_detail")),
		tgbotapi.NewInlineKeyboardRow(btn("🔑 Key points", "doc_points"), btn("🔗 Related work", "doc_related")),
		tgbotapi.NewInlineKeyboardRow(btn("🕳 Research gaps", "doc_gaps"), btn("❓ Ask a question", "doc_ask")),
	)
}
