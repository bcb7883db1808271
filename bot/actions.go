package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind enumerates every inline-button action the bot emits.
// Callback data is decoded into an Action exactly once, at dispatch;
// handlers never parse raw strings.
type ActionKind int

const (
	ActionUnknown ActionKind = iota

	// Advanced-search filter menu.
	ActionFilterMenu
	ActionFilterDate
	ActionFilterDateRange // Arg: week|month|year
	ActionFilterDateCustom
	ActionFilterAuthor
	ActionFilterAuthorMode // Arg: exact|last_name
	ActionFilterCitations
	ActionFilterCitationsSet // N: threshold
	ActionFilterCategories
	ActionFilterRun
	ActionFilterCancel

	// Category navigation. The same tree serves the advanced-search
	// and settings flows under distinct toggle kinds, so a toggle can
	// never land in the wrong store.
	ActionCategoryField // Arg: field name
	ActionCategoryList  // Arg: category id
	ActionCategoryToggle
	ActionPrefCategoryToggle
	ActionNotifyCategoryToggle

	// Result navigation and per-paper actions.
	ActionNextResult
	ActionSummarize // Arg: paper id
	ActionAddCompare
	ActionGetPDF

	// Comparison workflow.
	ActionRunComparison
	ActionClearComparison

	// Settings.
	ActionSettingsMenu
	ActionSettingsMaxResults // N: 5|10|20
	ActionSettingsCategories
	ActionSettingsAddJournal
	ActionSettingsDelJournal // Arg: journal name
	ActionSettingsReset

	// Notifications.
	ActionNotifyMenu
	ActionNotifyToggle
	ActionNotifyFrequency // Arg: daily|weekly
	ActionNotifyAddKeyword
	ActionNotifyDelKeyword // Arg: keyword
	ActionNotifyCategories

	// Document analysis.
	ActionDocSummary
	ActionDocDetailed
	ActionDocKeyPoints
	ActionDocRelated
	ActionDocGaps
	ActionDocAsk
)

// Action is one decoded button press.
type Action struct {
	Kind ActionKind
	Arg  string
	N    int
}

var exactActions = map[string]ActionKind{
	"flt_menu":     ActionFilterMenu,
	"flt_date":     ActionFilterDate,
	"flt_date_c":   ActionFilterDateCustom,
	"flt_author":   ActionFilterAuthor,
	"flt_cit":      ActionFilterCitations,
	"flt_cats":     ActionFilterCategories,
	"flt_run":      ActionFilterRun,
	"flt_cancel":   ActionFilterCancel,
	"nav_next":     ActionNextResult,
	"cmp_run":      ActionRunComparison,
	"cmp_clear":    ActionClearComparison,
	"set_menu":     ActionSettingsMenu,
	"set_cats":     ActionSettingsCategories,
	"set_jrnl_add": ActionSettingsAddJournal,
	"set_reset":    ActionSettingsReset,
	"ntf_menu":     ActionNotifyMenu,
	"ntf_toggle":   ActionNotifyToggle,
	"ntf_kw_add":   ActionNotifyAddKeyword,
	"ntf_cats":     ActionNotifyCategories,
	"doc_sum":      ActionDocSummary,
	"doc_detail":   ActionDocDetailed,
	"doc_points":   ActionDocKeyPoints,
	"doc_related":  ActionDocRelated,
	"doc_gaps":     ActionDocGaps,
	"doc_ask":      ActionDocAsk,
}

type prefixAction struct {
	prefix  string
	kind    ActionKind
	numeric bool
}

// Longer prefixes first where one is a prefix of another.
var prefixActions = []prefixAction{
	{"flt_date_r_", ActionFilterDateRange, false},
	{"flt_au_mode_", ActionFilterAuthorMode, false},
	{"flt_cit_", ActionFilterCitationsSet, true},
	{"cat_field_", ActionCategoryField, false},
	{"cat_list_", ActionCategoryList, false},
	{"cat_toggle_", ActionCategoryToggle, false},
	{"pref_cat_toggle_", ActionPrefCategoryToggle, false},
	{"ntf_cat_toggle_", ActionNotifyCategoryToggle, false},
	{"ntf_freq_", ActionNotifyFrequency, false},
	{"ntf_kw_del_", ActionNotifyDelKeyword, false},
	{"paper_sum_", ActionSummarize, false},
	{"paper_cmp_", ActionAddCompare, false},
	{"paper_pdf_", ActionGetPDF, false},
	{"set_max_", ActionSettingsMaxResults, true},
	{"set_jrnl_del_", ActionSettingsDelJournal, false},
}

// ParseAction decodes callback data.
func ParseAction(data string) (Action, error) {
	if kind, ok := exactActions[data]; ok {
		return Action{Kind: kind}, nil
	}
	for _, p := range prefixActions {
		if !strings.HasPrefix(data, p.prefix) {
			continue
		}
		arg := data[len(p.prefix):]
		if arg == "" {
			return Action{}, fmt.Errorf("callback %q: missing argument", data)
		}
		if p.numeric {
			n, err := strconv.Atoi(arg)
			if err != nil {
				return Action{}, fmt.Errorf("callback %q: bad number: %w", data, err)
			}
			return Action{Kind: p.kind, N: n}, nil
		}
		return Action{Kind: p.kind, Arg: arg}, nil
	}
	return Action{}, fmt.Errorf("unknown callback %q", data)
}

// Callback data encoders, the duals of ParseAction.

func cbFilterDateRange(name string) string  { return "flt_date_r_" + name }
func cbAuthorMode(mode string) string       { return "flt_au_mode_" + mode }
func cbCitations(n int) string              { return "flt_cit_" + strconv.Itoa(n) }
func cbCategoryField(name string) string    { return "cat_field_" + name }
func cbCategoryList(id string) string       { return "cat_list_" + id }
func cbCategoryToggle(id string) string     { return "cat_toggle_" + id }
func cbPrefCategoryToggle(id string) string { return "pref_cat_toggle_" + id }
func cbNotifyCategoryToggle(id string) string {
	return "ntf_cat_toggle_" + id
}
func cbNotifyFrequency(f string) string { return "ntf_freq_" + f }
func cbNotifyDelKeyword(kw string) string {
	return "ntf_kw_del_" + kw
}
func cbSummarize(id string) string  { return "paper_sum_" + id }
func cbAddCompare(id string) string { return "paper_cmp_" + id }
func cbGetPDF(id string) string     { return "paper_pdf_" + id }
func cbMaxResults(n int) string     { return "set_max_" + strconv.Itoa(n) }
func cbDelJournal(name string) string {
	return "set_jrnl_del_" + name
}
