package bot

import "testing"

func TestParseActionExact(t *testing.T) {
	cases := []struct {
		data string
		kind ActionKind
	}{
		{"flt_menu", ActionFilterMenu},
		{"flt_run", ActionFilterRun},
		{"flt_cancel", ActionFilterCancel},
		{"nav_next", ActionNextResult},
		{"cmp_run", ActionRunComparison},
		{"cmp_clear", ActionClearComparison},
		{"set_menu", ActionSettingsMenu},
		{"ntf_toggle", ActionNotifyToggle},
		{"doc_points", ActionDocKeyPoints},
	}
	for _, c := range cases {
		a, err := ParseAction(c.data)
		if err != nil {
			t.Errorf("ParseAction(%q): %v", c.data, err)
			continue
		}
		if a.Kind != c.kind {
			t.Errorf("ParseAction(%q).Kind = %v, want %v", c.data, a.Kind, c.kind)
		}
	}
}

func TestParseActionWithArgs(t *testing.T) {
	a, err := ParseAction(cbSummarize("2401.01234"))
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if a.Kind != ActionSummarize || a.Arg != "2401.01234" {
		t.Errorf("action = %+v", a)
	}

	a, err = ParseAction(cbCitations(50))
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if a.Kind != ActionFilterCitationsSet || a.N != 50 {
		t.Errorf("action = %+v", a)
	}

	a, err = ParseAction(cbMaxResults(20))
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if a.Kind != ActionSettingsMaxResults || a.N != 20 {
		t.Errorf("action = %+v", a)
	}
}

func TestParseActionJournalAndReset(t *testing.T) {
	a, err := ParseAction("set_jrnl_add")
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if a.Kind != ActionSettingsAddJournal {
		t.Errorf("action = %+v", a)
	}

	a, err = ParseAction(cbDelJournal("Nature Physics"))
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if a.Kind != ActionSettingsDelJournal || a.Arg != "Nature Physics" {
		t.Errorf("action = %+v", a)
	}

	a, err = ParseAction("set_reset")
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if a.Kind != ActionSettingsReset {
		t.Errorf("action = %+v", a)
	}
}

func TestParseActionToggleNamespacesAreDistinct(t *testing.T) {
	// The same category id toggled from advanced search, settings and
	// notifications must decode to three different kinds.
	search, err := ParseAction(cbCategoryToggle("cs.AI"))
	if err != nil {
		t.Fatal(err)
	}
	pref, err := ParseAction(cbPrefCategoryToggle("cs.AI"))
	if err != nil {
		t.Fatal(err)
	}
	ntf, err := ParseAction(cbNotifyCategoryToggle("cs.AI"))
	if err != nil {
		t.Fatal(err)
	}
	if search.Kind != ActionCategoryToggle || pref.Kind != ActionPrefCategoryToggle || ntf.Kind != ActionNotifyCategoryToggle {
		t.Errorf("kinds = %v, %v, %v", search.Kind, pref.Kind, ntf.Kind)
	}
	if search.Arg != "cs.AI" || pref.Arg != "cs.AI" || ntf.Arg != "cs.AI" {
		t.Errorf("args = %q, %q, %q", search.Arg, pref.Arg, ntf.Arg)
	}
}

func TestParseActionRejectsBadData(t *testing.T) {
	for _, data := range []string{"", "bogus", "flt_cit_abc", "paper_sum_", "set_max_lots"} {
		if _, err := ParseAction(data); err == nil {
			t.Errorf("ParseAction(%q) accepted", data)
		}
	}
}
