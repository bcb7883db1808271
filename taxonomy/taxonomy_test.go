package taxonomy

import "testing"

func TestLoad(t *testing.T) {
	tax, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tax.Fields) != 8 {
		t.Fatalf("fields = %d, want 8", len(tax.Fields))
	}
	if tax.Fields[0].Name != "Physics" {
		t.Errorf("first field = %q, want Physics", tax.Fields[0].Name)
	}
}

func TestValid(t *testing.T) {
	tax, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cases := []struct {
		id   string
		want bool
	}{
		{"cs.AI", true},
		{"astro-ph.CO", true},
		{"gr-qc", true},    // no subcategories, selectable itself
		{"quant-ph", true},
		{"cs", false},      // has subcategories, not a leaf
		{"astro-ph", false},
		{"cs.XX", false},
		{"", false},
	}
	for _, c := range cases {
		if got := tax.Valid(c.id); got != c.want {
			t.Errorf("Valid(%q) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestName(t *testing.T) {
	tax, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := tax.Name("cs.LG"); got != "Machine Learning" {
		t.Errorf("Name(cs.LG) = %q", got)
	}
	if got := tax.Name("cond-mat"); got != "Condensed Matter" {
		t.Errorf("Name(cond-mat) = %q", got)
	}
	if got := tax.Name("nope.XX"); got != "nope.XX" {
		t.Errorf("Name(nope.XX) = %q, want id passthrough", got)
	}
}

func TestFieldAndCategoryLookup(t *testing.T) {
	tax, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, ok := tax.Field("Statistics")
	if !ok {
		t.Fatal("Field(Statistics) not found")
	}
	if len(f.Categories) != 1 || f.Categories[0].ID != "stat" {
		t.Errorf("Statistics categories = %+v", f.Categories)
	}
	c, ok := tax.Category("eess")
	if !ok {
		t.Fatal("Category(eess) not found")
	}
	if len(c.Subcategories) != 4 {
		t.Errorf("eess subcategories = %d, want 4", len(c.Subcategories))
	}
	if _, ok := tax.Category("bogus"); ok {
		t.Error("Category(bogus) found, want miss")
	}
}
