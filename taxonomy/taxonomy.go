// Package taxonomy provides the arXiv category tree used for search
// filters and preference menus. The tree is embedded at build time and
// parsed once on first use.
package taxonomy

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var rawData []byte

// Subcategory is a leaf category such as cs.AI.
type Subcategory struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Category groups subcategories under a shared prefix, e.g. cs or
// astro-ph. Categories without subcategories (gr-qc, hep-th, ...) are
// themselves selectable.
type Category struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	Subcategories []Subcategory `yaml:"subcategories"`
}

// Field is a top-level discipline such as Physics or Computer Science.
type Field struct {
	Name       string     `yaml:"name"`
	Categories []Category `yaml:"categories"`
}

// Taxonomy is the full category tree plus lookup indexes.
type Taxonomy struct {
	Fields []Field

	names  map[string]string // category or subcategory id -> display name
	leaves map[string]bool   // ids valid in a search query
}

type rawTaxonomy struct {
	Fields []Field `yaml:"fields"`
}

var (
	loadOnce sync.Once
	loaded   *Taxonomy
	loadErr  error
)

// Load returns the embedded taxonomy. The parse happens once; later
// calls return the cached tree.
func Load() (*Taxonomy, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parse(rawData)
	})
	return loaded, loadErr
}

func parse(data []byte) (*Taxonomy, error) {
	var raw rawTaxonomy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if len(raw.Fields) == 0 {
		return nil, fmt.Errorf("parse taxonomy: no fields")
	}

	t := &Taxonomy{
		Fields: raw.Fields,
		names:  make(map[string]string),
		leaves: make(map[string]bool),
	}
	for _, f := range raw.Fields {
		for _, c := range f.Categories {
			if c.ID == "" || c.Name == "" {
				return nil, fmt.Errorf("parse taxonomy: incomplete category in field %q", f.Name)
			}
			if _, dup := t.names[c.ID]; dup {
				return nil, fmt.Errorf("parse taxonomy: duplicate id %q", c.ID)
			}
			t.names[c.ID] = c.Name
			if len(c.Subcategories) == 0 {
				t.leaves[c.ID] = true
			}
			for _, s := range c.Subcategories {
				if s.ID == "" || s.Name == "" {
					return nil, fmt.Errorf("parse taxonomy: incomplete subcategory under %q", c.ID)
				}
				if _, dup := t.names[s.ID]; dup {
					return nil, fmt.Errorf("parse taxonomy: duplicate id %q", s.ID)
				}
				t.names[s.ID] = s.Name
				t.leaves[s.ID] = true
			}
		}
	}
	return t, nil
}

// Valid reports whether id names a selectable category, usable as a
// cat: clause in a search query.
func (t *Taxonomy) Valid(id string) bool {
	return t.leaves[id]
}

// Name returns the display name for a category or subcategory id,
// or the id itself when unknown.
func (t *Taxonomy) Name(id string) string {
	if n, ok := t.names[id]; ok {
		return n
	}
	return id
}

// Field returns the named top-level field.
func (t *Taxonomy) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Category returns the category with the given id, searching all fields.
func (t *Taxonomy) Category(id string) (Category, bool) {
	for _, f := range t.Fields {
		for _, c := range f.Categories {
			if c.ID == id {
				return c, true
			}
		}
	}
	return Category{}, false
}
