// Package catalog holds the canonical checklist of closing tasks used to seed
// new close cycles. The list is ordered and grouped by category; consumers must
// treat its size as data, never as a constant.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "embed"
)

//go:embed predefined_tasks.json
var defaultCatalogJSON []byte

// Entry is one canonical closing task.
type Entry struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

// Catalog is an ordered, immutable list of canonical task titles.
type Catalog struct {
	entries []Entry
}

// Default returns the embedded catalog. The embedded file is validated at
// startup; a broken build asset is a programming error.
func Default() *Catalog {
	c, err := parse(defaultCatalogJSON)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog invalid: %v", err))
	}
	return c
}

// Load reads a catalog override from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return parse(data)
}

// Entries returns the catalog entries in canonical order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Size reports the number of catalog entries.
func (c *Catalog) Size() int {
	return len(c.entries)
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range c.entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}

func parse(data []byte) (*Catalog, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("catalog: empty")
	}
	titles := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Title == "" || e.Category == "" {
			return nil, errors.New("catalog: entry missing title or category")
		}
		if titles[e.Title] {
			return nil, fmt.Errorf("catalog: duplicate title %q", e.Title)
		}
		titles[e.Title] = true
	}
	return &Catalog{entries: entries}, nil
}
