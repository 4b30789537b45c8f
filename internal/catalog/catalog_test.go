package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.NotZero(t, c.Size())
	assert.Len(t, c.Entries(), c.Size())
	assert.NotEmpty(t, c.Categories())

	seen := make(map[string]bool)
	for _, e := range c.Entries() {
		assert.NotEmpty(t, e.Title)
		assert.NotEmpty(t, e.Category)
		assert.False(t, seen[e.Title], "duplicate title %q", e.Title)
		seen[e.Title] = true
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	c := Default()
	entries := c.Entries()
	entries[0].Title = "mutated"
	assert.NotEqual(t, "mutated", c.Entries()[0].Title)
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	payload := `[
		{"title": "Count petty cash", "category": "Cash"},
		{"title": "Post final journal", "category": "Ledger"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Size())
	assert.Equal(t, []string{"Cash", "Ledger"}, c.Categories())
}

func TestLoadRejectsBadCatalogs(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		payload string
	}{
		{"empty list", `[]`},
		{"missing category", `[{"title": "Count petty cash"}]`},
		{"duplicate title", `[
			{"title": "Count petty cash", "category": "Cash"},
			{"title": "Count petty cash", "category": "Cash"}
		]`},
		{"not json", `nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tc.payload), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
