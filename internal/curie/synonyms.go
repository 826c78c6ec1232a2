package curie

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

var substitutions = [][2]string{{"_", " "}, {" ", "_"}, {" ", ""}}

// SynonymTable maps namespace spellings to canonical namespace keys. Later
// registrations overwrite earlier ones for the same spelling.
type SynonymTable struct {
	entries map[string]string
}

// Casers are stateful and must not be shared between goroutines.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// NewSynonymTable returns an empty table.
func NewSynonymTable() *SynonymTable {
	return &SynonymTable{entries: make(map[string]string)}
}

// Add registers exactly one spelling.
func (t *SynonymTable) Add(synonym, key string) {
	if synonym == "" || key == "" {
		return
	}
	t.entries[synonym] = key
}

// AddVariety registers synonym in its original, lower, upper and case-folded
// forms, each also with underscores and spaces swapped or spaces removed.
func (t *SynonymTable) AddVariety(synonym, key string) {
	synonym = strings.TrimSpace(synonym)
	if synonym == "" || key == "" {
		return
	}
	forms := []string{
		synonym,
		strings.ToLower(synonym),
		strings.ToUpper(synonym),
		foldCase(synonym),
	}
	for _, form := range forms {
		t.Add(form, key)
	}
	for _, sub := range substitutions {
		for _, form := range forms {
			t.Add(strings.ReplaceAll(form, sub[0], sub[1]), key)
		}
	}
}

// Lookup resolves a spelling. A miss on the exact spelling retries with the
// case-folded form.
func (t *SynonymTable) Lookup(synonym string) (string, bool) {
	if t == nil {
		return "", false
	}
	if key, ok := t.entries[synonym]; ok {
		return key, true
	}
	key, ok := t.entries[foldCase(synonym)]
	return key, ok
}

// Len returns the number of registered spellings.
func (t *SynonymTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Keys returns the distinct canonical keys, sorted.
func (t *SynonymTable) Keys() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, key := range t.entries {
		seen[key] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
