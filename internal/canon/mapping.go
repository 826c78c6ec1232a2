package canon

import (
	"slices"

	"xrefcanon/internal/curie"
)

// Class is one equivalence class.
type Class struct {
	Canonical curie.CURIE
	Members   []curie.CURIE
}

// Mapping is the flat identifier to canonical identifier table.
type Mapping struct {
	canonical map[curie.CURIE]curie.CURIE
	stats     Stats
}

func newMapping(canonical map[curie.CURIE]curie.CURIE, stats Stats) *Mapping {
	return &Mapping{canonical: canonical, stats: stats}
}

// NewMapping wraps a prebuilt flat table, e.g. one loaded from storage.
func NewMapping(canonical map[curie.CURIE]curie.CURIE) *Mapping {
	classes := make(map[curie.CURIE]struct{})
	for _, c := range canonical {
		classes[c] = struct{}{}
	}
	return &Mapping{canonical: canonical, stats: Stats{Identifiers: len(canonical), Classes: len(classes)}}
}

// Canonical returns the canonical identifier of c. Unobserved identifiers map
// to themselves.
func (m *Mapping) Canonical(c curie.CURIE) curie.CURIE {
	if v, ok := m.canonical[c]; ok {
		return v
	}
	return c
}

// Lookup returns the canonical identifier of c and whether c was observed.
func (m *Mapping) Lookup(c curie.CURIE) (curie.CURIE, bool) {
	v, ok := m.canonical[c]
	return v, ok
}

// Len returns the number of observed identifiers.
func (m *Mapping) Len() int {
	return len(m.canonical)
}

// Stats returns build statistics.
func (m *Mapping) Stats() Stats {
	return m.stats
}

// Sources returns every observed identifier in sorted order.
func (m *Mapping) Sources() []curie.CURIE {
	keys := make([]curie.CURIE, 0, len(m.canonical))
	for k := range m.canonical {
		keys = append(keys, k)
	}
	sortCURIEs(keys)
	return keys
}

// Iterate calls fn for every identifier in sorted order and stops on the
// first error.
func (m *Mapping) Iterate(fn func(source, canonical curie.CURIE) error) error {
	for _, k := range m.Sources() {
		if err := fn(k, m.canonical[k]); err != nil {
			return err
		}
	}
	return nil
}

// Classes groups identifiers by canonical identifier. Classes are sorted by
// canonical identifier and members are sorted within each class.
func (m *Mapping) Classes() []Class {
	grouped := make(map[curie.CURIE][]curie.CURIE)
	for k, v := range m.canonical {
		grouped[v] = append(grouped[v], k)
	}
	out := make([]Class, 0, len(grouped))
	for canonical, members := range grouped {
		sortCURIEs(members)
		out = append(out, Class{Canonical: canonical, Members: members})
	}
	slices.SortFunc(out, func(a, b Class) int { return curie.Compare(a.Canonical, b.Canonical) })
	return out
}
