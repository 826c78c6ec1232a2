package canon

import (
	"slices"
	"sort"

	"xrefcanon/internal/curie"
)

// Forest is a disjoint-set forest over CURIEs stored as parallel arrays.
type Forest struct {
	prio   *Priority
	ids    map[curie.CURIE]int32
	nodes  []curie.CURIE
	parent []int32
	size   []int32
	best   []int32
}

// NewForest returns an empty forest electing with prio.
func NewForest(prio *Priority) *Forest {
	return &Forest{prio: prio, ids: make(map[curie.CURIE]int32)}
}

// Len returns the number of identifiers in the forest.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Add registers c as a singleton if unseen and returns its node id.
func (f *Forest) Add(c curie.CURIE) int32 {
	if id, ok := f.ids[c]; ok {
		return id
	}
	id := int32(len(f.nodes))
	f.ids[c] = id
	f.nodes = append(f.nodes, c)
	f.parent = append(f.parent, id)
	f.size = append(f.size, 1)
	f.best = append(f.best, id)
	return id
}

// root finds the root of i with path halving.
func (f *Forest) root(i int32) int32 {
	for f.parent[i] != i {
		f.parent[i] = f.parent[f.parent[i]]
		i = f.parent[i]
	}
	return i
}

// Union merges the components of a and b, adding either if unseen. It reports
// whether two distinct components were merged.
func (f *Forest) Union(a, b curie.CURIE) bool {
	return f.unionIDs(f.Add(a), f.Add(b))
}

func (f *Forest) unionIDs(a, b int32) bool {
	ra, rb := f.root(a), f.root(b)
	if ra == rb {
		return false
	}
	if f.size[ra] < f.size[rb] {
		ra, rb = rb, ra
	}
	f.parent[rb] = ra
	f.size[ra] += f.size[rb]
	if f.prio.Less(f.nodes[f.best[rb]], f.nodes[f.best[ra]]) {
		f.best[ra] = f.best[rb]
	}
	return true
}

// Find returns the canonical member of c's component.
func (f *Forest) Find(c curie.CURIE) (curie.CURIE, bool) {
	id, ok := f.ids[c]
	if !ok {
		return curie.CURIE{}, false
	}
	return f.nodes[f.best[f.root(id)]], true
}

// Connected reports whether a and b share a component.
func (f *Forest) Connected(a, b curie.CURIE) bool {
	ia, ok := f.ids[a]
	if !ok {
		return false
	}
	ib, ok := f.ids[b]
	if !ok {
		return false
	}
	return f.root(ia) == f.root(ib)
}

// Components returns the number of disjoint components.
func (f *Forest) Components() int {
	n := 0
	for i := range f.parent {
		if f.parent[i] == int32(i) {
			n++
		}
	}
	return n
}

// Merge unions every member of other into f with its partial canonical
// member. The result is independent of merge order.
func (f *Forest) Merge(other *Forest) {
	for i, c := range other.nodes {
		rep := other.nodes[other.best[other.root(int32(i))]]
		f.Union(c, rep)
	}
}

// Flatten returns every identifier mapped to its canonical member.
func (f *Forest) Flatten() map[curie.CURIE]curie.CURIE {
	out := make(map[curie.CURIE]curie.CURIE, len(f.nodes))
	for i, c := range f.nodes {
		out[c] = f.nodes[f.best[f.root(int32(i))]]
	}
	return out
}

func sortCURIEs(list []curie.CURIE) {
	slices.SortFunc(list, curie.Compare)
}

func sortStrings(list []string) {
	sort.Strings(list)
}
