package canon

import "xrefcanon/internal/curie"

// Trust levels for cross-reference evidence.
const (
	TrustSynonym = 0.5
	TrustXref    = 1.0
)

// AltEdge directs an alternate identifier to its primary in one namespace.
type AltEdge struct {
	Namespace string
	Alt       string
	Primary   string
}

func (e AltEdge) AltCURIE() curie.CURIE     { return curie.New(e.Namespace, e.Alt) }
func (e AltEdge) PrimaryCURIE() curie.CURIE { return curie.New(e.Namespace, e.Primary) }

// XrefEdge asserts that two identifiers denote the same entity.
type XrefEdge struct {
	Source     curie.CURIE
	Target     curie.CURIE
	Trust      float64
	Provenance string
}

// Batch is one independently buildable group of evidence, typically all edges
// extracted from one namespace. Nodes lists identifiers observed without any
// edge so they still receive a singleton class.
type Batch struct {
	Name  string
	Alts  []AltEdge
	Xrefs []XrefEdge
	Nodes []curie.CURIE
}

// Size is the number of edges and bare nodes in the batch.
func (b Batch) Size() int {
	return len(b.Alts) + len(b.Xrefs) + len(b.Nodes)
}
