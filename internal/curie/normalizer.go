package curie

import "strings"

// Normalizer folds namespace spellings through a SynonymTable. In strict mode
// an unknown namespace is an error; otherwise it passes through unchanged.
type Normalizer struct {
	table  *SynonymTable
	strict bool
}

// NewNormalizer builds a normalizer. A nil table behaves like an empty one.
func NewNormalizer(table *SynonymTable, strict bool) *Normalizer {
	if table == nil {
		table = NewSynonymTable()
	}
	return &Normalizer{table: table, strict: strict}
}

// Strict reports whether unknown namespaces fail.
func (n *Normalizer) Strict() bool {
	return n.strict
}

// Table exposes the backing synonym table.
func (n *Normalizer) Table() *SynonymTable {
	return n.table
}

// NormalizeNamespace returns the canonical key for ns.
func (n *Normalizer) NormalizeNamespace(ns string) (string, error) {
	ns = strings.TrimSpace(ns)
	if key, ok := n.table.Lookup(ns); ok {
		return key, nil
	}
	if n.strict {
		return "", &UnknownNamespaceError{Namespace: ns}
	}
	return ns, nil
}

// Normalize parses ref and canonicalizes its namespace.
func (n *Normalizer) Normalize(ref string) (CURIE, error) {
	c, err := Parse(ref)
	if err != nil {
		return CURIE{}, err
	}
	return n.NormalizeCURIE(c)
}

// NormalizeCURIE canonicalizes the namespace of an already split reference.
func (n *Normalizer) NormalizeCURIE(c CURIE) (CURIE, error) {
	ns, err := n.NormalizeNamespace(c.Namespace)
	if err != nil {
		return CURIE{}, err
	}
	return CURIE{Namespace: ns, Identifier: c.Identifier}, nil
}
