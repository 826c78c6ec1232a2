// Package curie parses compact identifiers and folds namespace spellings onto
// canonical namespace keys.
package curie

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates the namespace from the local identifier.
const Delimiter = ":"

// ErrMalformedCURIE reports a reference without a namespace delimiter or with
// an empty side.
var ErrMalformedCURIE = errors.New("malformed curie")

// UnknownNamespaceError is returned in strict mode when a namespace matches no
// known synonym.
type UnknownNamespaceError struct {
	Namespace string
}

func (e *UnknownNamespaceError) Error() string {
	return fmt.Sprintf("unknown namespace %q", e.Namespace)
}

// CURIE is a (namespace, local identifier) pair. Equality is structural.
type CURIE struct {
	Namespace  string
	Identifier string
}

// New builds a CURIE without normalization.
func New(namespace, identifier string) CURIE {
	return CURIE{Namespace: namespace, Identifier: identifier}
}

func (c CURIE) String() string {
	return c.Namespace + Delimiter + c.Identifier
}

// IsZero reports whether c is the zero value.
func (c CURIE) IsZero() bool {
	return c.Namespace == "" && c.Identifier == ""
}

// Parse splits ref on the first delimiter without touching the namespace
// spelling.
func Parse(ref string) (CURIE, error) {
	ref = strings.TrimSpace(ref)
	ns, id, ok := strings.Cut(ref, Delimiter)
	ns = strings.TrimSpace(ns)
	id = strings.TrimSpace(id)
	if !ok || ns == "" || id == "" {
		return CURIE{}, fmt.Errorf("%w: %q", ErrMalformedCURIE, ref)
	}
	return CURIE{Namespace: ns, Identifier: id}, nil
}

// MustParse is Parse for literals in tests and tables.
func MustParse(ref string) CURIE {
	c, err := Parse(ref)
	if err != nil {
		panic(err)
	}
	return c
}

// Compare orders CURIEs by namespace, then identifier.
func Compare(a, b CURIE) int {
	if c := strings.Compare(a.Namespace, b.Namespace); c != 0 {
		return c
	}
	return strings.Compare(a.Identifier, b.Identifier)
}
