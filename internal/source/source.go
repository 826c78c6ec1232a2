// Package source defines the per-namespace extraction routines the resolver
// and collector fall back to on a cache miss, plus a directory-backed
// implementation reading pre-extracted tables.
package source

import (
	"context"
	"errors"
)

// ErrNamespaceNotFound reports a namespace the source has no data for.
var ErrNamespaceNotFound = errors.New("namespace not found in source")

// XrefRow is one asserted equivalence extracted from a namespace.
type XrefRow struct {
	SourceNS   string
	SourceID   string
	TargetNS   string
	TargetID   string
	Provenance string
}

// Source extracts raw tables for one namespace at a time. Implementations are
// expected to be deterministic for a fixed Version.
type Source interface {
	Namespaces(ctx context.Context) ([]string, error)
	Version(ctx context.Context, ns string) (string, error)
	IDAlts(ctx context.Context, ns string) (map[string][]string, error)
	Xrefs(ctx context.Context, ns string) ([]XrefRow, error)
	FilteredXrefs(ctx context.Context, ns, target string) (map[string]string, error)
	Species(ctx context.Context, ns string) (map[string]string, error)
	Names(ctx context.Context, ns string) (map[string]string, error)
	Synonyms(ctx context.Context, ns string) (map[string][]string, error)
}
