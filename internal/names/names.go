// Package names serves cached label and synonym tables and derives low-trust
// equivalence edges from labels shared across namespaces.
package names

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"xrefcanon/internal/artifact"
	"xrefcanon/internal/canon"
	"xrefcanon/internal/catalog"
	"xrefcanon/internal/curie"
	"xrefcanon/internal/logging"
)

const (
	NamesFile    = "names.tsv"
	SynonymsFile = "synonyms.tsv"
)

// SynonymProvenance tags edges derived from shared labels.
const SynonymProvenance = "synonym"

// Store answers name and synonym queries.
type Store struct {
	cat    *catalog.Catalog
	logger *slog.Logger
}

// New returns a store over cat.
func New(cat *catalog.Catalog) *Store {
	return &Store{cat: cat, logger: logging.NewComponentLogger(cat.Logger, "names")}
}

// Names returns identifier to primary label for ns. The result is a copy the
// caller may modify.
func (s *Store) Names(ctx context.Context, ns string, force bool) (map[string]string, error) {
	labels, err := s.names(ctx, ns, force)
	if err != nil {
		return nil, err
	}
	return maps.Clone(labels), nil
}

func (s *Store) names(ctx context.Context, ns string, force bool) (map[string]string, error) {
	ns, err := s.cat.Namespace(ns)
	if err != nil {
		return nil, err
	}
	return artifact.Remember(s.cat.Memo, artifact.Key("names.names", ns, force), func() (map[string]string, error) {
		path, err := s.cat.Path(ctx, ns, NamesFile)
		if err != nil {
			return nil, err
		}
		return artifact.GetOrCompute(ctx, s.cat.Artifacts, path, []string{ns + "_id", "name"}, artifact.MappingCodec{}, force,
			func(ctx context.Context) (map[string]string, error) {
				return s.cat.Source.Names(ctx, ns)
			})
	})
}

// Synonyms returns identifier to synonyms for ns as a copy.
func (s *Store) Synonyms(ctx context.Context, ns string, force bool) (map[string][]string, error) {
	synonyms, err := s.synonyms(ctx, ns, force)
	if err != nil {
		return nil, err
	}
	return artifact.CloneMultiMapping(synonyms), nil
}

func (s *Store) synonyms(ctx context.Context, ns string, force bool) (map[string][]string, error) {
	ns, err := s.cat.Namespace(ns)
	if err != nil {
		return nil, err
	}
	return artifact.Remember(s.cat.Memo, artifact.Key("names.synonyms", ns, force), func() (map[string][]string, error) {
		path, err := s.cat.Path(ctx, ns, SynonymsFile)
		if err != nil {
			return nil, err
		}
		return artifact.GetOrCompute(ctx, s.cat.Artifacts, path, []string{ns + "_id", "synonym"}, artifact.MultiMappingCodec{}, force,
			func(ctx context.Context) (map[string][]string, error) {
				return s.cat.Source.Synonyms(ctx, ns)
			})
	})
}

// Name returns the label of ns:id.
func (s *Store) Name(ctx context.Context, ns, id string) (string, bool, error) {
	names, err := s.names(ctx, ns, false)
	if err != nil {
		return "", false, err
	}
	name, ok := names[id]
	return name, ok, nil
}

func labelKey(label string) string {
	return cases.Fold().String(strings.Join(strings.Fields(label), " "))
}

// SynonymEdges links identifiers from different namespaces that share a
// case-folded label or synonym. Each member is linked to the smallest member
// of the label. A label carried by two identifiers of one namespace is
// ambiguous and yields no edges, so labels never merge identifiers within a
// namespace. Every edge carries canon.TrustSynonym, so it only merges classes
// when the caller relaxes the trust threshold.
func (s *Store) SynonymEdges(ctx context.Context, namespaces []string) ([]canon.XrefEdge, error) {
	byLabel := make(map[string][]curie.CURIE)
	add := func(label string, c curie.CURIE) {
		if key := labelKey(label); key != "" {
			byLabel[key] = append(byLabel[key], c)
		}
	}
	for _, raw := range namespaces {
		ns, err := s.cat.Namespace(raw)
		if err != nil {
			return nil, err
		}
		labels, err := s.names(ctx, ns, false)
		if err != nil {
			return nil, err
		}
		for id, label := range labels {
			add(label, curie.New(ns, id))
		}
		synonyms, err := s.synonyms(ctx, ns, false)
		if err != nil {
			return nil, err
		}
		for id, list := range synonyms {
			for _, label := range list {
				add(label, curie.New(ns, id))
			}
		}
	}

	keys := make([]string, 0, len(byLabel))
	for key := range byLabel {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var edges []canon.XrefEdge
	ambiguous := 0
	for _, key := range keys {
		members := byLabel[key]
		slices.SortFunc(members, curie.Compare)
		members = slices.Compact(members)
		if sharedWithinNamespace(members) {
			ambiguous++
			continue
		}
		anchor := members[0]
		for _, m := range members[1:] {
			edges = append(edges, canon.XrefEdge{Source: anchor, Target: m, Trust: canon.TrustSynonym, Provenance: SynonymProvenance})
		}
	}
	logging.WithContext(ctx, s.logger).Debug("derived synonym edges",
		logging.Int("labels", len(keys)),
		logging.Int("edges", len(edges)),
		logging.Int("ambiguous_labels", ambiguous),
	)
	return edges, nil
}

// sharedWithinNamespace reports whether two members of a sorted, compacted
// list belong to the same namespace.
func sharedWithinNamespace(members []curie.CURIE) bool {
	for i := 1; i < len(members); i++ {
		if members[i].Namespace == members[i-1].Namespace {
			return true
		}
	}
	return false
}
