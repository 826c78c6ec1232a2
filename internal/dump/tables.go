package dump

import (
	"context"
	"sort"

	"xrefcanon/internal/alts"
	"xrefcanon/internal/canon"
	"xrefcanon/internal/curie"
	"xrefcanon/internal/names"
	"xrefcanon/internal/xrefs"
)

// Dump names.
const (
	NamesDump     = "names"
	AltsDump      = "alts"
	SynonymsDump  = "synonyms"
	XrefsDump     = "xrefs"
	RemappingDump = "remapping"
)

// NamesTable collects identifier labels of every namespace.
func NamesTable(ctx context.Context, store *names.Store, namespaces []string) (Table, error) {
	table := Table{Name: NamesDump, Header: []string{"prefix", "identifier", "name"}}
	for _, ns := range namespaces {
		labels, err := store.Names(ctx, ns, false)
		if err != nil {
			return Table{}, err
		}
		for _, id := range sortedKeys(labels) {
			table.Rows = append(table.Rows, []string{ns, id, labels[id]})
		}
	}
	return table, nil
}

// SynonymsTable collects identifier synonyms of every namespace.
func SynonymsTable(ctx context.Context, store *names.Store, namespaces []string) (Table, error) {
	table := Table{Name: SynonymsDump, Header: []string{"prefix", "identifier", "synonym"}}
	for _, ns := range namespaces {
		synonyms, err := store.Synonyms(ctx, ns, false)
		if err != nil {
			return Table{}, err
		}
		for _, id := range sortedKeys(synonyms) {
			for _, s := range synonyms[id] {
				table.Rows = append(table.Rows, []string{ns, id, s})
			}
		}
	}
	return table, nil
}

// AltsTable collects alternate to primary identifier pairs.
func AltsTable(ctx context.Context, resolver *alts.Resolver, namespaces []string) (Table, error) {
	table := Table{Name: AltsDump, Header: []string{"prefix", "alt", "identifier"}}
	for _, ns := range namespaces {
		edges, err := resolver.Edges(ctx, ns)
		if err != nil {
			return Table{}, err
		}
		for _, e := range edges {
			table.Rows = append(table.Rows, []string{e.Namespace, e.Alt, e.Primary})
		}
	}
	return table, nil
}

// XrefsTable collects every cross-reference. The summary groups by source and
// target namespace pair and a sample is written alongside.
func XrefsTable(ctx context.Context, collector *xrefs.Collector, namespaces []string) (Table, error) {
	table := Table{
		Name:   XrefsDump,
		Header: []string{"source_prefix", "source_identifier", "target_prefix", "target_identifier", "provenance"},
		Group:  func(row []string) string { return row[0] + "\t" + row[2] },
		Sample: true,
	}
	for _, ns := range namespaces {
		rows, err := collector.All(ctx, ns, false)
		if err != nil {
			return Table{}, err
		}
		for _, r := range rows {
			table.Rows = append(table.Rows, []string{r.SourceNS, r.SourceID, r.TargetNS, r.TargetID, r.Provenance})
		}
	}
	return table, nil
}

// RemappingTable lists every identifier with its canonical identifier,
// grouped by the canonical namespace.
func RemappingTable(mapping *canon.Mapping) (Table, error) {
	table := Table{
		Name:   RemappingDump,
		Header: []string{"identifier", "canonical"},
		Group: func(row []string) string {
			c, err := curie.Parse(row[1])
			if err != nil {
				return ""
			}
			return c.Namespace
		},
	}
	err := mapping.Iterate(func(src, dst curie.CURIE) error {
		table.Rows = append(table.Rows, []string{src.String(), dst.String()})
		return nil
	})
	return table, err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
