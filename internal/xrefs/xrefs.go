// Package xrefs collects cross-references between namespaces.
//
// A filtered mapping for (source, target) comes from the namespace's full
// cross-reference table when one is cached, and from the source's extraction
// routine otherwise. Filtered mappings are cached per target namespace; the
// flipped form is computed after the cache read and never persisted.
package xrefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"

	"xrefcanon/internal/artifact"
	"xrefcanon/internal/canon"
	"xrefcanon/internal/catalog"
	"xrefcanon/internal/curie"
	"xrefcanon/internal/logging"
	"xrefcanon/internal/source"
	"xrefcanon/internal/tabular"
)

// File layout inside a namespace version directory.
const (
	FullFileName = "xrefs.tsv"
	FilteredDir  = "xrefs"
)

// FullHeader is the header of the full cross-reference table.
var FullHeader = []string{"source_ns", "source_id", "target_ns", "target_id", "provenance"}

// FilteredHeader returns the header of a filtered mapping artifact.
func FilteredHeader(src, tgt string) []string {
	return []string{src + "_id", tgt + "_id"}
}

// Options modify a filtered lookup.
type Options struct {
	// Flip inverts the mapping. When several sources share a target, the
	// lexicographically greatest source identifier wins.
	Flip  bool
	Force bool
}

// Collector answers cross-reference queries.
type Collector struct {
	cat    *catalog.Catalog
	logger *slog.Logger
}

// New returns a collector over cat.
func New(cat *catalog.Catalog) *Collector {
	return &Collector{cat: cat, logger: logging.NewComponentLogger(cat.Logger, "xrefs")}
}

// Filtered returns source identifier to target identifier for one namespace
// pair, or the inverse when opts.Flip is set. The result is a copy the caller
// may modify.
func (c *Collector) Filtered(ctx context.Context, src, tgt string, opts Options) (map[string]string, error) {
	mapping, err := c.filtered(ctx, src, tgt, opts.Force)
	if err != nil {
		return nil, err
	}
	if opts.Flip {
		return Flip(mapping), nil
	}
	return maps.Clone(mapping), nil
}

// filtered returns the remembered, unflipped mapping. Callers must not modify it.
func (c *Collector) filtered(ctx context.Context, src, tgt string, force bool) (map[string]string, error) {
	src, err := c.cat.Namespace(src)
	if err != nil {
		return nil, err
	}
	tgt, err = c.cat.Namespace(tgt)
	if err != nil {
		return nil, err
	}
	return artifact.Remember(c.cat.Memo, artifact.Key("xrefs.filtered", src, tgt, force), func() (map[string]string, error) {
		path, err := c.cat.Path(ctx, src, FilteredDir, tgt+".tsv")
		if err != nil {
			return nil, err
		}
		return artifact.GetOrCompute(ctx, c.cat.Artifacts, path, FilteredHeader(src, tgt), artifact.MappingCodec{}, force,
			func(ctx context.Context) (map[string]string, error) {
				return c.produceFiltered(ctx, src, tgt)
			})
	})
}

func (c *Collector) produceFiltered(ctx context.Context, src, tgt string) (map[string]string, error) {
	logger := logging.WithContext(ctx, c.logger).With(logging.Namespace(src), logging.String("target", tgt))
	fullPath, ok, err := c.fullTable(ctx, src)
	if err != nil {
		return nil, err
	}
	if ok {
		mapping, err := c.filterFullTable(fullPath, src, tgt)
		if err == nil {
			logger.Debug("filtered full cross-reference table", logging.String(logging.FieldArtifact, fullPath), logging.Int("rows", len(mapping)))
			return mapping, nil
		}
		logger.Debug("full cross-reference table unusable; extracting", logging.Error(err))
	}
	logger.Info("extracting cross-references")
	return c.cat.Source.FilteredXrefs(ctx, src, tgt)
}

// fullTable locates a cached full table for src, plain or gzip.
func (c *Collector) fullTable(ctx context.Context, src string) (string, bool, error) {
	base, err := c.cat.Path(ctx, src, FullFileName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{base, base + ".gz"} {
		if c.cat.Artifacts.Exists(candidate) {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

func (c *Collector) filterFullTable(path, src, tgt string) (map[string]string, error) {
	r, err := tabular.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cols, err := columnIndexes(r.Header(), FullHeader[:4])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make(map[string]string)
	err = r.Each(func(row []string) error {
		if len(row) <= slices.Max(cols) {
			return fmt.Errorf("%s: short row %v", path, row)
		}
		rowSrc, err := c.cat.Namespace(row[cols[0]])
		if err != nil || rowSrc != src {
			return nil
		}
		rowTgt, err := c.cat.Namespace(row[cols[2]])
		if err != nil || rowTgt != tgt {
			return nil
		}
		out[row[cols[1]]] = row[cols[3]]
		return nil
	})
	return out, err
}

func columnIndexes(header, names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		idx := slices.Index(header, name)
		if idx < 0 {
			return nil, fmt.Errorf("missing column %q", name)
		}
		out[i] = idx
	}
	return out, nil
}

// Flip inverts mapping. Pairs are visited in key order so the greatest key
// sharing a value is the one kept.
func Flip(mapping map[string]string) map[string]string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(mapping))
	for _, k := range keys {
		out[mapping[k]] = k
	}
	return out
}

// Xref returns the identifier of ns:id in tgt. With flip, id is read as a
// target identifier and the matching source identifier is returned.
func (c *Collector) Xref(ctx context.Context, ns, id, tgt string, flip bool) (string, bool, error) {
	mapping, err := c.filtered(ctx, ns, tgt, false)
	if err != nil {
		return "", false, err
	}
	if flip {
		mapping = Flip(mapping)
	}
	v, ok := mapping[id]
	return v, ok, nil
}

// All returns the full cross-reference table of ns, caching it as the table
// Filtered prefers.
func (c *Collector) All(ctx context.Context, ns string, force bool) ([]source.XrefRow, error) {
	ns, err := c.cat.Namespace(ns)
	if err != nil {
		return nil, err
	}
	rows, err := artifact.Remember(c.cat.Memo, artifact.Key("xrefs.all", ns, force), func() ([][]string, error) {
		path, err := c.cat.Path(ctx, ns, FullFileName)
		if err != nil {
			return nil, err
		}
		return artifact.GetOrCompute(ctx, c.cat.Artifacts, path, FullHeader, artifact.RowsCodec{}, force,
			func(ctx context.Context) ([][]string, error) {
				return c.produceAll(ctx, ns)
			})
	})
	if err != nil {
		return nil, err
	}
	out := make([]source.XrefRow, len(rows))
	for i, row := range rows {
		out[i] = source.XrefRow{SourceNS: row[0], SourceID: row[1], TargetNS: row[2], TargetID: row[3], Provenance: row[4]}
	}
	return out, nil
}

func (c *Collector) produceAll(ctx context.Context, ns string) ([][]string, error) {
	logger := logging.WithContext(ctx, c.logger).With(logging.Namespace(ns))
	logger.Info("extracting full cross-reference table")
	extracted, err := c.cat.Source.Xrefs(ctx, ns)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(extracted))
	dropped := 0
	for _, xr := range extracted {
		target, err := c.cat.Namespace(xr.TargetNS)
		if err != nil {
			var unknown *curie.UnknownNamespaceError
			if errors.As(err, &unknown) {
				dropped++
				continue
			}
			return nil, err
		}
		rows = append(rows, []string{ns, xr.SourceID, target, xr.TargetID, xr.Provenance})
	}
	if dropped > 0 {
		logging.WarnWithContext(logger, "dropped cross-references to unknown namespaces", "xrefs_unknown_target",
			logging.Int("dropped", dropped),
			logging.String(logging.FieldErrorHint, "register the target namespace or disable strict mode"),
		)
	}
	slices.SortFunc(rows, func(a, b []string) int { return slices.Compare(a, b) })
	rows = slices.CompactFunc(rows, slices.Equal[[]string])
	return rows, nil
}

// Edges converts the full table of ns into canonicalizer edges.
func (c *Collector) Edges(ctx context.Context, ns string) ([]canon.XrefEdge, error) {
	rows, err := c.All(ctx, ns, false)
	if err != nil {
		return nil, err
	}
	edges := make([]canon.XrefEdge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, canon.XrefEdge{
			Source:     curie.New(row.SourceNS, row.SourceID),
			Target:     curie.New(row.TargetNS, row.TargetID),
			Trust:      canon.TrustXref,
			Provenance: row.Provenance,
		})
	}
	return edges, nil
}
