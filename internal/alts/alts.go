// Package alts resolves deprecated or secondary identifiers to the primary
// identifier of the same namespace.
package alts

import (
	"context"
	"log/slog"
	"maps"
	"sort"

	"xrefcanon/internal/artifact"
	"xrefcanon/internal/canon"
	"xrefcanon/internal/catalog"
	"xrefcanon/internal/curie"
	"xrefcanon/internal/logging"
)

// FileName is the cached primary to alternates table.
const FileName = "alt_ids.tsv"

// Header returns the artifact header for ns.
func Header(ns string) []string {
	return []string{ns + "_id", "alt_id"}
}

// Resolver answers alternate identifier queries.
type Resolver struct {
	cat    *catalog.Catalog
	logger *slog.Logger
}

// New returns a resolver over cat.
func New(cat *catalog.Catalog) *Resolver {
	return &Resolver{cat: cat, logger: logging.NewComponentLogger(cat.Logger, "alts")}
}

// IDToAlts returns primary identifier to alternates. Namespaces declared
// without alternate identifiers get an empty map without any cache access.
// The result is a copy the caller may modify.
func (r *Resolver) IDToAlts(ctx context.Context, ns string, force bool) (map[string][]string, error) {
	idToAlts, err := r.idToAlts(ctx, ns, force)
	if err != nil {
		return nil, err
	}
	return artifact.CloneMultiMapping(idToAlts), nil
}

func (r *Resolver) idToAlts(ctx context.Context, ns string, force bool) (map[string][]string, error) {
	ns, err := r.cat.Namespace(ns)
	if err != nil {
		return nil, err
	}
	if !r.cat.Capability(ns).AltIDs() {
		return map[string][]string{}, nil
	}
	return artifact.Remember(r.cat.Memo, artifact.Key("alts.id_to_alts", ns, force), func() (map[string][]string, error) {
		path, err := r.cat.Path(ctx, ns, FileName)
		if err != nil {
			return nil, err
		}
		return artifact.GetOrCompute(ctx, r.cat.Artifacts, path, Header(ns), artifact.MultiMappingCodec{}, force,
			func(ctx context.Context) (map[string][]string, error) {
				logging.WithContext(ctx, r.logger).Info("extracting alternate identifiers", logging.Namespace(ns))
				return r.cat.Source.IDAlts(ctx, ns)
			})
	})
}

// AltsToID returns alternate identifier to primary, derived once per
// (namespace, force) pair. The result is a copy the caller may modify.
func (r *Resolver) AltsToID(ctx context.Context, ns string, force bool) (map[string]string, error) {
	altToID, err := r.altsToID(ctx, ns, force)
	if err != nil {
		return nil, err
	}
	return maps.Clone(altToID), nil
}

func (r *Resolver) altsToID(ctx context.Context, ns string, force bool) (map[string]string, error) {
	ns, err := r.cat.Namespace(ns)
	if err != nil {
		return nil, err
	}
	if !r.cat.Capability(ns).AltIDs() {
		return map[string]string{}, nil
	}
	return artifact.Remember(r.cat.Memo, artifact.Key("alts.alts_to_id", ns, force), func() (map[string]string, error) {
		idToAlts, err := r.idToAlts(ctx, ns, force)
		if err != nil {
			return nil, err
		}
		inverted, conflicts, cycles := invert(idToAlts)
		if conflicts > 0 || cycles > 0 {
			logging.WarnWithContext(logging.WithContext(ctx, r.logger), "inconsistent alternate identifiers", "alt_ids_inconsistent",
				logging.Namespace(ns),
				logging.Int("conflicts", conflicts),
				logging.Int("cycles", cycles),
				logging.String(logging.FieldErrorHint, "alternates claimed by several primaries resolve to the lexicographically smallest"),
			)
		}
		return inverted, nil
	})
}

// Primary returns the primary identifier for id. Unknown identifiers are
// assumed primary and returned unchanged.
func (r *Resolver) Primary(ctx context.Context, ns, id string) (string, error) {
	altToID, err := r.altsToID(ctx, ns, false)
	if err != nil {
		return "", err
	}
	if primary, ok := altToID[id]; ok {
		return primary, nil
	}
	return id, nil
}

// PrimaryCURIE normalizes ref and resolves its identifier.
func (r *Resolver) PrimaryCURIE(ctx context.Context, ref string) (curie.CURIE, error) {
	c, err := r.cat.Normalizer.Normalize(ref)
	if err != nil {
		return curie.CURIE{}, err
	}
	id, err := r.Primary(ctx, c.Namespace, c.Identifier)
	if err != nil {
		return curie.CURIE{}, err
	}
	return curie.New(c.Namespace, id), nil
}

// Edges returns the alternate identifier edges of ns in sorted order.
func (r *Resolver) Edges(ctx context.Context, ns string) ([]canon.AltEdge, error) {
	ns, err := r.cat.Namespace(ns)
	if err != nil {
		return nil, err
	}
	altToID, err := r.altsToID(ctx, ns, false)
	if err != nil {
		return nil, err
	}
	edges := make([]canon.AltEdge, 0, len(altToID))
	for _, alt := range sortedKeys(altToID) {
		edges = append(edges, canon.AltEdge{Namespace: ns, Alt: alt, Primary: altToID[alt]})
	}
	return edges, nil
}

// invert builds alt -> primary. An alternate claimed by several primaries
// keeps the lexicographically smallest one. Chains are followed to their end
// and cycles are broken at their smallest member so every value is itself a
// primary.
func invert(idToAlts map[string][]string) (map[string]string, int, int) {
	out := make(map[string]string)
	conflicts := 0
	for _, primary := range sortedKeys(idToAlts) {
		for _, alt := range idToAlts[primary] {
			if alt == primary {
				continue
			}
			if existing, ok := out[alt]; ok {
				if existing != primary {
					conflicts++
				}
				continue
			}
			out[alt] = primary
		}
	}
	cycles := 0
	for _, alt := range sortedKeys(out) {
		if _, ok := out[alt]; !ok {
			continue
		}
		for {
			end, cycle := walk(out, alt)
			if cycle == nil {
				if end != out[alt] {
					out[alt] = end
				}
				break
			}
			cycles++
			sort.Strings(cycle)
			delete(out, cycle[0])
			if _, ok := out[alt]; !ok {
				break
			}
		}
	}
	return out, conflicts, cycles
}

// walk follows alt through m. It returns the terminal primary, or the members
// of a cycle when one is reached.
func walk(m map[string]string, alt string) (string, []string) {
	seen := map[string]int{alt: 0}
	path := []string{alt}
	cur := m[alt]
	for {
		if idx, ok := seen[cur]; ok {
			return "", append([]string(nil), path[idx:]...)
		}
		next, ok := m[cur]
		if !ok {
			return cur, nil
		}
		seen[cur] = len(path)
		path = append(path, cur)
		cur = next
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
