// Package species looks up the taxon an identifier belongs to.
package species

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"xrefcanon/internal/alts"
	"xrefcanon/internal/artifact"
	"xrefcanon/internal/catalog"
	"xrefcanon/internal/logging"
	"xrefcanon/internal/source"
)

// FileName is the cached identifier to species table.
const FileName = "species.tsv"

// ErrNotImplemented marks namespaces configured without a species concept.
// It distinguishes an unsupported query from a missing mapping.
var ErrNotImplemented = errors.New("species lookup not implemented for namespace")

// Header returns the artifact header for ns.
func Header(ns string) []string {
	return []string{ns + "_id", "species"}
}

// Lookup resolves species for identifiers.
type Lookup struct {
	cat    *catalog.Catalog
	alts   *alts.Resolver
	logger *slog.Logger

	// missing records namespaces already reported as absent from the source.
	missing sync.Map
}

// New returns a species lookup. Identifiers are resolved to their primary
// form through resolver before lookup.
func New(cat *catalog.Catalog, resolver *alts.Resolver) *Lookup {
	return &Lookup{cat: cat, alts: resolver, logger: logging.NewComponentLogger(cat.Logger, "species")}
}

// Mapping returns a copy of the identifier to species table of ns.
func (l *Lookup) Mapping(ctx context.Context, ns string, force bool) (map[string]string, error) {
	mapping, err := l.mapping(ctx, ns, force)
	if err != nil {
		return nil, err
	}
	return maps.Clone(mapping), nil
}

func (l *Lookup) mapping(ctx context.Context, ns string, force bool) (map[string]string, error) {
	ns, err := l.cat.Namespace(ns)
	if err != nil {
		return nil, err
	}
	if l.cat.Capability(ns).SpeciesUnsupported() {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, ns)
	}
	return artifact.Remember(l.cat.Memo, artifact.Key("species.mapping", ns, force), func() (map[string]string, error) {
		path, err := l.cat.Path(ctx, ns, FileName)
		if err != nil {
			return nil, err
		}
		return artifact.GetOrCompute(ctx, l.cat.Artifacts, path, Header(ns), artifact.MappingCodec{}, force,
			func(ctx context.Context) (map[string]string, error) {
				return l.cat.Source.Species(ctx, ns)
			})
	})
}

// Species returns the species of ns:id. A missing mapping, or a namespace the
// source has no data for, is logged and reported as ok=false without error.
func (l *Lookup) Species(ctx context.Context, ns, id string) (string, bool, error) {
	ns, err := l.cat.Namespace(ns)
	if err != nil {
		return "", false, err
	}
	mapping, err := l.mapping(ctx, ns, false)
	if errors.Is(err, source.ErrNamespaceNotFound) {
		l.warnMissingNamespace(ctx, ns, err)
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	primary, err := l.alts.Primary(ctx, ns, id)
	if err != nil {
		return "", false, err
	}
	if taxon, ok := mapping[primary]; ok {
		return taxon, true, nil
	}
	logging.WarnWithContext(logging.WithContext(ctx, l.logger), "no species mapping", "species_missing",
		logging.Namespace(ns),
		logging.String("identifier", id),
		logging.String("primary", primary),
		logging.String(logging.FieldErrorHint, "check the species table of the source namespace"),
		logging.String(logging.FieldImpact, "species reported as unknown"),
	)
	return "", false, nil
}

func (l *Lookup) warnMissingNamespace(ctx context.Context, ns string, err error) {
	if _, seen := l.missing.LoadOrStore(ns, struct{}{}); seen {
		return
	}
	logging.WarnWithContext(logging.WithContext(ctx, l.logger), "no species data for namespace", "species_namespace_missing",
		logging.Namespace(ns),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "add the namespace directory to the source tree"),
		logging.String(logging.FieldImpact, "species reported as unknown for every identifier of the namespace"),
	)
}
