package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"xrefcanon/internal/alts"
	"xrefcanon/internal/artifact"
	"xrefcanon/internal/catalog"
	"xrefcanon/internal/config"
	"xrefcanon/internal/curie"
	"xrefcanon/internal/logging"
	"xrefcanon/internal/metrics"
	"xrefcanon/internal/names"
	"xrefcanon/internal/registry"
	"xrefcanon/internal/source"
	"xrefcanon/internal/species"
	"xrefcanon/internal/xrefs"
)

// Manager owns the per-run collaborators.
type Manager struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	artifacts *artifact.Manager
	registry  *registry.Client
	catalog   *catalog.Catalog
	alts      *alts.Resolver
	xrefs     *xrefs.Collector
	names     *names.Store
	species   *species.Lookup
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	source   source.Source
	metrics  *metrics.Metrics
	synonyms *curie.SynonymTable
	registry []registry.Option
}

// WithSource replaces the directory source named by paths.source_dir.
func WithSource(src source.Source) ManagerOption {
	return func(o *managerOptions) {
		o.source = src
	}
}

// WithMetrics shares a metrics registry with the caller.
func WithMetrics(m *metrics.Metrics) ManagerOption {
	return func(o *managerOptions) {
		o.metrics = m
	}
}

// WithSynonymTable skips the registry fetch and normalizes with table.
func WithSynonymTable(table *curie.SynonymTable) ManagerOption {
	return func(o *managerOptions) {
		o.synonyms = table
	}
}

// WithRegistryOptions appends options to the registry client.
func WithRegistryOptions(opts ...registry.Option) ManagerOption {
	return func(o *managerOptions) {
		o.registry = append(o.registry, opts...)
	}
}

// NewManager builds the collaborators for cfg. The registry synonym table is
// built eagerly because every lookup normalizes its namespace first.
func NewManager(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...ManagerOption) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("workflow: config is required")
	}
	options := &managerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	m := options.metrics
	if m == nil {
		m = metrics.New()
	}

	artifacts := artifact.NewManager(cfg.Paths.CacheDir, logger, m)
	regOpts := append([]registry.Option{registry.WithConfig(cfg.Registry), registry.WithLogger(logger)}, options.registry...)
	reg := registry.New(artifacts, regOpts...)

	table := options.synonyms
	if table == nil {
		var err error
		table, err = reg.NamespaceSynonyms(ctx, registry.ConfiguredNamespaces(cfg))
		if err != nil {
			return nil, fmt.Errorf("build namespace synonyms: %w", err)
		}
	}
	normalizer := curie.NewNormalizer(table, cfg.Canonicalizer.Strict)

	src := options.source
	if src == nil {
		src = source.NewDir(cfg.Paths.SourceDir, source.WithPrefixResolver(func(prefix string) string {
			ns, err := normalizer.NormalizeNamespace(prefix)
			if err != nil {
				return prefix
			}
			return ns
		}))
	}
	cat := catalog.New(normalizer, artifacts, artifact.NewMemo(), src, cfg, logger)
	resolver := alts.New(cat)

	return &Manager{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		metrics:   m,
		artifacts: artifacts,
		registry:  reg,
		catalog:   cat,
		alts:      resolver,
		xrefs:     xrefs.New(cat),
		names:     names.New(cat),
		species:   species.New(cat, resolver),
	}, nil
}

// Config returns the loaded configuration.
func (m *Manager) Config() *config.Config { return m.cfg }

// Metrics returns the run's metrics registry.
func (m *Manager) Metrics() *metrics.Metrics { return m.metrics }

// Normalizer returns the CURIE normalizer.
func (m *Manager) Normalizer() *curie.Normalizer { return m.catalog.Normalizer }

// Alts returns the alternate identifier resolver.
func (m *Manager) Alts() *alts.Resolver { return m.alts }

// Xrefs returns the cross-reference collector.
func (m *Manager) Xrefs() *xrefs.Collector { return m.xrefs }

// Names returns the label store.
func (m *Manager) Names() *names.Store { return m.names }

// Species returns the species lookup.
func (m *Manager) Species() *species.Lookup { return m.species }

// Artifacts returns the cache manager.
func (m *Manager) Artifacts() *artifact.Manager { return m.artifacts }

// Registry returns the registry client.
func (m *Manager) Registry() *registry.Client { return m.registry }

// Namespaces normalizes requested, or lists every source namespace when
// requested is empty. The result is sorted and deduplicated.
func (m *Manager) Namespaces(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) == 0 {
		listed, err := m.catalog.Source.Namespaces(ctx)
		if err != nil {
			return nil, fmt.Errorf("list source namespaces: %w", err)
		}
		requested = listed
	}
	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, raw := range requested {
		ns, err := m.catalog.Namespace(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[ns]; dup {
			continue
		}
		seen[ns] = struct{}{}
		out = append(out, ns)
	}
	sortStrings(out)
	return out, nil
}
