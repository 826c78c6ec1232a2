// Package catalog bundles the collaborators every lookup component needs:
// namespace normalization, the artifact manager, the process memo, the
// extraction source and the per-namespace capability table.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"xrefcanon/internal/artifact"
	"xrefcanon/internal/config"
	"xrefcanon/internal/curie"
	"xrefcanon/internal/logging"
	"xrefcanon/internal/source"
)

// Capabilities supplies the capability record for a namespace.
// *config.Config satisfies it.
type Capabilities interface {
	Namespace(key string) config.Namespace
}

// Catalog is constructed once per run and shared by the resolvers.
type Catalog struct {
	Normalizer   *curie.Normalizer
	Artifacts    *artifact.Manager
	Memo         *artifact.Memo
	Source       source.Source
	Capabilities Capabilities
	Logger       *slog.Logger

	versions sync.Map
}

// New wires a catalog. A nil memo is replaced with an empty one.
func New(normalizer *curie.Normalizer, artifacts *artifact.Manager, memo *artifact.Memo, src source.Source, caps Capabilities, logger *slog.Logger) *Catalog {
	if normalizer == nil {
		normalizer = curie.NewNormalizer(nil, false)
	}
	if memo == nil {
		memo = artifact.NewMemo()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Catalog{
		Normalizer:   normalizer,
		Artifacts:    artifacts,
		Memo:         memo,
		Source:       src,
		Capabilities: caps,
		Logger:       logger,
	}
}

// Capability returns the record for an already normalized namespace.
func (c *Catalog) Capability(ns string) config.Namespace {
	if c.Capabilities == nil {
		return config.Namespace{}
	}
	return c.Capabilities.Namespace(ns)
}

// Namespace normalizes a namespace argument.
func (c *Catalog) Namespace(ns string) (string, error) {
	return c.Normalizer.NormalizeNamespace(ns)
}

// Version returns the declared version of ns. A configured version overrides
// the one the source declares. Source answers are remembered for the run.
func (c *Catalog) Version(ctx context.Context, ns string) (string, error) {
	if v := c.Capability(ns).Version; v != "" {
		return v, nil
	}
	if v, ok := c.versions.Load(ns); ok {
		return v.(string), nil
	}
	if c.Source == nil {
		return "", nil
	}
	v, err := c.Source.Version(ctx, ns)
	if err != nil {
		return "", fmt.Errorf("version of %s: %w", ns, err)
	}
	c.versions.Store(ns, v)
	return v, nil
}

// Path returns the artifact path for ns at its declared version.
func (c *Catalog) Path(ctx context.Context, ns string, parts ...string) (string, error) {
	version, err := c.Version(ctx, ns)
	if err != nil {
		return "", err
	}
	return c.Artifacts.Path(ns, version, parts...), nil
}

// Reset clears the process-local memo and remembered versions.
func (c *Catalog) Reset() {
	c.Memo.Reset()
	c.versions.Range(func(key, _ any) bool {
		c.versions.Delete(key)
		return true
	})
}
