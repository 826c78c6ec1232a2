package testsupport

import (
	"path/filepath"
	"testing"

	"xrefcanon/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a normalized config seeded with unique temp directories
// per test. Registries are offline so tests never touch the network.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.OutputDir = filepath.Join(base, "dumps")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SourceDir = filepath.Join(base, "sources")
	cfgVal.Registry.Offline = true

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	return builder.cfg
}

// WithPriority replaces the namespace priority list.
func WithPriority(keys ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Canonicalizer.Priority = append([]string(nil), keys...)
	}
}

// WithNamespace sets the capability record for one namespace.
func WithNamespace(key string, ns config.Namespace) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Namespaces == nil {
			b.cfg.Namespaces = map[string]config.Namespace{}
		}
		b.cfg.Namespaces[key] = ns
	}
}

// WithoutAltIDs marks namespaces as having no alternate identifiers.
func WithoutAltIDs(keys ...string) ConfigOption {
	return func(b *configBuilder) {
		no := false
		for _, key := range keys {
			ns := b.cfg.Namespaces[key]
			ns.HasAltIDs = &no
			b.cfg.Namespaces[key] = ns
		}
	}
}

// WithMinTrust sets the canonicalizer trust threshold.
func WithMinTrust(v float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Canonicalizer.MinTrust = v
	}
}

// WithStrict makes unknown namespaces an error.
func WithStrict() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Canonicalizer.Strict = true
	}
}
