package registry

import (
	"context"
	"errors"
	"sort"

	"xrefcanon/internal/config"
	"xrefcanon/internal/curie"
	"xrefcanon/internal/logging"
)

// ConfiguredNamespace is a namespace key with operator-supplied synonyms.
type ConfiguredNamespace struct {
	Key      string
	Synonyms []string
}

// ConfiguredNamespaces lists the namespaces of cfg with their synonyms.
func ConfiguredNamespaces(cfg *config.Config) []ConfiguredNamespace {
	if cfg == nil {
		return nil
	}
	keys := cfg.NamespaceKeys()
	out := make([]ConfiguredNamespace, 0, len(keys))
	for _, key := range keys {
		out = append(out, ConfiguredNamespace{Key: key, Synonyms: cfg.Namespace(key).Synonyms})
	}
	return out
}

// NamespaceSynonyms builds the synonym table from MIRIAM, OLS, OBO Foundry,
// the embedded metaregistry and the configured namespaces, in that order, so
// later sources override earlier ones for a shared spelling. Registries that
// are offline and uncached are skipped with a warning; other fetch failures
// are returned.
func (c *Client) NamespaceSynonyms(ctx context.Context, configured []ConfiguredNamespace) (*curie.SynonymTable, error) {
	table := curie.NewSynonymTable()
	logger := logging.WithContext(ctx, c.logger)

	skip := func(name string, err error) error {
		if errors.Is(err, ErrOffline) {
			logging.WarnWithContext(logger, "registry unavailable offline", "registry_offline",
				logging.String("registry", name),
				logging.String(logging.FieldErrorHint, "run once with registry.offline = false to populate the cache"),
				logging.String(logging.FieldImpact, "namespace spellings from this registry are not recognised"),
			)
			return nil
		}
		return err
	}

	miriam, err := c.MIRIAM(ctx, false)
	if err := skip("miriam", err); err != nil {
		return nil, err
	}
	for _, entry := range miriam {
		table.AddVariety(entry.Prefix, entry.Prefix)
		table.AddVariety(entry.Name, entry.Prefix)
	}

	ols, err := c.OLS(ctx, false)
	if err := skip("ols", err); err != nil {
		return nil, err
	}
	for _, entry := range ols {
		table.AddVariety(entry.OntologyID, entry.OntologyID)
		table.AddVariety(entry.Config.Title, entry.OntologyID)
		table.AddVariety(entry.Config.Namespace, entry.OntologyID)
	}

	obo, err := c.OBOFoundry(ctx, false)
	if err := skip("obofoundry", err); err != nil {
		return nil, err
	}
	for _, entry := range obo {
		if id := entry.ID(); id != "" {
			table.AddVariety(id, id)
			table.AddVariety(entry.Title(), id)
		}
	}

	meta, err := LoadMetaregistry()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(meta.Database))
	for key := range meta.Database {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		entry := meta.Database[key]
		table.AddVariety(key, key)
		table.AddVariety(entry.Name, key)
		for _, synonym := range entry.Synonyms {
			table.AddVariety(synonym, key)
		}
	}

	for _, ns := range configured {
		table.AddVariety(ns.Key, ns.Key)
		for _, synonym := range ns.Synonyms {
			table.AddVariety(synonym, ns.Key)
		}
	}

	logger.Debug("built namespace synonym table",
		logging.Int("spellings", table.Len()),
		logging.Int("namespaces", len(table.Keys())),
	)
	return table, nil
}
