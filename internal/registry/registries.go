package registry

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MiriamEntry is one identifiers.org namespace.
type MiriamEntry struct {
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
}

// OLSEntry is one Ontology Lookup Service ontology.
type OLSEntry struct {
	OntologyID string    `json:"ontologyId"`
	Config     OLSConfig `json:"config"`
}

// OLSConfig carries the naming fields of an OLS ontology.
type OLSConfig struct {
	Title     string `json:"title"`
	Namespace string `json:"namespace"`
}

// OBOEntry is one OBO Foundry ontology record with bulky keys removed.
type OBOEntry map[string]any

// oboDroppedKeys are removed from OBO Foundry records before caching.
var oboDroppedKeys = []string{"browsers", "usages", "depicted_by", "products"}

// MIRIAM returns the identifiers.org namespace list.
func (c *Client) MIRIAM(ctx context.Context, force bool) ([]MiriamEntry, error) {
	return cached(ctx, c, "miriam", force, func(ctx context.Context) ([]MiriamEntry, error) {
		items, err := c.FetchPaginated(ctx, c.miriamURL, "namespaces")
		if err != nil {
			return nil, err
		}
		return decodeItems[MiriamEntry](items)
	})
}

// OLS returns the Ontology Lookup Service ontology list.
func (c *Client) OLS(ctx context.Context, force bool) ([]OLSEntry, error) {
	return cached(ctx, c, "ols", force, func(ctx context.Context) ([]OLSEntry, error) {
		items, err := c.FetchPaginated(ctx, c.olsURL, "ontologies")
		if err != nil {
			return nil, err
		}
		return decodeItems[OLSEntry](items)
	})
}

// OBOFoundry returns the OBO Foundry ontology registry.
func (c *Client) OBOFoundry(ctx context.Context, force bool) ([]OBOEntry, error) {
	return cached(ctx, c, "obofoundry", force, func(ctx context.Context) ([]OBOEntry, error) {
		body, err := c.get(ctx, c.oboURL)
		if err != nil {
			return nil, err
		}
		return parseOBOFoundry(body)
	})
}

func parseOBOFoundry(body []byte) ([]OBOEntry, error) {
	var doc struct {
		Ontologies []map[string]any `yaml:"ontologies"`
	}
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode obo foundry registry: %w", err)
	}
	out := make([]OBOEntry, 0, len(doc.Ontologies))
	for _, entry := range doc.Ontologies {
		for _, key := range oboDroppedKeys {
			delete(entry, key)
		}
		out = append(out, OBOEntry(entry))
	}
	return out, nil
}

// ID returns the ontology id of an OBO Foundry record.
func (e OBOEntry) ID() string {
	s, _ := e["id"].(string)
	return s
}

// Title returns the ontology title of an OBO Foundry record.
func (e OBOEntry) Title() string {
	s, _ := e["title"].(string)
	return s
}

func decodeItems[T any](items []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, raw := range items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

//go:embed metaregistry.json
var metaregistryJSON []byte

// MetaEntry is one curated namespace record.
type MetaEntry struct {
	Name     string   `json:"name"`
	Synonyms []string `json:"synonyms"`
}

// Metaregistry is the curated namespace table shipped with the binary.
type Metaregistry struct {
	Database map[string]MetaEntry `json:"database"`
}

// LoadMetaregistry decodes the embedded metaregistry.
func LoadMetaregistry() (Metaregistry, error) {
	var m Metaregistry
	if err := json.Unmarshal(metaregistryJSON, &m); err != nil {
		return Metaregistry{}, fmt.Errorf("decode metaregistry: %w", err)
	}
	return m, nil
}
