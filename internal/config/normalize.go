package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Normalize applies defaults and canonical spellings. Load calls it; tests
// that build a Config by hand call it before use.
func (c *Config) Normalize() error {
	return c.normalize()
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNamespaces()
	c.normalizeCanonicalizer()
	c.normalizeRegistry()
	if err := c.normalizeMappingDB(); err != nil {
		return err
	}
	c.normalizePublish()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	home := homeDir()
	defaults := []struct {
		field *string
		name  string
		key   string
	}{
		{&c.Paths.CacheDir, defaultCacheDirName, "paths.cache_dir"},
		{&c.Paths.OutputDir, defaultOutputDirName, "paths.output_dir"},
		{&c.Paths.LogDir, defaultLogDirName, "paths.log_dir"},
		{&c.Paths.SourceDir, defaultSourceDirName, "paths.source_dir"},
	}
	for _, d := range defaults {
		if strings.TrimSpace(*d.field) == "" {
			*d.field = filepath.Join(home, d.name)
		}
		expanded, err := expandPath(strings.TrimSpace(*d.field))
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.field = expanded
	}
	return nil
}

func (c *Config) normalizeNamespaces() {
	normalized := make(map[string]Namespace, len(c.Namespaces))
	for key, ns := range c.Namespaces {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		ns.Species = strings.ToLower(strings.TrimSpace(ns.Species))
		ns.Version = strings.TrimSpace(ns.Version)
		synonyms := make([]string, 0, len(ns.Synonyms))
		for _, s := range ns.Synonyms {
			if s = strings.TrimSpace(s); s != "" {
				synonyms = append(synonyms, s)
			}
		}
		ns.Synonyms = synonyms
		normalized[key] = ns
	}
	c.Namespaces = normalized
}

func (c *Config) normalizeCanonicalizer() {
	seen := make(map[string]struct{}, len(c.Canonicalizer.Priority))
	priority := make([]string, 0, len(c.Canonicalizer.Priority))
	for _, key := range c.Canonicalizer.Priority {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		priority = append(priority, key)
	}
	c.Canonicalizer.Priority = priority

	for i, key := range priority {
		ns := c.Namespaces[key]
		if ns.Priority == 0 {
			ns.Priority = i + defaultNamespacePriorityBase
		}
		c.Namespaces[key] = ns
	}

	if c.Canonicalizer.Parallelism <= 0 {
		c.Canonicalizer.Parallelism = defaultParallelism
	}
}

func (c *Config) normalizeRegistry() {
	c.Registry.MiriamURL = strings.TrimSpace(c.Registry.MiriamURL)
	if c.Registry.MiriamURL == "" {
		c.Registry.MiriamURL = defaultMiriamURL
	}
	c.Registry.OLSURL = strings.TrimSpace(c.Registry.OLSURL)
	if c.Registry.OLSURL == "" {
		c.Registry.OLSURL = defaultOLSURL
	}
	c.Registry.OBOFoundryURL = strings.TrimSpace(c.Registry.OBOFoundryURL)
	if c.Registry.OBOFoundryURL == "" {
		c.Registry.OBOFoundryURL = defaultOBOFoundryURL
	}
	if c.Registry.TimeoutSeconds <= 0 {
		c.Registry.TimeoutSeconds = defaultRegistryTimeout
	}
}

func (c *Config) normalizeMappingDB() error {
	c.MappingDB.Driver = strings.ToLower(strings.TrimSpace(c.MappingDB.Driver))
	if c.MappingDB.Driver == "" || c.MappingDB.Driver == "sqlite3" {
		c.MappingDB.Driver = defaultMappingDriver
	}
	if c.MappingDB.Driver == "postgresql" || c.MappingDB.Driver == "pgx" {
		c.MappingDB.Driver = "postgres"
	}
	c.MappingDB.DSN = strings.TrimSpace(c.MappingDB.DSN)
	if c.MappingDB.DSN == "" {
		if value, ok := os.LookupEnv(mappingDSNEnv); ok {
			c.MappingDB.DSN = strings.TrimSpace(value)
		}
	}
	if c.MappingDB.Driver == "sqlite" && c.MappingDB.DSN != "" {
		expanded, err := expandPath(c.MappingDB.DSN)
		if err != nil {
			return fmt.Errorf("mapping_db.dsn: %w", err)
		}
		c.MappingDB.DSN = expanded
	}
	return nil
}

func (c *Config) normalizePublish() {
	c.Publish.Bucket = strings.TrimSpace(c.Publish.Bucket)
	if c.Publish.Bucket == "" {
		if value, ok := os.LookupEnv(publishBucketEnv); ok {
			c.Publish.Bucket = strings.TrimSpace(value)
		}
	}
	c.Publish.Region = strings.TrimSpace(c.Publish.Region)
	if c.Publish.Region == "" {
		c.Publish.Region = defaultPublishRegion
	}
	c.Publish.Endpoint = strings.TrimSpace(c.Publish.Endpoint)
	c.Publish.Prefix = strings.Trim(strings.TrimSpace(c.Publish.Prefix), "/")
}

func (c *Config) normalizeMetrics() error {
	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)
	if c.Metrics.Textfile == "" {
		return nil
	}
	expanded, err := expandPath(c.Metrics.Textfile)
	if err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	c.Metrics.Textfile = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
