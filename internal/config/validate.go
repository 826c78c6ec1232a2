package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCanonicalizer(); err != nil {
		return err
	}
	if err := c.validateNamespaces(); err != nil {
		return err
	}
	if err := c.validateMappingDB(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCanonicalizer() error {
	if c.Canonicalizer.MinTrust < 0 || c.Canonicalizer.MinTrust > 1 {
		return errors.New("canonicalizer.min_trust must be between 0 and 1")
	}
	if c.Canonicalizer.Parallelism <= 0 {
		return errors.New("canonicalizer.parallelism must be positive")
	}
	return nil
}

func (c *Config) validateNamespaces() error {
	for _, key := range c.NamespaceKeys() {
		ns := c.Namespaces[key]
		if strings.Contains(key, ":") {
			return fmt.Errorf("namespaces.%s: namespace keys must not contain ':'", key)
		}
		if ns.Priority < 0 {
			return fmt.Errorf("namespaces.%s.priority must not be negative", key)
		}
		if ns.Species != "" && ns.Species != SpeciesUnsupported {
			return fmt.Errorf("namespaces.%s.species: unsupported value %q (expected empty or %q)", key, ns.Species, SpeciesUnsupported)
		}
	}
	return nil
}

func (c *Config) validateMappingDB() error {
	switch c.MappingDB.Driver {
	case "sqlite":
		return nil
	case "postgres":
		if c.MappingDB.DSN == "" {
			return fmt.Errorf("mapping_db.dsn is required for the postgres driver (or set %s)", mappingDSNEnv)
		}
		return nil
	default:
		return fmt.Errorf("mapping_db.driver: unsupported value %q", c.MappingDB.Driver)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
