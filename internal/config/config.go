package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir  string `toml:"cache_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	SourceDir string `toml:"source_dir"`
}

// Canonicalizer contains the equivalence-class construction settings.
type Canonicalizer struct {
	// Priority lists preferred namespaces, most preferred first. Entries seed
	// namespaces.<key>.priority when that value is unset.
	Priority []string `toml:"priority"`
	// MinTrust is the lowest edge trust weight that still merges classes.
	MinTrust float64 `toml:"min_trust"`
	// IncludeSynonyms lowers the effective threshold so synonym-derived edges merge.
	IncludeSynonyms bool `toml:"include_synonyms"`
	Parallelism     int  `toml:"parallelism"`
	// Strict makes unknown namespaces an error instead of passing them through.
	Strict bool `toml:"strict"`
}

// Namespace is the capability record for one identifier system.
type Namespace struct {
	HasAltIDs *bool    `toml:"has_alt_ids"` // Default: true
	Priority  int      `toml:"priority"`    // 1 is most preferred; 0 means unranked
	Species   string   `toml:"species"`     // "" (cached lookup) or "unsupported"
	Version   string   `toml:"version"`     // overrides the source-declared version
	Synonyms  []string `toml:"synonyms"`
}

// AltIDs reports whether the namespace declares alternate identifiers.
func (n Namespace) AltIDs() bool {
	return n.HasAltIDs == nil || *n.HasAltIDs
}

// SpeciesUnsupported reports whether species lookups are refused by design.
func (n Namespace) SpeciesUnsupported() bool {
	return strings.EqualFold(strings.TrimSpace(n.Species), SpeciesUnsupported)
}

// SpeciesUnsupported marks namespaces that have no species concept.
const SpeciesUnsupported = "unsupported"

// Registry contains the upstream namespace registry endpoints.
type Registry struct {
	MiriamURL      string `toml:"miriam_url"`
	OLSURL         string `toml:"ols_url"`
	OBOFoundryURL  string `toml:"obofoundry_url"`
	Offline        bool   `toml:"offline"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// MappingDB contains settings for the flat-mapping database export.
type MappingDB struct {
	Driver string `toml:"driver"` // "sqlite" or "postgres"
	DSN    string `toml:"dsn"`    // sqlite file path or postgres URL
}

// Publish contains the S3-compatible bucket dumps are uploaded to.
type Publish struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	Prefix    string `toml:"prefix"`
	PathStyle bool   `toml:"path_style"`
}

// Metrics contains settings for the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for xrefcanon.
//
// Configuration sections by subsystem:
//   - Paths: cache, dump output, log and extraction source directories
//   - Canonicalizer: namespace priority, trust threshold, parallelism
//   - Namespaces: per-namespace capability table
//   - Registry: MIRIAM, OLS and OBO Foundry endpoints
//   - MappingDB: flat-mapping database export
//   - Publish: S3 upload target for dumps
//   - Metrics: Prometheus textfile export
//   - Logging: log format and level
type Config struct {
	Paths         Paths                `toml:"paths"`
	Canonicalizer Canonicalizer        `toml:"canonicalizer"`
	Namespaces    map[string]Namespace `toml:"namespaces"`
	Registry      Registry             `toml:"registry"`
	MappingDB     MappingDB            `toml:"mapping_db"`
	Publish       Publish              `toml:"publish"`
	Metrics       Metrics              `toml:"metrics"`
	Logging       Logging              `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/xrefcanon/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("xrefcanon.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and log directories. The output
// directory is created lazily by the dump commands.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Namespace returns the capability record for key; unknown keys get the
// zero record (alt ids enabled, unranked).
func (c *Config) Namespace(key string) Namespace {
	if c == nil || c.Namespaces == nil {
		return Namespace{}
	}
	return c.Namespaces[strings.ToLower(strings.TrimSpace(key))]
}

// PriorityTable returns namespace -> rank for every ranked namespace.
func (c *Config) PriorityTable() map[string]int {
	table := make(map[string]int, len(c.Namespaces))
	for key, ns := range c.Namespaces {
		if ns.Priority > 0 {
			table[key] = ns.Priority
		}
	}
	return table
}

// NamespaceKeys returns configured namespace keys in sorted order.
func (c *Config) NamespaceKeys() []string {
	keys := make([]string, 0, len(c.Namespaces))
	for key := range c.Namespaces {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// EffectiveMinTrust is the trust threshold the canonicalizer applies.
func (c *Config) EffectiveMinTrust(synonymTrust float64) float64 {
	if c.Canonicalizer.IncludeSynonyms && synonymTrust < c.Canonicalizer.MinTrust {
		return synonymTrust
	}
	return c.Canonicalizer.MinTrust
}

// MappingDSN returns the DSN for the mapping database, defaulting the SQLite
// file into the output directory.
func (c *Config) MappingDSN() string {
	if dsn := strings.TrimSpace(c.MappingDB.DSN); dsn != "" {
		return dsn
	}
	return filepath.Join(c.Paths.OutputDir, "mapping.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// homeDir returns the data root, honouring XREFCANON_HOME.
func homeDir() string {
	if base, ok := os.LookupEnv("XREFCANON_HOME"); ok && strings.TrimSpace(base) != "" {
		return strings.TrimSpace(base)
	}
	return defaultHomeDir
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
