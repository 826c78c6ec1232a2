// Package config loads, normalizes, and validates xrefcanon configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts and XREFCANON_HOME), reads TOML files, and honours environment
// fallbacks such as XREFCANON_MAPPING_DSN. The Config type also carries the
// per-namespace capability table (alternate-id support, priority rank,
// species support) so callers never hardcode namespace exclusion lists.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a deduplicated priority ranking, and clear validation errors.
package config
