// Package logging assembles structured slog loggers and formatting helpers used
// across xrefcanon.
//
// It owns the console and JSON handlers, routes terminal output to stderr so
// command results on stdout stay pipeable, and tees every record into a JSON
// log file under the configured log directory. Run identifiers generated per
// CLI invocation are attached through the context helpers so a single
// canonicalization pass can be traced across components.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// records with the same keys (component, namespace, event_type, error_hint).
package logging
