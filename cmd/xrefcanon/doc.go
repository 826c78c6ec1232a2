// Command xrefcanon normalizes biological identifiers, resolves alternate
// identifiers and cross-references, and builds the canonical remapping of
// every identifier to the preferred member of its equivalence class.
//
// Lookup commands (normalize, primary, xref, species, name) answer single
// questions from the artifact cache, extracting from the source directory on
// a miss. canonicalize runs the full union-find build and can write the
// remapping dump and the mapping database; dump, publish and db operate on
// those outputs. Command results go to stdout (tables or --json); logs go to
// stderr and to the JSON log file in the log directory.
package main
