// Package workflow wires the resolvers, the canonicalizer and the output
// sinks together and runs them as named stages.
//
// A Manager is built once per CLI invocation from the loaded config. It
// constructs the namespace synonym table from the registries, the artifact
// cache, the process memo and the extraction source, then exposes the
// resolvers to the lookup commands. Canonicalize runs the full pipeline:
// preflight, temp-file sweep, evidence gathering per namespace, union-find
// build and the optional remapping dump and database export. Every stage logs
// a start and completion record with its duration so slow passes are easy to
// spot in the JSON log.
package workflow
