// Package preflight provides readiness checks for the filesystem paths and
// upstream services xrefcanon depends on.
//
// These checks run in two contexts:
//   - The canonicalize workflow calls RunAll before building and aborts when
//     a required check fails, so a long build never dies on a full disk.
//   - The CLI "xrefcanon status" command uses the individual check functions
//     to display environment health.
//
// Registry checks are skipped when registry.offline is set.
package preflight
