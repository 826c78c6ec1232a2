package workflow

import (
	"context"
	"fmt"
	"strings"

	"xrefcanon/internal/dump"
)

// DumpKinds lists the exports Dump understands, in write order.
var DumpKinds = []string{dump.NamesDump, dump.AltsDump, dump.SynonymsDump, dump.XrefsDump, dump.RemappingDump}

// DumpRequest selects exports. Empty Kinds writes every resource dump; the
// remapping is only written when asked for since it runs a full build.
type DumpRequest struct {
	Kinds      []string
	Namespaces []string
}

// Dump writes the requested exports under the dump directory lock.
func (m *Manager) Dump(ctx context.Context, req DumpRequest) ([]dump.Result, error) {
	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = DumpKinds[:len(DumpKinds)-1]
	}
	for _, kind := range kinds {
		if !isDumpKind(kind) {
			return nil, fmt.Errorf("unknown dump %q (want one of %s)", kind, strings.Join(DumpKinds, ", "))
		}
	}

	namespaces, err := m.Namespaces(ctx, req.Namespaces)
	if err != nil {
		return nil, err
	}

	writer := m.dumpWriter()
	unlock, err := writer.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var results []dump.Result
	for _, kind := range kinds {
		err := m.runStage(ctx, "dump_"+kind, func(ctx context.Context) error {
			table, err := m.dumpTable(ctx, kind, namespaces)
			if err != nil {
				return err
			}
			res, err := writer.Write(ctx, table)
			if err != nil {
				return err
			}
			results = append(results, res)
			return nil
		})
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (m *Manager) dumpTable(ctx context.Context, kind string, namespaces []string) (dump.Table, error) {
	switch kind {
	case dump.NamesDump:
		return dump.NamesTable(ctx, m.names, namespaces)
	case dump.AltsDump:
		return dump.AltsTable(ctx, m.alts, namespaces)
	case dump.SynonymsDump:
		return dump.SynonymsTable(ctx, m.names, namespaces)
	case dump.XrefsDump:
		return dump.XrefsTable(ctx, m.xrefs, namespaces)
	case dump.RemappingDump:
		res, err := m.Canonicalize(ctx, Request{Namespaces: namespaces, SkipPreflight: true})
		if err != nil {
			return dump.Table{}, err
		}
		return dump.RemappingTable(res.Mapping)
	}
	return dump.Table{}, fmt.Errorf("unknown dump %q", kind)
}

func isDumpKind(kind string) bool {
	for _, k := range DumpKinds {
		if k == kind {
			return true
		}
	}
	return false
}
