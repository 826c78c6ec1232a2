package canon

import (
	"log/slog"
	"math"
	"strings"
	"sync"

	"xrefcanon/internal/curie"
	"xrefcanon/internal/logging"
)

// Unranked is the rank given to namespaces absent from the priority table.
const Unranked = math.MaxInt32

// Priority ranks namespaces; a lower rank is preferred.
type Priority struct {
	ranks  map[string]int
	logger *slog.Logger
	warned sync.Map
}

// NewPriority ranks namespaces by their position in order.
func NewPriority(order []string, logger *slog.Logger) *Priority {
	ranks := make(map[string]int, len(order))
	for i, ns := range order {
		ns = strings.TrimSpace(ns)
		if _, ok := ranks[ns]; ns != "" && !ok {
			ranks[ns] = i + 1
		}
	}
	return NewPriorityTable(ranks, logger)
}

// NewPriorityTable uses explicit ranks. Non-positive ranks are ignored.
func NewPriorityTable(ranks map[string]int, logger *slog.Logger) *Priority {
	table := make(map[string]int, len(ranks))
	for ns, rank := range ranks {
		if rank > 0 {
			table[ns] = rank
		}
	}
	return &Priority{ranks: table, logger: logging.NewComponentLogger(logger, "canon")}
}

// Rank returns the namespace rank. Unknown namespaces get Unranked and a
// single warning per namespace.
func (p *Priority) Rank(ns string) int {
	if rank, ok := p.ranks[ns]; ok {
		return rank
	}
	if _, loaded := p.warned.LoadOrStore(ns, struct{}{}); !loaded {
		logging.WarnWithContext(p.logger, "namespace missing from priority table", "priority_unranked",
			logging.Namespace(ns),
			logging.String(logging.FieldErrorHint, "add the namespace to canonicalizer.priority"),
			logging.String(logging.FieldImpact, "identifiers from this namespace are elected last"),
		)
	}
	return Unranked
}

// Ranked reports whether ns appears in the table.
func (p *Priority) Ranked(ns string) bool {
	_, ok := p.ranks[ns]
	return ok
}

// Unranked lists namespaces that were looked up without a rank, sorted.
func (p *Priority) Unranked() []string {
	var out []string
	p.warned.Range(func(key, _ any) bool {
		out = append(out, key.(string))
		return true
	})
	sortStrings(out)
	return out
}

// Less is the election order: namespace rank, then local identifier, then
// namespace name so that unranked namespaces still order totally.
func (p *Priority) Less(a, b curie.CURIE) bool {
	ra, rb := p.Rank(a.Namespace), p.Rank(b.Namespace)
	if ra != rb {
		return ra < rb
	}
	if a.Identifier != b.Identifier {
		return a.Identifier < b.Identifier
	}
	return a.Namespace < b.Namespace
}
