package canon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"xrefcanon/internal/logging"
	"xrefcanon/internal/metrics"
)

// Options tune a build.
type Options struct {
	// MinTrust is the lowest XrefEdge trust that merges classes. Alt edges
	// always apply.
	MinTrust float64
	// Parallelism bounds concurrent partial-forest builds; <= 0 means 1.
	Parallelism int
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// Stats summarizes a build.
type Stats struct {
	Identifiers  int      `json:"identifiers"`
	Classes      int      `json:"classes"`
	Batches      int      `json:"batches"`
	AltEdges     int      `json:"alt_edges"`
	XrefEdges    int      `json:"xref_edges"`
	SkippedEdges int      `json:"skipped_edges"`
	Unranked     []string `json:"unranked_namespaces,omitempty"`
	Elapsed      string   `json:"elapsed"`
}

// Builder accumulates batches and builds the flat mapping.
type Builder struct {
	prio    *Priority
	opts    Options
	logger  *slog.Logger
	batches []Batch
}

// NewBuilder returns a builder electing with prio.
func NewBuilder(prio *Priority, opts Options) *Builder {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	return &Builder{
		prio:   prio,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "canon"),
	}
}

// AddBatch queues a batch for the next Build.
func (b *Builder) AddBatch(batch Batch) {
	b.batches = append(b.batches, batch)
}

type partial struct {
	forest  *Forest
	alts    int
	xrefs   int
	skipped int
}

func (b *Builder) buildPartial(ctx context.Context, batch Batch) (partial, error) {
	p := partial{forest: NewForest(b.prio)}
	for i, e := range batch.Alts {
		if i%8192 == 0 {
			if err := ctx.Err(); err != nil {
				return p, err
			}
		}
		p.forest.Union(e.AltCURIE(), e.PrimaryCURIE())
		p.alts++
	}
	for i, e := range batch.Xrefs {
		if i%8192 == 0 {
			if err := ctx.Err(); err != nil {
				return p, err
			}
		}
		if e.Trust < b.opts.MinTrust {
			p.skipped++
			continue
		}
		p.forest.Union(e.Source, e.Target)
		p.xrefs++
	}
	for _, c := range batch.Nodes {
		p.forest.Add(c)
	}
	return p, nil
}

// Build constructs one partial forest per batch concurrently, then merges
// them into the global forest in batch order.
func (b *Builder) Build(ctx context.Context) (*Mapping, error) {
	start := time.Now()
	logger := logging.WithContext(ctx, b.logger)

	partials := make([]partial, len(b.batches))
	sampler := logging.NewProgressSampler(10)
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Parallelism)
	for i, batch := range b.batches {
		g.Go(func() error {
			p, err := b.buildPartial(gctx, batch)
			if err != nil {
				return err
			}
			partials[i] = p
			mu.Lock()
			done++
			if sampler.ShouldLog("partial forests", done, len(b.batches)) {
				logger.Info("partial forest progress",
					logging.Int("done", done),
					logging.Int("total", len(b.batches)),
					logging.String("batch", batch.Name),
				)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	global := NewForest(b.prio)
	stats := Stats{Batches: len(b.batches)}
	for i, p := range partials {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		global.Merge(p.forest)
		stats.AltEdges += p.alts
		stats.XrefEdges += p.xrefs
		stats.SkippedEdges += p.skipped
		logger.Debug("merged partial forest",
			logging.String("batch", b.batches[i].Name),
			logging.Int("identifiers", p.forest.Len()),
		)
	}

	elapsed := time.Since(start)
	stats.Identifiers = global.Len()
	stats.Classes = global.Components()
	stats.Unranked = b.prio.Unranked()
	stats.Elapsed = elapsed.Round(time.Millisecond).String()

	b.opts.Metrics.EdgesApplied("alt", stats.AltEdges)
	b.opts.Metrics.EdgesApplied("xref", stats.XrefEdges)
	b.opts.Metrics.EdgesSkipped("xref", stats.SkippedEdges)
	b.opts.Metrics.Canonicalized(stats.Identifiers, stats.Classes, elapsed)

	logger.Info("canonicalization complete",
		logging.Int("identifiers", stats.Identifiers),
		logging.Int("classes", stats.Classes),
		logging.Int("skipped_edges", stats.SkippedEdges),
		logging.Duration("elapsed", elapsed),
	)

	return newMapping(global.Flatten(), stats), nil
}
