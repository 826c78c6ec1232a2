package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"xrefcanon/internal/canon"
	"xrefcanon/internal/curie"
	"xrefcanon/internal/dump"
	"xrefcanon/internal/fileutil"
	"xrefcanon/internal/logging"
	"xrefcanon/internal/mappingdb"
)

// StatsFile is written next to the remapping dump.
const StatsFile = "canonicalize_stats.json"

// Request selects what a canonicalization pass covers and where it goes.
type Request struct {
	// Namespaces limits evidence gathering; empty means every source namespace.
	Namespaces []string
	// IncludeSynonyms merges synonym-derived matches regardless of config.
	IncludeSynonyms bool
	SkipPreflight   bool
	// Dump writes the remapping dump and stats into the output directory.
	Dump bool
	// SaveDB exports the flat mapping to the mapping database.
	SaveDB bool
	RunID  string
}

// Result summarizes a canonicalization pass.
type Result struct {
	RunID      string         `json:"run_id"`
	Namespaces []string       `json:"namespaces"`
	MinTrust   float64        `json:"min_trust"`
	Stats      canon.Stats    `json:"stats"`
	Dump       *dump.Result   `json:"dump,omitempty"`
	Database   *mappingdb.Run `json:"database,omitempty"`

	Mapping *canon.Mapping `json:"-"`
}

// MinTrust is the threshold a request builds with.
func (m *Manager) MinTrust(req Request) float64 {
	if req.IncludeSynonyms && canon.TrustSynonym < m.cfg.Canonicalizer.MinTrust {
		return canon.TrustSynonym
	}
	return m.cfg.EffectiveMinTrust(canon.TrustSynonym)
}

// Canonicalize gathers evidence, builds the flat mapping and writes the
// requested outputs.
func (m *Manager) Canonicalize(ctx context.Context, req Request) (*Result, error) {
	if req.RunID == "" {
		req.RunID = logging.NewRunID()
	}
	if _, ok := logging.RunIDFromContext(ctx); !ok {
		ctx = logging.WithRunID(ctx, req.RunID)
	}
	result := &Result{RunID: req.RunID, MinTrust: m.MinTrust(req)}

	if err := m.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	if !req.SkipPreflight {
		if err := m.runStage(ctx, "preflight", m.runPreflightChecks); err != nil {
			return nil, err
		}
	}

	if err := m.runStage(ctx, "sweep", func(ctx context.Context) error {
		removed, err := fileutil.SweepTempFiles(m.artifacts.Root())
		if err != nil {
			return err
		}
		if removed > 0 {
			logging.WithContext(ctx, m.logger).Info("removed interrupted cache writes", logging.Int("files", removed))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	var batches []canon.Batch
	if err := m.runStage(ctx, "gather", func(ctx context.Context) error {
		namespaces, err := m.Namespaces(ctx, req.Namespaces)
		if err != nil {
			return err
		}
		result.Namespaces = namespaces
		batches, err = m.gather(ctx, namespaces, result.MinTrust)
		return err
	}); err != nil {
		return nil, err
	}

	if err := m.runStage(ctx, "build", func(ctx context.Context) error {
		builder := canon.NewBuilder(m.priority(), canon.Options{
			MinTrust:    result.MinTrust,
			Parallelism: m.cfg.Canonicalizer.Parallelism,
			Logger:      m.logger,
			Metrics:     m.metrics,
		})
		for _, b := range batches {
			builder.AddBatch(b)
		}
		mapping, err := builder.Build(ctx)
		if err != nil {
			return err
		}
		result.Mapping = mapping
		result.Stats = mapping.Stats()
		return nil
	}); err != nil {
		return nil, err
	}

	if req.Dump {
		if err := m.runStage(ctx, "dump", func(ctx context.Context) error {
			return m.dumpRemapping(ctx, result)
		}); err != nil {
			return nil, err
		}
	}

	if req.SaveDB {
		if err := m.runStage(ctx, "database", func(ctx context.Context) error {
			store, err := mappingdb.Open(ctx, m.cfg.MappingDB.Driver, m.cfg.MappingDSN())
			if err != nil {
				return err
			}
			defer store.Close()
			run, err := store.Save(ctx, result.RunID, result.Mapping)
			if err != nil {
				return err
			}
			result.Database = &run
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if err := m.metrics.WriteTextfile(m.cfg.Metrics.Textfile); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "metrics textfile export failed", "metrics_export_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check metrics.textfile permissions"),
			logging.String(logging.FieldImpact, "node exporter shows stale values"),
		)
	}
	return result, nil
}

// priority ranks namespaces by their configured priority.
func (m *Manager) priority() *canon.Priority {
	return canon.NewPriorityTable(m.cfg.PriorityTable(), m.logger)
}

// gather builds one batch per namespace concurrently plus a synonym batch
// when the threshold admits synonym edges. Batches keep namespace order.
func (m *Manager) gather(ctx context.Context, namespaces []string, minTrust float64) ([]canon.Batch, error) {
	batches := make([]canon.Batch, len(namespaces))
	sampler := logging.NewProgressSampler(10)
	logger := logging.WithContext(ctx, m.logger)
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.cfg.Canonicalizer.Parallelism))
	for i, ns := range namespaces {
		g.Go(func() error {
			batch, err := m.namespaceBatch(gctx, ns)
			if err != nil {
				return fmt.Errorf("gather %s: %w", ns, err)
			}
			batches[i] = batch
			mu.Lock()
			done++
			if sampler.ShouldLog("gather", done, len(namespaces)) {
				logger.Info("gather progress",
					logging.Int("done", done),
					logging.Int("total", len(namespaces)),
					logging.Namespace(ns),
				)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if minTrust <= canon.TrustSynonym {
		edges, err := m.names.SynonymEdges(ctx, namespaces)
		if err != nil {
			return nil, fmt.Errorf("gather synonyms: %w", err)
		}
		batches = append(batches, canon.Batch{Name: "synonyms", Xrefs: edges})
	}
	return batches, nil
}

// namespaceBatch collects the alternate identifier edges, the
// cross-references and the labelled identifiers of ns.
func (m *Manager) namespaceBatch(ctx context.Context, ns string) (canon.Batch, error) {
	batch := canon.Batch{Name: ns}
	var err error
	if batch.Alts, err = m.alts.Edges(ctx, ns); err != nil {
		return canon.Batch{}, err
	}
	if batch.Xrefs, err = m.xrefs.Edges(ctx, ns); err != nil {
		return canon.Batch{}, err
	}
	labels, err := m.names.Names(ctx, ns, false)
	if err != nil {
		return canon.Batch{}, err
	}
	primaries, err := m.alts.IDToAlts(ctx, ns, false)
	if err != nil {
		return canon.Batch{}, err
	}
	for _, id := range sortedKeys(labels) {
		batch.Nodes = append(batch.Nodes, curie.New(ns, id))
	}
	for _, id := range sortedKeys(primaries) {
		if _, labelled := labels[id]; !labelled {
			batch.Nodes = append(batch.Nodes, curie.New(ns, id))
		}
	}
	return batch, nil
}

func (m *Manager) dumpRemapping(ctx context.Context, result *Result) error {
	writer := m.dumpWriter()
	unlock, err := writer.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	table, err := dump.RemappingTable(result.Mapping)
	if err != nil {
		return err
	}
	written, err := writer.Write(ctx, table)
	if err != nil {
		return err
	}
	result.Dump = &written

	return fileutil.WriteAtomic(filepath.Join(writer.Dir(), StatsFile), 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	})
}

func (m *Manager) dumpWriter() *dump.Writer {
	return dump.New(m.cfg.Paths.OutputDir, m.logger, m.metrics)
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}
