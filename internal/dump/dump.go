// Package dump writes gzip tab-separated exports of the cached resources and
// of the canonical remapping into the output directory. Every dump is paired
// with a _summary.tsv of row counts per group, largest group first.
package dump

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"xrefcanon/internal/logging"
	"xrefcanon/internal/metrics"
	"xrefcanon/internal/tabular"
)

// LockFile serializes concurrent dump runs into the same directory.
const LockFile = ".dump.lock"

// SampleRows is the number of rows written to a _sample.tsv companion.
const SampleRows = 5

// ErrLocked reports another process writing dumps into the same directory.
var ErrLocked = errors.New("dump directory locked by another process")

// Table is one export.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	// Group returns the summary key for a row; nil groups by the first column.
	Group func(row []string) string
	// Sample writes the first SampleRows rows to <name>_sample.tsv.
	Sample bool
}

// Count is one summary line.
type Count struct {
	Group string `json:"group"`
	Rows  int    `json:"rows"`
}

// Result describes a written dump.
type Result struct {
	Name    string  `json:"name"`
	Path    string  `json:"path"`
	Rows    int     `json:"rows"`
	Summary []Count `json:"summary"`
}

// Writer writes dumps under one directory.
type Writer struct {
	dir     string
	logger  *slog.Logger
	metrics *metrics.Metrics
	lock    *flock.Flock
}

// New creates a writer for dir.
func New(dir string, logger *slog.Logger, m *metrics.Metrics) *Writer {
	return &Writer{
		dir:     dir,
		logger:  logging.NewComponentLogger(logger, "dump"),
		metrics: m,
		lock:    flock.New(filepath.Join(dir, LockFile)),
	}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Lock takes the directory lock, waiting until ctx is done. The returned
// function releases it.
func (w *Writer) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dump dir: %w", err)
	}
	locked, err := w.lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", ErrLocked, w.dir)
		}
		return nil, fmt.Errorf("acquire dump lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, w.dir)
	}
	return func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("release dump lock failed", logging.Error(err))
		}
	}, nil
}

// Path returns the gzip path of the named dump.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+".tsv.gz")
}

// Write exports table and its summary. Callers hold the lock.
func (w *Writer) Write(ctx context.Context, table Table) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create dump dir: %w", err)
	}
	result := Result{Name: table.Name, Path: w.Path(table.Name), Rows: len(table.Rows)}

	if err := writeRows(result.Path, table.Header, table.Rows); err != nil {
		return Result{}, fmt.Errorf("write %s dump: %w", table.Name, err)
	}

	result.Summary = summarize(table)
	summaryPath := filepath.Join(w.dir, table.Name+"_summary.tsv")
	summaryRows := make([][]string, 0, len(result.Summary))
	for _, c := range result.Summary {
		summaryRows = append(summaryRows, []string{c.Group, strconv.Itoa(c.Rows)})
	}
	if err := writeRows(summaryPath, []string{"group", "count"}, summaryRows); err != nil {
		return Result{}, fmt.Errorf("write %s summary: %w", table.Name, err)
	}

	if table.Sample {
		n := min(SampleRows, len(table.Rows))
		samplePath := filepath.Join(w.dir, table.Name+"_sample.tsv")
		if err := writeRows(samplePath, table.Header, table.Rows[:n]); err != nil {
			return Result{}, fmt.Errorf("write %s sample: %w", table.Name, err)
		}
	}

	w.metrics.DumpRows(table.Name, result.Rows)
	logging.WithContext(ctx, w.logger).Info("dump written",
		logging.String("dump", table.Name),
		logging.String(logging.FieldArtifact, result.Path),
		logging.Int("rows", result.Rows),
		logging.Int("groups", len(result.Summary)),
	)
	return result, nil
}

func writeRows(path string, header []string, rows [][]string) error {
	return tabular.WriteFile(path, header, func(emit func(...string) error) error {
		for _, row := range rows {
			if err := emit(row...); err != nil {
				return err
			}
		}
		return nil
	})
}

// summarize counts rows per group, sorted by count descending then group.
func summarize(table Table) []Count {
	group := table.Group
	if group == nil {
		group = func(row []string) string {
			if len(row) == 0 {
				return ""
			}
			return row[0]
		}
	}
	counts := make(map[string]int)
	for _, row := range table.Rows {
		counts[group(row)]++
	}
	out := make([]Count, 0, len(counts))
	for g, n := range counts {
		out = append(out, Count{Group: g, Rows: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if a.Rows != b.Rows {
			return b.Rows - a.Rows
		}
		return strings.Compare(a.Group, b.Group)
	})
	return out
}
