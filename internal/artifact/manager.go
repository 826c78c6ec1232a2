// Package artifact memoizes expensive producers behind on-disk artifacts.
//
// An artifact on disk is either absent or complete: every write goes to a
// temporary file in the destination directory and is renamed into place. A
// stored header that differs from the requested one counts as a miss, so
// changing an artifact's schema simply triggers recomputation.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"xrefcanon/internal/fileutil"
	"xrefcanon/internal/logging"
	"xrefcanon/internal/metrics"
)

// Unversioned is the version directory used when a namespace declares none.
const Unversioned = "unversioned"

// Manager owns the cache root.
type Manager struct {
	root    string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewManager returns a manager rooted at root. logger and m may be nil.
func NewManager(root string, logger *slog.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		root:    root,
		logger:  logging.NewComponentLogger(logger, "artifact"),
		metrics: m,
	}
}

// Root returns the cache directory.
func (m *Manager) Root() string {
	return m.root
}

// Path builds root/<namespace>/<version>/<parts...>.
func (m *Manager) Path(namespace, version string, parts ...string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		version = Unversioned
	}
	elems := append([]string{m.root, namespace, version}, parts...)
	return filepath.Join(elems...)
}

// Exists reports whether a complete artifact is present at path.
func (m *Manager) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Producer computes a payload on a cache miss.
type Producer[T any] func(ctx context.Context) (T, error)

// GetOrCompute returns the artifact at path when it exists under header and
// force is false. Otherwise it calls produce, writes the result atomically and
// returns it. A producer error is returned as-is and nothing is written. A
// failed write is logged and the freshly produced value is still returned.
func GetOrCompute[T any](ctx context.Context, m *Manager, path string, header []string, codec Codec[T], force bool, produce Producer[T]) (T, error) {
	kind := Kind(path)
	logger := logging.WithContext(ctx, m.logger).With(logging.String(logging.FieldArtifact, path))

	if !force {
		value, err := read(path, header, codec)
		switch {
		case err == nil:
			m.metrics.CacheHit(kind)
			logger.Debug("artifact cache hit")
			return value, nil
		case errors.Is(err, fs.ErrNotExist):
			m.metrics.CacheMiss(kind, "absent")
		case errors.Is(err, ErrHeaderMismatch):
			m.metrics.HeaderMismatch(kind)
			m.metrics.CacheMiss(kind, "mismatch")
			logger.Debug("artifact header mismatch; recomputing", logging.Error(err))
		default:
			m.metrics.CacheMiss(kind, "unreadable")
			logger.Debug("artifact unreadable; recomputing", logging.Error(err))
		}
	} else {
		m.metrics.CacheMiss(kind, "forced")
	}

	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	value, err := produce(ctx)
	if err != nil {
		m.metrics.ProducerFailure(kind)
		var zero T
		return zero, err
	}

	err = fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return codec.Encode(w, header, value)
	})
	if err != nil {
		logging.WarnWithContext(logger, "artifact write failed", "artifact_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache_dir permissions and free space"),
			logging.String(logging.FieldImpact, "value is recomputed on the next run"),
		)
		return value, nil
	}
	m.metrics.CacheWrite(kind)
	logger.Debug("artifact written")
	return value, nil
}

// Load reads an artifact without producing it on a miss.
func Load[T any](path string, header []string, codec Codec[T]) (T, error) {
	return read(path, header, codec)
}

func read[T any](path string, header []string, codec Codec[T]) (T, error) {
	var zero T
	file, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer file.Close()
	value, err := codec.Decode(file, header)
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", path, err)
	}
	return value, nil
}

// Kind derives a metrics label from an artifact path: the file name without
// extensions.
func Kind(path string) string {
	base := filepath.Base(path)
	if idx := strings.IndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	return base
}
