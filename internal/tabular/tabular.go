// Package tabular reads and writes the tab-separated artifacts shared by the
// cache, the source directory, and the dumps. Paths ending in .gz are gzip
// compressed transparently.
package tabular

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"xrefcanon/internal/fileutil"
)

// IsCompressed reports whether path names a gzip artifact.
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

// Reader yields rows after the header line.
type Reader struct {
	header []string
	csv    *csv.Reader
	closer []io.Closer
}

// NewReader wraps r, decompressing when compressed is set, and consumes the
// header line. An empty stream yields io.EOF.
func NewReader(r io.Reader, compressed bool) (*Reader, error) {
	out := &Reader{}
	if compressed {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		out.closer = append(out.closer, gz)
		r = gz
	}
	out.csv = newCSVReader(r)
	header, err := out.csv.Read()
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	out.header = header
	return out, nil
}

// Open opens a file for reading. The caller must Close the reader.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(file, IsCompressed(path))
	if err != nil {
		_ = file.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", path)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = append(r.closer, file)
	return r, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// Header returns the header row.
func (r *Reader) Header() []string {
	return append([]string(nil), r.header...)
}

// Next returns the next row or io.EOF.
func (r *Reader) Next() ([]string, error) {
	return r.csv.Read()
}

// Each calls fn for every remaining row.
func (r *Reader) Each(fn func(row []string) error) error {
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// Close releases the underlying stream.
func (r *Reader) Close() error {
	var first error
	for _, c := range r.closer {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closer = nil
	return first
}

// ReadFile loads a whole artifact into memory.
func ReadFile(path string) ([]string, [][]string, error) {
	r, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()
	var rows [][]string
	err = r.Each(func(row []string) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return r.Header(), rows, nil
}

// Writer emits tab-separated rows.
type Writer struct {
	csv *csv.Writer
	gz  *gzip.Writer
}

// NewWriter wraps w, compressing when compressed is set.
func NewWriter(w io.Writer, compressed bool) *Writer {
	out := &Writer{}
	if compressed {
		out.gz = gzip.NewWriter(w)
		w = out.gz
	}
	out.csv = csv.NewWriter(w)
	out.csv.Comma = '\t'
	return out
}

// Write emits one row.
func (w *Writer) Write(fields ...string) error {
	return w.csv.Write(fields)
}

// Close flushes buffered rows and finishes the gzip stream. It does not close
// the wrapped writer.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	if w.gz != nil {
		return w.gz.Close()
	}
	return nil
}

// WriteFile atomically writes header followed by whatever rows emits.
func WriteFile(path string, header []string, rows func(emit func(fields ...string) error) error) error {
	return fileutil.WriteAtomic(path, 0o644, func(out io.Writer) error {
		w := NewWriter(out, IsCompressed(path))
		if err := w.Write(header...); err != nil {
			return err
		}
		if err := rows(w.Write); err != nil {
			return err
		}
		return w.Close()
	})
}
