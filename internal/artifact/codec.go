package artifact

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"

	"xrefcanon/internal/tabular"
)

// ErrHeaderMismatch reports an artifact written under a different header. The
// manager treats it as a cache miss.
var ErrHeaderMismatch = errors.New("artifact header mismatch")

// Codec serializes one payload type under a header row.
type Codec[T any] interface {
	Encode(w io.Writer, header []string, value T) error
	// Decode must return ErrHeaderMismatch before reading the payload when
	// the stored header differs from header.
	Decode(r io.Reader, header []string) (T, error)
}

func checkHeader(got, want []string) error {
	if !slices.Equal(got, want) {
		return fmt.Errorf("%w: have %v, want %v", ErrHeaderMismatch, got, want)
	}
	return nil
}

// MappingCodec stores a functional two-column map, one row per key, sorted.
type MappingCodec struct{}

func (MappingCodec) Encode(w io.Writer, header []string, value map[string]string) error {
	tw := tabular.NewWriter(w, false)
	if err := tw.Write(header...); err != nil {
		return err
	}
	for _, key := range sortedKeys(value) {
		if err := tw.Write(key, value[key]); err != nil {
			return err
		}
	}
	return tw.Close()
}

func (MappingCodec) Decode(r io.Reader, header []string) (map[string]string, error) {
	tr, err := tabular.NewReader(r, false)
	if err != nil {
		return nil, err
	}
	if err := checkHeader(tr.Header(), header); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	err = tr.Each(func(row []string) error {
		if len(row) < 2 {
			return fmt.Errorf("short row %v", row)
		}
		out[row[0]] = row[1]
		return nil
	})
	return out, err
}

// MultiMappingCodec stores key to many values, one row per pair.
type MultiMappingCodec struct{}

func (MultiMappingCodec) Encode(w io.Writer, header []string, value map[string][]string) error {
	tw := tabular.NewWriter(w, false)
	if err := tw.Write(header...); err != nil {
		return err
	}
	for _, key := range sortedKeys(value) {
		for _, v := range value[key] {
			if err := tw.Write(key, v); err != nil {
				return err
			}
		}
	}
	return tw.Close()
}

func (MultiMappingCodec) Decode(r io.Reader, header []string) (map[string][]string, error) {
	tr, err := tabular.NewReader(r, false)
	if err != nil {
		return nil, err
	}
	if err := checkHeader(tr.Header(), header); err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	err = tr.Each(func(row []string) error {
		if len(row) < 2 {
			return fmt.Errorf("short row %v", row)
		}
		out[row[0]] = append(out[row[0]], row[1])
		return nil
	})
	return out, err
}

// RowsCodec stores an ordered table whose width equals the header width.
type RowsCodec struct{}

func (RowsCodec) Encode(w io.Writer, header []string, rows [][]string) error {
	tw := tabular.NewWriter(w, false)
	if err := tw.Write(header...); err != nil {
		return err
	}
	for _, row := range rows {
		if err := tw.Write(row...); err != nil {
			return err
		}
	}
	return tw.Close()
}

func (RowsCodec) Decode(r io.Reader, header []string) ([][]string, error) {
	tr, err := tabular.NewReader(r, false)
	if err != nil {
		return nil, err
	}
	if err := checkHeader(tr.Header(), header); err != nil {
		return nil, err
	}
	var rows [][]string
	err = tr.Each(func(row []string) error {
		if len(row) != len(header) {
			return fmt.Errorf("row width %d, want %d", len(row), len(header))
		}
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

// JSONCodec stores the header as a JSON array on the first line followed by
// the JSON payload.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(w io.Writer, header []string, value T) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(header); err != nil {
		return err
	}
	return enc.Encode(value)
}

func (JSONCodec[T]) Decode(r io.Reader, header []string) (T, error) {
	var zero T
	dec := json.NewDecoder(bufio.NewReader(r))
	var got []string
	if err := dec.Decode(&got); err != nil {
		return zero, fmt.Errorf("decode header: %w", err)
	}
	if err := checkHeader(got, header); err != nil {
		return zero, err
	}
	var value T
	if err := dec.Decode(&value); err != nil {
		return zero, fmt.Errorf("decode payload: %w", err)
	}
	return value, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
