package tabular

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteFileRoundTrip(t *testing.T) {
	for _, name := range []string{"plain.tsv", "packed.tsv.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			rows := [][]string{{"5", "500"}, {"5", "501"}, {"7", `has "quotes"`}}
			err := WriteFile(path, []string{"hgnc_id", "alt_id"}, func(emit func(...string) error) error {
				for _, row := range rows {
					if err := emit(row...); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				t.Fatalf("WriteFile: %v", err)
			}

			header, got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if !reflect.DeepEqual(header, []string{"hgnc_id", "alt_id"}) {
				t.Fatalf("header = %v", header)
			}
			if !reflect.DeepEqual(got, rows) {
				t.Fatalf("rows = %v, want %v", got, rows)
			}
		})
	}
}

func TestCompressedFileIsGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.tsv.gz")
	if err := WriteFile(path, []string{"a"}, func(func(...string) error) error { return nil }); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		t.Fatalf("expected gzip magic, got % x", raw[:2])
	}
}

func TestOpenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tsv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestReaderToleratesRaggedRows(t *testing.T) {
	r, err := NewReader(bytes.NewBufferString("a\tb\n1\n2\t3\t4\n"), false)
	if err != nil {
		t.Fatal(err)
	}
	first, _ := r.Next()
	second, _ := r.Next()
	if len(first) != 1 || len(second) != 3 {
		t.Fatalf("unexpected widths %d, %d", len(first), len(second))
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}
