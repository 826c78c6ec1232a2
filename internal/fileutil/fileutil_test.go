package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "nested", "out.tsv")

	err := WriteAtomic(dst, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, "a\tb\n")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a\tb\n" {
		t.Fatalf("content mismatch: got %q", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(dst))
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteAtomicFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.tsv")
	if err := os.WriteFile(dst, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("producer failed")
	err := WriteAtomic(dst, 0o644, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected producer error, got %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "previous" {
		t.Fatalf("previous content clobbered: %q", got)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if IsTempFile(e.Name()) {
			t.Fatalf("temp file %s left behind", e.Name())
		}
	}
}

func TestSweepTempFiles(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "alt_ids.tsv")
	stale := filepath.Join(dir, "sub", "alt_ids.tsv"+TempMarker+"123")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{keep, stale} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	n, err := SweepTempFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("removed %d files, want 1", n)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("kept file removed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale temp file still present: %v", err)
	}
}

func TestSweepTempFilesMissingRoot(t *testing.T) {
	n, err := SweepTempFiles(filepath.Join(t.TempDir(), "absent"))
	if err != nil || n != 0 {
		t.Fatalf("SweepTempFiles on missing root = %d, %v", n, err)
	}
}
