package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"xrefcanon/internal/tabular"
)

// WriteTable writes a tab-separated table with a header row. A .gz suffix
// produces a gzip file.
func WriteTable(t testing.TB, path string, header []string, rows ...[]string) {
	t.Helper()

	err := tabular.WriteFile(path, header, func(emit func(...string) error) error {
		for _, row := range rows {
			if err := emit(row...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("write table %s: %v", path, err)
	}
}

// WriteSourceTable writes <root>/<ns>/<name> for a directory source.
func WriteSourceTable(t testing.TB, root, ns, name string, header []string, rows ...[]string) {
	t.Helper()
	WriteTable(t, filepath.Join(root, ns, name), header, rows...)
}

// WriteSourceVersion writes <root>/<ns>/VERSION.
func WriteSourceVersion(t testing.TB, root, ns, version string) {
	t.Helper()

	dir := filepath.Join(root, ns)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "VERSION"), []byte(version+"\n"), 0o644); err != nil {
		t.Fatalf("write version: %v", err)
	}
}
