package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"xrefcanon/internal/tabular"
)

// Table file names inside a namespace directory. Each may also be gzip
// compressed with a .gz suffix.
const (
	AltsFile     = "alts.tsv"
	XrefsFile    = "xrefs.tsv"
	SpeciesFile  = "species.tsv"
	NamesFile    = "names.tsv"
	SynonymsFile = "synonyms.tsv"
	VersionFile  = "VERSION"
)

var _ Source = (*Dir)(nil)

// Dir reads tables laid out as <root>/<namespace>/<table>.tsv[.gz]. A missing
// table means the namespace has no rows of that kind. Xref tables carry
// id, target namespace, target id and an optional provenance column.
type Dir struct {
	root   string
	prefix func(string) string
}

// DirOption customizes a directory source.
type DirOption func(*Dir)

// WithPrefixResolver maps the target namespace column of xref tables to a
// namespace key before FilteredXrefs compares it. Without one the column
// must already hold the key.
func WithPrefixResolver(fn func(string) string) DirOption {
	return func(d *Dir) {
		d.prefix = fn
	}
}

// NewDir returns a directory source.
func NewDir(root string, opts ...DirOption) *Dir {
	d := &Dir{root: root}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Root returns the source directory.
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) nsDir(ns string) (string, error) {
	dir := filepath.Join(d.root, ns)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNamespaceNotFound, ns)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrNamespaceNotFound, dir)
	}
	return dir, nil
}

// table returns the path of a table, preferring the plain file. ok is false
// when neither variant exists.
func (d *Dir) table(ns, name string) (string, bool, error) {
	dir, err := d.nsDir(ns)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{name, name + ".gz"} {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path, true, nil
		}
	}
	return "", false, nil
}

func (d *Dir) each(ctx context.Context, ns, name string, minWidth int, fn func(row []string)) error {
	path, ok, err := d.table(ns, name)
	if err != nil || !ok {
		return err
	}
	r, err := tabular.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	line := 1
	return r.Each(func(row []string) error {
		line++
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if len(row) < minWidth {
			return fmt.Errorf("%s:%d: expected %d columns, got %d", path, line, minWidth, len(row))
		}
		fn(row)
		return nil
	})
}

func (d *Dir) Namespaces(context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			out = append(out, entry.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func (d *Dir) Version(_ context.Context, ns string) (string, error) {
	dir, err := d.nsDir(ns)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(filepath.Join(dir, VersionFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func (d *Dir) IDAlts(ctx context.Context, ns string) (map[string][]string, error) {
	out := make(map[string][]string)
	err := d.each(ctx, ns, AltsFile, 2, func(row []string) {
		out[row[0]] = append(out[row[0]], row[1])
	})
	return out, err
}

func (d *Dir) Xrefs(ctx context.Context, ns string) ([]XrefRow, error) {
	var out []XrefRow
	err := d.each(ctx, ns, XrefsFile, 3, func(row []string) {
		xr := XrefRow{SourceNS: ns, SourceID: row[0], TargetNS: row[1], TargetID: row[2], Provenance: ns}
		if len(row) > 3 && row[3] != "" {
			xr.Provenance = row[3]
		}
		out = append(out, xr)
	})
	return out, err
}

func (d *Dir) FilteredXrefs(ctx context.Context, ns, target string) (map[string]string, error) {
	out := make(map[string]string)
	err := d.each(ctx, ns, XrefsFile, 3, func(row []string) {
		prefix := row[1]
		if d.prefix != nil {
			prefix = d.prefix(prefix)
		}
		if prefix == target {
			out[row[0]] = row[2]
		}
	})
	return out, err
}

func (d *Dir) Species(ctx context.Context, ns string) (map[string]string, error) {
	return d.mapping(ctx, ns, SpeciesFile)
}

func (d *Dir) Names(ctx context.Context, ns string) (map[string]string, error) {
	return d.mapping(ctx, ns, NamesFile)
}

func (d *Dir) Synonyms(ctx context.Context, ns string) (map[string][]string, error) {
	out := make(map[string][]string)
	err := d.each(ctx, ns, SynonymsFile, 2, func(row []string) {
		out[row[0]] = append(out[row[0]], row[1])
	})
	return out, err
}

func (d *Dir) mapping(ctx context.Context, ns, name string) (map[string]string, error) {
	out := make(map[string]string)
	err := d.each(ctx, ns, name, 2, func(row []string) {
		out[row[0]] = row[1]
	})
	return out, err
}
