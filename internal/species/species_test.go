package species

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"xrefcanon/internal/alts"
	"xrefcanon/internal/artifact"
	"xrefcanon/internal/catalog"
	"xrefcanon/internal/source"
	"xrefcanon/internal/testsupport"
)

func newLookup(t *testing.T) (*Lookup, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cat := catalog.New(nil, artifact.NewManager(cfg.Paths.CacheDir, nil, nil), nil, source.NewDir(cfg.Paths.SourceDir), cfg, nil)
	return New(cat, alts.New(cat)), cfg.Paths.SourceDir
}

func TestSpeciesResolvesPrimary(t *testing.T) {
	l, dir := newLookup(t)
	testsupport.WriteSourceTable(t, dir, "mgi", source.AltsFile, []string{"id", "alt_id"}, []string{"87853", "1000"})
	testsupport.WriteSourceTable(t, dir, "mgi", source.SpeciesFile, []string{"id", "species"}, []string{"87853", "10090"})
	ctx := context.Background()

	taxon, ok, err := l.Species(ctx, "mgi", "1000")
	if err != nil || !ok || taxon != "10090" {
		t.Fatalf("Species(alt) = %q, %v, %v", taxon, ok, err)
	}
	taxon, ok, err = l.Species(ctx, "mgi", "87853")
	if err != nil || !ok || taxon != "10090" {
		t.Fatalf("Species(primary) = %q, %v, %v", taxon, ok, err)
	}
}

func TestSpeciesMissingIsNotAnError(t *testing.T) {
	l, dir := newLookup(t)
	testsupport.WriteSourceTable(t, dir, "ncbigene", source.SpeciesFile, []string{"id", "species"}, []string{"1", "9606"})
	taxon, ok, err := l.Species(context.Background(), "ncbigene", "2")
	if err != nil || ok || taxon != "" {
		t.Fatalf("Species = %q, %v, %v", taxon, ok, err)
	}
}

func TestSpeciesNamespaceWithoutSourceData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	cat := catalog.New(nil, artifact.NewManager(cfg.Paths.CacheDir, nil, nil), nil, source.NewDir(cfg.Paths.SourceDir), cfg, logger)
	l := New(cat, alts.New(cat))
	ctx := context.Background()

	for _, id := range []string{"87853", "1000"} {
		taxon, ok, err := l.Species(ctx, "mgi", id)
		if err != nil || ok || taxon != "" {
			t.Fatalf("Species(mgi:%s) = %q, %v, %v", id, taxon, ok, err)
		}
	}
	if n := strings.Count(buf.String(), "species_namespace_missing"); n != 1 {
		t.Fatalf("expected one missing-namespace warning, got %d in %s", n, buf.String())
	}
}

func TestSpeciesMappingIsACopy(t *testing.T) {
	l, dir := newLookup(t)
	testsupport.WriteSourceTable(t, dir, "ncbigene", source.SpeciesFile, []string{"id", "species"}, []string{"1", "9606"})
	ctx := context.Background()

	first, err := l.Mapping(ctx, "ncbigene", false)
	if err != nil {
		t.Fatalf("Mapping: %v", err)
	}
	first["1"] = "0"
	taxon, ok, err := l.Species(ctx, "ncbigene", "1")
	if err != nil || !ok || taxon != "9606" {
		t.Fatalf("Species after caller edit = %q, %v, %v", taxon, ok, err)
	}
}

func TestSpeciesUnsupportedNamespace(t *testing.T) {
	l, _ := newLookup(t)
	_, _, err := l.Species(context.Background(), "uniprot", "P12345")
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
