package catalog_test

import (
	"context"
	"path/filepath"
	"testing"

	"xrefcanon/internal/artifact"
	"xrefcanon/internal/catalog"
	"xrefcanon/internal/config"
	"xrefcanon/internal/source"
	"xrefcanon/internal/testsupport"
)

func TestVersionPrefersConfiguredValue(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithNamespace("go", config.Namespace{Version: "pinned"}))
	testsupport.WriteSourceVersion(t, cfg.Paths.SourceDir, "go", "2024-01-01")
	testsupport.WriteSourceVersion(t, cfg.Paths.SourceDir, "mesh", "2025")

	cat := catalog.New(nil, artifact.NewManager(cfg.Paths.CacheDir, nil, nil), nil, source.NewDir(cfg.Paths.SourceDir), cfg, nil)
	ctx := context.Background()

	if v, err := cat.Version(ctx, "go"); err != nil || v != "pinned" {
		t.Fatalf("Version(go) = %q, %v", v, err)
	}
	path, err := cat.Path(ctx, "mesh", "alt_ids.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cfg.Paths.CacheDir, "mesh", "2025", "alt_ids.tsv"); path != want {
		t.Fatalf("Path = %q, want %q", path, want)
	}
}

func TestVersionUnknownNamespaceFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := catalog.New(nil, artifact.NewManager(cfg.Paths.CacheDir, nil, nil), nil, source.NewDir(cfg.Paths.SourceDir), cfg, nil)
	if _, err := cat.Version(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for namespace missing from source")
	}
}
