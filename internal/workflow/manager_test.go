package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xrefcanon/internal/curie"
	"xrefcanon/internal/dump"
	"xrefcanon/internal/mappingdb"
	"xrefcanon/internal/testsupport"
)

func TestCanonicalizeElectsPreferredIdentifier(t *testing.T) {
	mgr, _ := newTestManager(t)

	res, err := mgr.Canonicalize(context.Background(), Request{SkipPreflight: true})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	hgnc5 := curie.New("hgnc", "5")
	for _, c := range []curie.CURIE{
		curie.New("hgnc", "500"),
		curie.New("ncbigene", "1"),
		curie.New("ensembl", "E1"),
		hgnc5,
	} {
		if got := res.Mapping.Canonical(c); got != hgnc5 {
			t.Fatalf("Canonical(%s) = %s, want %s", c, got, hgnc5)
		}
	}
	if got := res.Mapping.Canonical(curie.New("hgnc", "6")); got != curie.New("hgnc", "6") {
		t.Fatalf("labelled singleton resolved to %s", got)
	}
	if got := res.Mapping.Canonical(curie.New("mgi", "M9")); got != curie.New("mgi", "M9") {
		t.Fatalf("synonym edge merged without include_synonyms: %s", got)
	}
	if len(res.Namespaces) != 3 || res.MinTrust != 1.0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCanonicalizeIncludeSynonymsMergesSharedLabels(t *testing.T) {
	mgr, _ := newTestManager(t)

	res, err := mgr.Canonicalize(context.Background(), Request{SkipPreflight: true, IncludeSynonyms: true})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if res.MinTrust != 0.5 {
		t.Fatalf("MinTrust = %v", res.MinTrust)
	}
	if got := res.Mapping.Canonical(curie.New("mgi", "M9")); got != curie.New("hgnc", "6") {
		t.Fatalf("mgi:M9 resolved to %s, want hgnc:6", got)
	}
}

func TestCanonicalizeWritesDumpAndDatabase(t *testing.T) {
	mgr, cfg := newTestManager(t)
	ctx := context.Background()

	res, err := mgr.Canonicalize(ctx, Request{SkipPreflight: true, Dump: true, SaveDB: true, RunID: "run-42"})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if res.Dump == nil || res.Dump.Rows != res.Mapping.Len() {
		t.Fatalf("unexpected dump %+v", res.Dump)
	}
	raw, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, StatsFile))
	if err != nil {
		t.Fatalf("read stats: %v", err)
	}
	var stats Result
	if err := json.Unmarshal(raw, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.RunID != "run-42" || stats.Stats.Identifiers != res.Mapping.Len() {
		t.Fatalf("unexpected stats %+v", stats)
	}

	store, err := mappingdb.Open(ctx, cfg.MappingDB.Driver, cfg.MappingDSN())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	got, err := store.Lookup(ctx, curie.New("ensembl", "E1"))
	if err != nil || got != curie.New("hgnc", "5") {
		t.Fatalf("db Lookup = %v, %v", got, err)
	}

	st, err := mgr.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.LastRun == nil || st.LastRun.RunID != "run-42" {
		t.Fatalf("status last run = %+v", st.LastRun)
	}
	if len(st.Cache) == 0 || st.Registry != "offline" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestCanonicalizeFailsPreflightWithoutSources(t *testing.T) {
	mgr, cfg := newTestManager(t)
	if err := os.RemoveAll(cfg.Paths.SourceDir); err != nil {
		t.Fatal(err)
	}
	_, err := mgr.Canonicalize(context.Background(), Request{})
	if err == nil || !strings.Contains(err.Error(), "Source directory") {
		t.Fatalf("expected source directory preflight failure, got %v", err)
	}
}

func TestCanonicalizeHonorsCancellation(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := mgr.Canonicalize(ctx, Request{SkipPreflight: true}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestDumpWritesResourceExports(t *testing.T) {
	mgr, cfg := newTestManager(t)

	results, err := mgr.Dump(context.Background(), DumpRequest{})
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 dumps, got %d", len(results))
	}
	byName := map[string]dump.Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	if byName[dump.NamesDump].Rows != 4 || byName[dump.AltsDump].Rows != 1 || byName[dump.XrefsDump].Rows != 2 {
		t.Fatalf("unexpected row counts %+v", byName)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "xrefs_sample.tsv")); err != nil {
		t.Fatalf("xrefs sample missing: %v", err)
	}
}

func TestDumpRejectsUnknownKind(t *testing.T) {
	mgr, _ := newTestManager(t)
	if _, err := mgr.Dump(context.Background(), DumpRequest{Kinds: []string{"bogus"}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestDumpRemappingRunsBuild(t *testing.T) {
	mgr, _ := newTestManager(t)
	results, err := mgr.Dump(context.Background(), DumpRequest{Kinds: []string{dump.RemappingDump}})
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if len(results) != 1 || results[0].Rows == 0 {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestNamespacesNormalizesAndDedupes(t *testing.T) {
	mgr, _ := newTestManager(t)
	got, err := mgr.Namespaces(context.Background(), []string{"HGNC", "hgnc", "EntrezGene"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "hgnc,ncbigene" {
		t.Fatalf("Namespaces = %v", got)
	}
}

func TestCanonicalizeFollowsConfiguredPriority(t *testing.T) {
	mgr, _ := newTestManager(t, testsupport.WithPriority("ncbigene", "hgnc"))

	res, err := mgr.Canonicalize(context.Background(), Request{SkipPreflight: true})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	want := curie.New("ncbigene", "1")
	if got := res.Mapping.Canonical(curie.New("hgnc", "500")); got != want {
		t.Fatalf("Canonical(hgnc:500) = %s, want %s", got, want)
	}
	if len(res.Stats.Unranked) == 0 {
		t.Fatalf("expected unranked namespaces in stats, got %+v", res.Stats)
	}
}

func TestCanonicalizeLowConfiguredTrustAdmitsSynonyms(t *testing.T) {
	mgr, _ := newTestManager(t, testsupport.WithMinTrust(0.5))

	res, err := mgr.Canonicalize(context.Background(), Request{SkipPreflight: true})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if got := res.Mapping.Canonical(curie.New("mgi", "M9")); got != curie.New("hgnc", "6") {
		t.Fatalf("mgi:M9 resolved to %s, want hgnc:6", got)
	}
}

func TestNamespacesStrictRejectsUnknown(t *testing.T) {
	mgr, _ := newTestManager(t, testsupport.WithStrict())

	_, err := mgr.Namespaces(context.Background(), []string{"hgnc", "not-a-registry"})
	var unknown *curie.UnknownNamespaceError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownNamespaceError, got %v", err)
	}
}
