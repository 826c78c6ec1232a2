package mappingdb

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"xrefcanon/internal/canon"
	"xrefcanon/internal/curie"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "mapping.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	hgnc := curie.New("hgnc", "5")
	mapping := canon.NewMapping(map[curie.CURIE]curie.CURIE{
		curie.New("ncbigene", "1"): hgnc,
		curie.New("ensembl", "E1"): hgnc,
		hgnc:                       hgnc,
	})

	run, err := store.Save(ctx, "run-1", mapping)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if run.Identifiers != 3 || run.Classes != 1 {
		t.Fatalf("unexpected run %+v", run)
	}

	got, err := store.Lookup(ctx, curie.New("ncbigene", "1"))
	if err != nil || got != hgnc {
		t.Fatalf("Lookup = %v, %v", got, err)
	}
	members, err := store.Members(ctx, hgnc)
	if err != nil {
		t.Fatal(err)
	}
	want := []curie.CURIE{curie.New("ensembl", "E1"), hgnc, curie.New("ncbigene", "1")}
	if !reflect.DeepEqual(members, want) {
		t.Fatalf("Members = %v, want %v", members, want)
	}

	latest, ok, err := store.LatestRun(ctx)
	if err != nil || !ok || latest.RunID != "run-1" {
		t.Fatalf("LatestRun = %+v, %v, %v", latest, ok, err)
	}
}

func TestSaveReplacesPreviousMapping(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	first := canon.NewMapping(map[curie.CURIE]curie.CURIE{curie.New("mesh", "D1"): curie.New("doid", "1")})
	second := canon.NewMapping(map[curie.CURIE]curie.CURIE{curie.New("mesh", "D2"): curie.New("doid", "2")})

	if _, err := store.Save(ctx, "a", first); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, "b", second); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Lookup(ctx, curie.New("mesh", "D1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for replaced row, got %v", err)
	}
}

func TestBindNumbersPlaceholdersForPostgres(t *testing.T) {
	s := &Store{driver: DriverPostgres}
	if got := s.bind("INSERT INTO t VALUES (?, ?)"); got != "INSERT INTO t VALUES ($1, $2)" {
		t.Fatalf("bind = %q", got)
	}
	s.driver = DriverSQLite
	if got := s.bind("SELECT ?"); got != "SELECT ?" {
		t.Fatalf("bind = %q", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x"); err == nil {
		t.Fatal("expected error")
	}
}
