package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"xrefcanon/internal/artifact"
)

func newRegistryServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		switch {
		case r.URL.Path == "/miriam" && r.URL.Query().Get("page") == "":
			fmt.Fprintf(w, `{"_embedded":{"namespaces":[{"prefix":"hgnc","name":"HGNC"}]},"_links":{"next":{"href":"%s/miriam?page=2"}}}`, srv.URL)
		case r.URL.Path == "/miriam":
			_, _ = w.Write([]byte(`{"_embedded":{"namespaces":[{"prefix":"ncbigene","name":"Entrez Gene"}]},"_links":{}}`))
		case r.URL.Path == "/ols":
			_, _ = w.Write([]byte(`{"_embedded":{"ontologies":[{"ontologyId":"doid","config":{"title":"Human Disease Ontology","namespace":"disease_ontology"}}]}}`))
		case r.URL.Path == "/obo":
			_, _ = w.Write([]byte("ontologies:\n  - id: mondo\n    title: Mondo Disease Ontology\n    browsers:\n      - label: x\n    products:\n      - id: mondo.owl\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithHTTPClient(srv.Client()),
		WithURLs(srv.URL+"/miriam", srv.URL+"/ols", srv.URL+"/obo"),
	}
	return New(artifact.NewManager(t.TempDir(), nil, nil), append(base, opts...)...)
}

func TestFetchPaginatedFollowsNextLinks(t *testing.T) {
	srv := newRegistryServer(t, nil)
	client := newTestClient(t, srv)

	items, err := client.FetchPaginated(context.Background(), srv.URL+"/miriam", "namespaces")
	if err != nil {
		t.Fatalf("FetchPaginated: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items across pages, got %d", len(items))
	}
}

func TestFetchPaginatedReportsStatus(t *testing.T) {
	srv := newRegistryServer(t, nil)
	client := newTestClient(t, srv)

	if _, err := client.FetchPaginated(context.Background(), srv.URL+"/missing", "namespaces"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestMIRIAMIsCached(t *testing.T) {
	var hits int32
	srv := newRegistryServer(t, &hits)
	client := newTestClient(t, srv)

	for i := 0; i < 2; i++ {
		entries, err := client.MIRIAM(context.Background(), false)
		if err != nil {
			t.Fatalf("MIRIAM: %v", err)
		}
		if len(entries) != 2 || entries[1].Prefix != "ncbigene" {
			t.Fatalf("unexpected entries %+v", entries)
		}
	}
	if hits != 2 {
		t.Fatalf("expected one paginated fetch (2 requests), got %d", hits)
	}
}

func TestOBOFoundryStripsBulkyKeys(t *testing.T) {
	srv := newRegistryServer(t, nil)
	client := newTestClient(t, srv)

	entries, err := client.OBOFoundry(context.Background(), false)
	if err != nil {
		t.Fatalf("OBOFoundry: %v", err)
	}
	if len(entries) != 1 || entries[0].ID() != "mondo" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	for _, key := range oboDroppedKeys {
		if _, ok := entries[0][key]; ok {
			t.Fatalf("expected %q to be stripped", key)
		}
	}
}

func TestOfflineWithoutCacheFails(t *testing.T) {
	srv := newRegistryServer(t, nil)
	client := newTestClient(t, srv, WithOffline(true))

	if _, err := client.OLS(context.Background(), false); !errors.Is(err, ErrOffline) {
		t.Fatalf("expected ErrOffline, got %v", err)
	}
}

func TestNamespaceSynonymsMergesSources(t *testing.T) {
	srv := newRegistryServer(t, nil)
	client := newTestClient(t, srv)

	table, err := client.NamespaceSynonyms(context.Background(), []ConfiguredNamespace{
		{Key: "hgnc", Synonyms: []string{"HUGO"}},
	})
	if err != nil {
		t.Fatalf("NamespaceSynonyms: %v", err)
	}
	cases := map[string]string{
		"Entrez Gene":            "ncbigene",
		"entrez_gene":            "ncbigene",
		"disease_ontology":       "doid",
		"Mondo Disease Ontology": "mondo",
		"UniProtKB":              "uniprot",
		"hugo":                   "hgnc",
	}
	for spelling, want := range cases {
		got, ok := table.Lookup(spelling)
		if !ok || got != want {
			t.Fatalf("Lookup(%q) = %q, %v; want %q", spelling, got, ok, want)
		}
	}
}

func TestNamespaceSynonymsOfflineUsesMetaregistry(t *testing.T) {
	srv := newRegistryServer(t, nil)
	client := newTestClient(t, srv, WithOffline(true))

	table, err := client.NamespaceSynonyms(context.Background(), nil)
	if err != nil {
		t.Fatalf("NamespaceSynonyms: %v", err)
	}
	if got, ok := table.Lookup("EntrezGene"); !ok || got != "ncbigene" {
		t.Fatalf("Lookup(EntrezGene) = %q, %v", got, ok)
	}
}
