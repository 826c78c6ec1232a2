package workflow

import (
	"context"
	"testing"

	"xrefcanon/internal/config"
	"xrefcanon/internal/testsupport"
)

// seedSources writes a small two-namespace corpus:
//
//	hgnc:5 has alternate hgnc:500 and cross-references ncbigene:1 and ensembl:E1
//	hgnc:6 is labelled but has no evidence
//	ncbigene:1 is labelled "A1BG", sharing a label with hgnc:5
func seedSources(t *testing.T, cfg *config.Config) {
	t.Helper()
	root := cfg.Paths.SourceDir
	testsupport.WriteSourceVersion(t, root, "hgnc", "2024-01")
	testsupport.WriteSourceTable(t, root, "hgnc", "alts.tsv", []string{"hgnc_id", "alt_id"}, []string{"5", "500"})
	testsupport.WriteSourceTable(t, root, "hgnc", "xrefs.tsv", []string{"hgnc_id", "xref_prefix", "xref_id"},
		[]string{"5", "NCBIGene", "1"},
		[]string{"5", "ensembl", "E1"},
	)
	testsupport.WriteSourceTable(t, root, "hgnc", "names.tsv", []string{"hgnc_id", "name"},
		[]string{"5", "A1BG"},
		[]string{"6", "A2M"},
	)
	testsupport.WriteSourceTable(t, root, "ncbigene", "names.tsv", []string{"ncbigene_id", "name"}, []string{"1", "a1bg"})
	testsupport.WriteSourceTable(t, root, "mgi", "names.tsv", []string{"mgi_id", "name"}, []string{"M9", "A2M"})
}

func newTestManager(t *testing.T, opts ...testsupport.ConfigOption) (*Manager, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	seedSources(t, cfg)
	mgr, err := NewManager(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return mgr, cfg
}
