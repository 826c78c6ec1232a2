package curie

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		ref     string
		want    CURIE
		wantErr bool
	}{
		{ref: "HGNC:5", want: CURIE{"HGNC", "5"}},
		{ref: " go:GO:0000001 ", want: CURIE{"go", "GO:0000001"}},
		{ref: "chebi", wantErr: true},
		{ref: ":5", wantErr: true},
		{ref: "hgnc:", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := Parse(tt.ref)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedCURIE) {
					t.Fatalf("expected ErrMalformedCURIE, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Parse = %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.want.Namespace+":"+tt.want.Identifier {
				t.Fatalf("String = %q", got.String())
			}
		})
	}
}

func TestSynonymTableVariety(t *testing.T) {
	table := NewSynonymTable()
	table.AddVariety("Gene Ontology", "go")
	table.AddVariety("NCBI_Gene", "ncbigene")

	for _, spelling := range []string{
		"Gene Ontology", "gene ontology", "GENE ONTOLOGY", "Gene_Ontology",
		"gene_ontology", "GeneOntology", "geneontology", "GENEONTOLOGY",
		"NCBI_Gene", "ncbi gene", "NCBI GENE", "ncbi_gene",
	} {
		if _, ok := table.Lookup(spelling); !ok {
			t.Errorf("expected %q to resolve", spelling)
		}
	}
	if key, _ := table.Lookup("gEnE oNtOlOgY"); key != "go" {
		t.Errorf("case-folded retry failed, got %q", key)
	}
	if _, ok := table.Lookup("mesh"); ok {
		t.Error("unexpected hit for unregistered spelling")
	}
}

func TestSynonymTableLaterWins(t *testing.T) {
	table := NewSynonymTable()
	table.AddVariety("uniprot", "uniprot")
	table.AddVariety("UniProt", "uniprot.isoform")
	if key, _ := table.Lookup("uniprot"); key != "uniprot.isoform" {
		t.Fatalf("expected later registration to win, got %q", key)
	}
	if got := table.Keys(); len(got) != 1 || got[0] != "uniprot.isoform" {
		t.Fatalf("Keys = %v", got)
	}
}

func TestNormalizerStrict(t *testing.T) {
	table := NewSynonymTable()
	table.AddVariety("HGNC", "hgnc")
	n := NewNormalizer(table, true)

	got, err := n.Normalize("HGNC:5")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != (CURIE{"hgnc", "5"}) {
		t.Fatalf("Normalize = %+v", got)
	}

	_, err = n.Normalize("madeup:1")
	var unknown *UnknownNamespaceError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownNamespaceError, got %v", err)
	}
	if unknown.Namespace != "madeup" {
		t.Fatalf("unexpected namespace in error: %q", unknown.Namespace)
	}
}

func TestNormalizerPermissive(t *testing.T) {
	n := NewNormalizer(nil, false)
	got, err := n.Normalize("MadeUp:1")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.Namespace != "MadeUp" {
		t.Fatalf("permissive mode should leave namespace unchanged, got %q", got.Namespace)
	}
	if _, err := n.Normalize("no-delimiter"); !errors.Is(err, ErrMalformedCURIE) {
		t.Fatalf("expected ErrMalformedCURIE, got %v", err)
	}
}
