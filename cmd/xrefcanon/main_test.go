package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"xrefcanon/internal/workflow"
)

func TestNormalizeCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"--json", "normalize", "EntrezGene:1", "HGNC"}, env.configPath)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var rows []lookupRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if rows[0].Result != "ncbigene:1" {
		t.Fatalf("expected ncbigene:1, got %q", rows[0].Result)
	}
	if rows[1].Result != "hgnc" {
		t.Fatalf("expected hgnc, got %q", rows[1].Result)
	}
}

func TestNormalizeCommandRejectsMalformed(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"normalize", ":1"}, env.configPath); err == nil {
		t.Fatal("expected error for empty namespace")
	}
}

func TestPrimaryCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"primary", "hgnc:500", "hgnc:5"}, env.configPath)
	if err != nil {
		t.Fatalf("primary: %v", err)
	}
	requireContains(t, out, "hgnc:500")
	requireContains(t, out, "Primary")
	var rows []lookupRow
	out, _, err = runCLI(t, []string{"--json", "primary", "hgnc:500"}, env.configPath)
	if err != nil {
		t.Fatalf("primary --json: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Result != "hgnc:5" {
		t.Fatalf("expected hgnc:5, got %+v", rows)
	}
}

func TestXrefCommandFlip(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"--json", "xref", "hgnc:1", "ncbigene", "--flip"}, env.configPath)
	if err != nil {
		t.Fatalf("xref: %v", err)
	}
	var rows []lookupRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || !rows[0].Found || rows[0].Result != "hgnc:5" {
		t.Fatalf("expected hgnc:5, got %+v", rows)
	}
}

func TestCanonicalizeCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"--json", "canonicalize", "--dump", "--db"}, env.configPath)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	var res workflow.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.Stats.Identifiers == 0 || res.Stats.Classes == 0 {
		t.Fatalf("expected identifiers and classes, got %+v", res.Stats)
	}
	if res.Dump == nil {
		t.Fatal("expected dump result")
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, workflow.StatsFile)); err != nil {
		t.Fatalf("expected stats file: %v", err)
	}
	if res.Database == nil || res.Database.Identifiers != res.Stats.Identifiers {
		t.Fatalf("expected database run matching stats, got %+v", res.Database)
	}

	out, _, err = runCLI(t, []string{"--json", "db", "lookup", "NCBIGene:1", "hgnc:404"}, env.configPath)
	if err != nil {
		t.Fatalf("db lookup: %v", err)
	}
	var rows []lookupRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 || rows[0].Result != "hgnc:5" || rows[1].Found {
		t.Fatalf("unexpected lookup rows %+v", rows)
	}
}

func TestCanonicalizeCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"canonicalize", "-n", "hgnc"}, env.configPath)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	requireContains(t, out, "Classes")
	requireContains(t, out, "hgnc")
}

func TestCacheSweepCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	stray := filepath.Join(env.baseDir, "cache", "hgnc", "2024-01", ".names.tsv.tmp-1")
	if err := os.MkdirAll(filepath.Dir(stray), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stray, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, []string{"cache", "sweep"}, env.configPath)
	if err != nil {
		t.Fatalf("cache sweep: %v", err)
	}
	requireContains(t, out, "Removed 1 temp files")
	if _, err := os.Stat(stray); !os.IsNotExist(err) {
		t.Fatalf("expected temp file removed, stat err=%v", err)
	}
}

func TestRegistryRefreshOffline(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"registry", "refresh"}, env.configPath); err == nil {
		t.Fatal("expected refresh to fail while offline")
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Environment\n")
	requireContains(t, out, "Mapping database\n")
	requireContains(t, out, "none saved")
}
