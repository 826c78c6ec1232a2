package main

import (
	"io"
	"strings"
	"testing"

	"xrefcanon/internal/artifact"
	"xrefcanon/internal/preflight"
	"xrefcanon/internal/workflow"
)

func TestFormatStatusItemPlain(t *testing.T) {
	got := formatStatusItem("Cache directory", stateFail, "not writable", false)
	want := "  FAIL  Cache directory          not writable"
	if got != want {
		t.Fatalf("formatStatusItem mismatch\n got: %q\nwant: %q", got, want)
	}
	if got := formatStatusItem("Artifacts", stateNote, "", false); strings.HasSuffix(got, " ") {
		t.Fatalf("expected trailing space trimmed, got %q", got)
	}
}

func TestFormatStatusItemColoursOnlyTheTag(t *testing.T) {
	got := formatStatusItem("Cache directory", statePass, "ready", true)
	if !strings.HasPrefix(got, "  "+ansiGreen+"PASS"+ansiReset) {
		t.Fatalf("expected green PASS tag, got %q", got)
	}
	if !strings.HasSuffix(got, "ready") {
		t.Fatalf("expected uncoloured detail, got %q", got)
	}
	if got := formatStatusItem("Driver", stateNote, "sqlite", true); strings.Contains(got, "\x1b[") {
		t.Fatalf("notes carry no colour, got %q", got)
	}
}

func TestPreflightState(t *testing.T) {
	tests := []struct {
		result preflight.Result
		want   checkState
	}{
		{preflight.Result{Passed: true}, statePass},
		{preflight.Result{Passed: false, Optional: true}, stateWarn},
		{preflight.Result{Passed: false}, stateFail},
	}
	for _, tt := range tests {
		if got := preflightState(tt.result); got != tt.want {
			t.Errorf("preflightState(%+v) = %d, want %d", tt.result, got, tt.want)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	st := workflow.Status{
		Checks: []preflight.Result{
			{Name: "Cache directory", Passed: true, Detail: "ok"},
			{Name: "MIRIAM", Passed: false, Optional: true, Detail: "timeout"},
		},
		Cache: []artifact.InventoryEntry{
			{Namespace: "hgnc", Version: "2024-01", Files: 3, Bytes: 2048, TempFiles: 1},
		},
		Registry: "online",
		Database: "sqlite",
	}
	out := renderStatus(st, false)
	requireContains(t, out, "PASS  Cache directory")
	requireContains(t, out, "WARN  MIRIAM")
	requireContains(t, out, "hgnc@2024-01")
	requireContains(t, out, "1 temp files")
	requireContains(t, out, "\n\nArtifact cache\n")
	requireContains(t, out, "WARN  Last run")
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
