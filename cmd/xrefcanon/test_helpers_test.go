package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xrefcanon/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	sourceDir  string
	outputDir  string
}

// setupCLITestEnv writes an offline config over a small hgnc/ncbigene corpus.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		sourceDir:  filepath.Join(base, "sources"),
		outputDir:  filepath.Join(base, "dumps"),
	}
	writeTestConfig(t, env)

	testsupport.WriteSourceVersion(t, env.sourceDir, "hgnc", "2024-01")
	testsupport.WriteSourceTable(t, env.sourceDir, "hgnc", "alts.tsv", []string{"hgnc_id", "alt_id"}, []string{"5", "500"})
	testsupport.WriteSourceTable(t, env.sourceDir, "hgnc", "xrefs.tsv", []string{"hgnc_id", "xref_prefix", "xref_id"},
		[]string{"5", "NCBIGene", "1"},
	)
	testsupport.WriteSourceTable(t, env.sourceDir, "hgnc", "names.tsv", []string{"hgnc_id", "name"}, []string{"5", "A1BG"})
	testsupport.WriteSourceTable(t, env.sourceDir, "ncbigene", "names.tsv", []string{"ncbigene_id", "name"}, []string{"1", "A1BG"})
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
cache_dir = %q
output_dir = %q
log_dir = %q
source_dir = %q

[canonicalizer]
priority = ["hgnc", "ncbigene"]

[namespaces.ncbigene]
has_alt_ids = false

[registry]
offline = true
`,
		filepath.Join(env.baseDir, "cache"),
		env.outputDir,
		filepath.Join(env.baseDir, "logs"),
		env.sourceDir,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
