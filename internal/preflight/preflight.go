package preflight

import (
	"context"
	"path/filepath"

	"xrefcanon/internal/config"
)

// minCacheFreeBytes is the free space below which the cache check fails.
const minCacheFreeBytes = 512 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Detail   string `json:"detail"`
	Optional bool   `json:"optional,omitempty"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	results = append(results, CheckFreeSpace("Cache free space", cfg.Paths.CacheDir, minCacheFreeBytes))
	results = append(results, CheckSourceDir("Source directory", cfg.Paths.SourceDir))

	// The output directory is created lazily; check its parent until then.
	output := CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir)
	if !output.Passed {
		if parent := CheckDirectoryAccess("Output directory", filepath.Dir(cfg.Paths.OutputDir)); parent.Passed {
			output = Result{Name: output.Name, Passed: true, Detail: cfg.Paths.OutputDir + " (created on first dump)"}
		}
	}
	results = append(results, output)

	if !cfg.Registry.Offline {
		results = append(results,
			CheckRegistry(ctx, "MIRIAM registry", cfg.Registry.MiriamURL),
			CheckRegistry(ctx, "OLS registry", cfg.Registry.OLSURL),
			CheckRegistry(ctx, "OBO Foundry registry", cfg.Registry.OBOFoundryURL),
		)
	}

	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}
