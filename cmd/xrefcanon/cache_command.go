package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"xrefcanon/internal/fileutil"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the artifact cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheSweepCommand(ctx))
	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached artifacts per namespace version",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			entries, err := mgr.Artifacts().Inventory()
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Cache at %s is empty\n", mgr.Artifacts().Root())
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Namespace,
					e.Version,
					strconv.Itoa(e.Files),
					humanize.IBytes(uint64(e.Bytes)),
					strconv.Itoa(e.TempFiles),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Namespace", "Version", "Files", "Size", "Temp"},
				rows,
				2, 3, 4,
			))
			return nil
		},
	}
}

func newCacheSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove temp files left by interrupted cache writes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			removed, err := fileutil.SweepTempFiles(cfg.Paths.CacheDir)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]int{"removed": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d temp files\n", removed)
			return nil
		},
	}
}
