package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRegistryCommand(ctx *commandContext) *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the cached namespace registries",
	}
	registryCmd.AddCommand(newRegistryRefreshCommand(ctx))
	return registryCmd
}

func newRegistryRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refetch MIRIAM, OLS and OBO Foundry into the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			if mgr.Config().Registry.Offline {
				return fmt.Errorf("registry.offline is set; refresh needs network access")
			}
			runCtx := ctx.context(cmd)
			reg := mgr.Registry()
			counts := map[string]int{}
			steps := []struct {
				name  string
				fetch func(context.Context) (int, error)
			}{
				{"miriam", func(c context.Context) (int, error) { v, err := reg.MIRIAM(c, true); return len(v), err }},
				{"ols", func(c context.Context) (int, error) { v, err := reg.OLS(c, true); return len(v), err }},
				{"obofoundry", func(c context.Context) (int, error) { v, err := reg.OBOFoundry(c, true); return len(v), err }},
			}
			rows := make([][]string, 0, len(steps))
			for _, step := range steps {
				n, err := step.fetch(runCtx)
				if err != nil {
					return fmt.Errorf("refresh %s: %w", step.name, err)
				}
				counts[step.name] = n
				rows = append(rows, []string{step.name, strconv.Itoa(n)})
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, counts)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Registry", "Entries"}, rows, 1))
			return nil
		},
	}
}
