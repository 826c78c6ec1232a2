package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"xrefcanon/internal/mappingdb"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Query the mapping database",
	}
	dbCmd.AddCommand(newDBLookupCommand(ctx))
	dbCmd.AddCommand(newDBMembersCommand(ctx))
	return dbCmd
}

func openMappingDB(cmd *cobra.Command, ctx *commandContext) (*mappingdb.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return mappingdb.Open(ctx.context(cmd), cfg.MappingDB.Driver, cfg.MappingDSN())
}

func newDBLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <curie>...",
		Short: "Print the canonical identifier saved for each CURIE",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			store, err := openMappingDB(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			rows := make([]lookupRow, 0, len(args))
			for _, arg := range args {
				c, err := mgr.Normalizer().Normalize(arg)
				if err != nil {
					return err
				}
				canonical, err := store.Lookup(ctx.context(cmd), c)
				switch {
				case errors.Is(err, mappingdb.ErrNotFound):
					rows = append(rows, lookupRow{Input: c.String()})
				case err != nil:
					return err
				default:
					rows = append(rows, lookupRow{Input: c.String(), Result: canonical.String(), Found: true})
				}
			}
			return writeLookupRows(cmd, ctx, "Canonical", rows)
		},
	}
}

func newDBMembersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "members <canonical-curie>",
		Short: "List the identifiers mapped to a canonical identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			c, err := mgr.Normalizer().Normalize(args[0])
			if err != nil {
				return err
			}
			store, err := openMappingDB(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			members, err := store.Members(ctx.context(cmd), c)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, members)
			}
			if len(members) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No identifiers map to %s\n", c)
				return nil
			}
			rows := make([][]string, 0, len(members))
			for _, m := range members {
				rows = append(rows, []string{m.String()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Member"}, rows))
			return nil
		},
	}
}
