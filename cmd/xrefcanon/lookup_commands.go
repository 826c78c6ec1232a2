package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"xrefcanon/internal/curie"
)

type lookupRow struct {
	Input  string `json:"input"`
	Result string `json:"result"`
	Found  bool   `json:"found"`
}

func newLookupCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newNormalizeCommand(ctx),
		newPrimaryCommand(ctx),
		newXrefCommand(ctx),
		newSpeciesCommand(ctx),
		newNameCommand(ctx),
	}
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <curie-or-namespace>...",
		Short: "Normalize CURIEs or namespace spellings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			normalizer := mgr.Normalizer()
			rows := make([]lookupRow, 0, len(args))
			for _, arg := range args {
				if strings.Contains(arg, curie.Delimiter) {
					c, err := normalizer.Normalize(arg)
					if err != nil {
						return err
					}
					rows = append(rows, lookupRow{Input: arg, Result: c.String(), Found: true})
					continue
				}
				ns, err := normalizer.NormalizeNamespace(arg)
				if err != nil {
					return err
				}
				rows = append(rows, lookupRow{Input: arg, Result: ns, Found: true})
			}
			return writeLookupRows(cmd, ctx, "Normalized", rows)
		},
	}
}

func newPrimaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "primary <curie>...",
		Short: "Resolve alternate identifiers to their primary identifier",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			rows := make([]lookupRow, 0, len(args))
			for _, arg := range args {
				c, err := mgr.Alts().PrimaryCURIE(ctx.context(cmd), arg)
				if err != nil {
					return err
				}
				rows = append(rows, lookupRow{Input: arg, Result: c.String(), Found: true})
			}
			return writeLookupRows(cmd, ctx, "Primary", rows)
		},
	}
}

func newXrefCommand(ctx *commandContext) *cobra.Command {
	var flip bool
	cmd := &cobra.Command{
		Use:   "xref <curie> <target-namespace>",
		Short: "Look up the cross-reference of an identifier in another namespace",
		Long: "Look up the cross-reference of an identifier in another namespace.\n\n" +
			"With --flip the identifier is read as a target-namespace identifier and the\n" +
			"matching identifier of the CURIE's namespace is returned.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			c, err := mgr.Normalizer().Normalize(args[0])
			if err != nil {
				return err
			}
			target, err := mgr.Normalizer().NormalizeNamespace(args[1])
			if err != nil {
				return err
			}
			id, ok, err := mgr.Xrefs().Xref(ctx.context(cmd), c.Namespace, c.Identifier, target, flip)
			if err != nil {
				return err
			}
			row := lookupRow{Input: c.String(), Found: ok}
			if ok {
				resultNS := target
				if flip {
					resultNS = c.Namespace
				}
				row.Result = curie.New(resultNS, id).String()
			}
			return writeLookupRows(cmd, ctx, "Cross-reference", []lookupRow{row})
		},
	}
	cmd.Flags().BoolVar(&flip, "flip", false, "Read the identifier as a target identifier and map back")
	return cmd
}

func newSpeciesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "species <curie>...",
		Short: "Look up the NCBI taxon of identifiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			rows := make([]lookupRow, 0, len(args))
			for _, arg := range args {
				c, err := mgr.Normalizer().Normalize(arg)
				if err != nil {
					return err
				}
				taxon, ok, err := mgr.Species().Species(ctx.context(cmd), c.Namespace, c.Identifier)
				if err != nil {
					return err
				}
				rows = append(rows, lookupRow{Input: c.String(), Result: taxon, Found: ok})
			}
			return writeLookupRows(cmd, ctx, "Species", rows)
		},
	}
}

func newNameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "name <curie>...",
		Short: "Look up identifier labels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			rows := make([]lookupRow, 0, len(args))
			for _, arg := range args {
				c, err := mgr.Normalizer().Normalize(arg)
				if err != nil {
					return err
				}
				label, ok, err := mgr.Names().Name(ctx.context(cmd), c.Namespace, c.Identifier)
				if err != nil {
					return err
				}
				rows = append(rows, lookupRow{Input: c.String(), Result: label, Found: ok})
			}
			return writeLookupRows(cmd, ctx, "Name", rows)
		},
	}
}

func writeLookupRows(cmd *cobra.Command, ctx *commandContext, resultLabel string, rows []lookupRow) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, rows)
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		result := r.Result
		if !r.Found {
			result = "-"
		}
		table = append(table, []string{r.Input, result})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Input", resultLabel}, table))
	return nil
}
