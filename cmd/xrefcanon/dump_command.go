package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"xrefcanon/internal/workflow"
)

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var namespaces []string
	cmd := &cobra.Command{
		Use:   "dump [kind...]",
		Short: "Write gzip TSV exports into the output directory",
		Long: "Write gzip TSV exports into the output directory.\n\n" +
			"Kinds: " + strings.Join(workflow.DumpKinds, ", ") + ".\n" +
			"Without arguments every kind except remapping is written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			results, err := mgr.Dump(ctx.context(cmd), workflow.DumpRequest{Kinds: args, Namespaces: namespaces})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, results)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				top := ""
				if len(r.Summary) > 0 {
					top = fmt.Sprintf("%s (%d)", strings.ReplaceAll(r.Summary[0].Group, "\t", " -> "), r.Summary[0].Rows)
				}
				rows = append(rows, []string{r.Name, strconv.Itoa(r.Rows), top, r.Path})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Dump", "Rows", "Largest group", "Path"},
				rows,
				1,
			))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&namespaces, "namespace", "n", nil, "Limit dumps to these namespaces (repeatable)")
	return cmd
}
