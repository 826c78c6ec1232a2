package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"xrefcanon/internal/workflow"
)

func newCanonicalizeCommand(ctx *commandContext) *cobra.Command {
	var (
		namespaces      []string
		includeSynonyms bool
		dump            bool
		saveDB          bool
		skipPreflight   bool
	)
	cmd := &cobra.Command{
		Use:   "canonicalize",
		Short: "Build equivalence classes and the canonical remapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			res, err := mgr.Canonicalize(ctx.context(cmd), workflow.Request{
				Namespaces:      namespaces,
				IncludeSynonyms: includeSynonyms,
				SkipPreflight:   skipPreflight,
				Dump:            dump,
				SaveDB:          saveDB,
				RunID:           ctx.runID,
			})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, res)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Run", res.RunID},
				{"Namespaces", strings.Join(res.Namespaces, ", ")},
				{"Min trust", strconv.FormatFloat(res.MinTrust, 'g', -1, 64)},
				{"Identifiers", strconv.Itoa(res.Stats.Identifiers)},
				{"Classes", strconv.Itoa(res.Stats.Classes)},
				{"Alt edges", strconv.Itoa(res.Stats.AltEdges)},
				{"Xref edges", strconv.Itoa(res.Stats.XrefEdges)},
				{"Skipped edges", strconv.Itoa(res.Stats.SkippedEdges)},
				{"Elapsed", res.Stats.Elapsed},
			}
			if len(res.Stats.Unranked) > 0 {
				rows = append(rows, []string{"Unranked", strings.Join(res.Stats.Unranked, ", ")})
			}
			if res.Dump != nil {
				rows = append(rows, []string{"Dump", res.Dump.Path})
			}
			if res.Database != nil {
				rows = append(rows, []string{"Database", fmt.Sprintf("%d rows saved", res.Database.Identifiers)})
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&namespaces, "namespace", "n", nil, "Limit the build to these namespaces (repeatable)")
	cmd.Flags().BoolVar(&includeSynonyms, "include-synonyms", false, "Merge identifiers sharing a label or synonym")
	cmd.Flags().BoolVar(&dump, "dump", false, "Write the remapping dump to the output directory")
	cmd.Flags().BoolVar(&saveDB, "db", false, "Save the mapping to the mapping database")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks")
	return cmd
}
