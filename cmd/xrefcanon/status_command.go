package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"xrefcanon/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show environment checks, cache contents and the last saved mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			st, err := mgr.Status(ctx.context(cmd))
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, st)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderStatus(st, shouldColorize(out)))
			return nil
		},
	}
}

func renderStatus(st workflow.Status, colorize bool) string {
	r := &statusReport{colorize: colorize}

	r.section("Environment")
	for _, check := range st.Checks {
		r.item(check.Name, preflightState(check), check.Detail)
	}
	r.item("Registries", stateNote, st.Registry)

	r.section("Artifact cache")
	if len(st.Cache) == 0 {
		r.item("Artifacts", stateNote, "empty")
	}
	for _, e := range st.Cache {
		state := statePass
		detail := fmt.Sprintf("%d files, %s", e.Files, humanize.IBytes(uint64(e.Bytes)))
		if e.TempFiles > 0 {
			state = stateWarn
			detail += fmt.Sprintf(", %d temp files (run cache sweep)", e.TempFiles)
		}
		r.item(e.Namespace+"@"+e.Version, state, detail)
	}

	r.section("Mapping database")
	r.item("Driver", stateNote, st.Database)
	if st.LastRun == nil {
		r.item("Last run", stateWarn, "none saved")
		return r.String()
	}
	r.item("Last run", statePass, fmt.Sprintf("%s, %d identifiers in %d classes (%s)",
		st.LastRun.RunID,
		st.LastRun.Identifiers,
		st.LastRun.Classes,
		humanize.RelTime(st.LastRun.CreatedAt, time.Now(), "ago", "from now"),
	))
	return r.String()
}
