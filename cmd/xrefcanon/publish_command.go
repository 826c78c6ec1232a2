package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"xrefcanon/internal/publish"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var bucket, prefix string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the dump directory to the configured S3 bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.ensureManager(cmd)
			if err != nil {
				return err
			}
			uploads, err := mgr.Publish(ctx.context(cmd), func(o *publish.Options) {
				if bucket != "" {
					o.Bucket = bucket
				}
				if prefix != "" {
					o.Prefix = prefix
				}
			})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, uploads)
			}
			rows := make([][]string, 0, len(uploads))
			for _, up := range uploads {
				rows = append(rows, []string{up.Key, humanize.IBytes(uint64(up.Bytes)), strconv.FormatInt(up.Bytes, 10)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Size", "Bytes"},
				rows,
				1, 2,
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "", "Override publish.bucket")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Override publish.prefix")
	return cmd
}
