package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/internal/syncer"
)

func (c *cli) syncCmd() *cobra.Command {
	var (
		asJSON bool
		list   bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass over the log folder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := c.service(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			rep, err := svc.Sync(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(rep)
			}
			printReport(out, rep)
			if !list {
				return nil
			}
			records, err := svc.SyncRecords(ctx)
			if err != nil {
				return err
			}
			return printRecords(out, records)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the pass report as JSON")
	cmd.Flags().BoolVar(&list, "list", false, "list every tracked file after the pass")
	return cmd
}

func printReport(w io.Writer, rep syncer.Report) {
	fmt.Fprintf(w, "sync %s: %d scanned, %d pending, %d synced, %d failed, %s rows in %s\n",
		rep.Trigger, rep.Scanned, rep.Pending, rep.Synced, rep.Failed,
		humanize.Comma(int64(rep.Rows)), rep.Duration.Round(time.Millisecond))
	for _, f := range rep.Failures {
		fmt.Fprintf(w, "  failed %s: %s\n", f.Path, f.Error)
	}
}

func printRecords(w io.Writer, records []model.SyncRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tROWS\tSIZE\tSYNCED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.FileName, r.Status, humanize.Comma(int64(r.RowCount)),
			humanize.Bytes(uint64(max(0, r.FileSize))), humanize.Time(r.LastSyncedAt))
	}
	return tw.Flush()
}
