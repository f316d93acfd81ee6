package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	service "github.com/okian/linepulse/internal/app"
	"github.com/okian/linepulse/internal/domain/model"
)

func (c *cli) productionCmd() *cobra.Command {
	var (
		process string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "production",
		Short: "Print today's output per worker, item and hour",
		Long: `Print the production board of one process. When today has no sessions
yet, the latest work day of the last week is shown instead.

Examples:
  linepulse production --process C
  linepulse production -p A --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := model.ParseProcess(process)
			if err != nil {
				return err
			}
			svc, err := c.service(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			board, err := svc.Production(ctx, p)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(board)
			}
			return printProduction(cmd.OutOrStdout(), board)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&process, "process", "p", "all", "process code: A, B, C or all")
	fl.BoolVar(&asJSON, "json", false, "print the board as JSON")
	return cmd
}

func printProduction(w io.Writer, b service.Production) error {
	day := b.Date
	if !b.IsToday {
		day += " (latest work day)"
	}
	fmt.Fprintf(w, "process %s, %s\n", b.Process.Key(), day)
	if len(b.Workers) == 0 {
		fmt.Fprintln(w, "no output")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORKER\tUNITS\tSESSIONS\tAVG WORK")
	for _, wu := range b.Workers {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", wu.WorkerID, humanize.Comma(int64(wu.Units)), wu.SessionCount, seconds(wu.AvgWorkTime))
	}
	fmt.Fprintln(tw, "\t\t\t")
	fmt.Fprintln(tw, "ITEM\tUNITS\tSESSIONS\t")
	for _, it := range b.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t\n", it.Item, humanize.Comma(int64(it.Units)), it.SessionCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	hours := make([]string, 0, len(b.Hourly))
	for _, h := range b.Hourly {
		if h.Units > 0 {
			hours = append(hours, fmt.Sprintf("%02d:%s", h.Hour, humanize.Comma(int64(h.Units))))
		}
	}
	fmt.Fprintf(w, "\nby hour   %s\n", strings.Join(hours, "  "))
	fmt.Fprintf(w, "30d avg   %s units/day over %d days, %s workers/day\n",
		humanize.CommafWithDigits(b.Averages.Units, 1), b.Averages.Days,
		humanize.CommafWithDigits(b.Averages.Workers, 1))
	return nil
}
