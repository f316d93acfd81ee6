package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	service "github.com/okian/linepulse/internal/app"
	"github.com/okian/linepulse/internal/domain/model"
)

type filterFlags struct {
	process   string
	start     string
	end       string
	workers   []string
	shipStart string
	shipEnd   string
}

// filter builds a validated Filter. Missing dates default to today.
func (ff filterFlags) filter(now time.Time) (model.Filter, error) {
	p, err := model.ParseProcess(ff.process)
	if err != nil {
		return model.Filter{}, err
	}
	today := model.Day(now)
	f := model.Filter{Process: p, WorkerIDs: ff.workers}
	if f.StartDate, err = parseDay(ff.start, today); err != nil {
		return model.Filter{}, fmt.Errorf("start: %w", err)
	}
	if f.EndDate, err = parseDay(ff.end, today); err != nil {
		return model.Filter{}, fmt.Errorf("end: %w", err)
	}
	if ff.shipStart != "" {
		d, err := parseDay(ff.shipStart, today)
		if err != nil {
			return model.Filter{}, fmt.Errorf("ship-start: %w", err)
		}
		f.ShippingStart = &d
	}
	if ff.shipEnd != "" {
		d, err := parseDay(ff.shipEnd, today)
		if err != nil {
			return model.Filter{}, fmt.Errorf("ship-end: %w", err)
		}
		f.ShippingEnd = &d
	}
	return f, f.Validate()
}

func parseDay(raw string, def time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return time.ParseInLocation(time.DateOnly, raw, def.Location())
}

func (c *cli) analyzeCmd() *cobra.Command {
	var (
		ff     filterFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print KPIs and the worker ranking for a filter",
		Long: `Analyze the sessions matching a filter.

Examples:
  linepulse analyze --process A --start 2025-03-01 --end 2025-03-10
  linepulse analyze --process B --workers kim,lee --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f, err := ff.filter(time.Now())
			if err != nil {
				return err
			}
			svc, err := c.service(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.Analyze(ctx, f)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
			}
			return printAnalysis(cmd.OutOrStdout(), f, res)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&ff.process, "process", "p", "all", "process code: A, B, C or all")
	fl.StringVar(&ff.start, "start", "", "first day, YYYY-MM-DD (default today)")
	fl.StringVar(&ff.end, "end", "", "last day, YYYY-MM-DD (default today)")
	fl.StringSliceVarP(&ff.workers, "workers", "w", nil, "restrict to these workers")
	fl.StringVar(&ff.shipStart, "ship-start", "", "earliest shipping date, YYYY-MM-DD")
	fl.StringVar(&ff.shipEnd, "ship-end", "", "latest shipping date, YYYY-MM-DD")
	fl.BoolVar(&asJSON, "json", false, "print the full analysis as JSON")
	return cmd
}

func printAnalysis(w io.Writer, f model.Filter, res service.Analysis) error {
	k := res.KPI
	fmt.Fprintf(w, "process %s, %s .. %s\n", f.Process.Key(),
		f.StartDate.Format(time.DateOnly), f.EndDate.Format(time.DateOnly))
	fmt.Fprintf(w, "  sessions        %s\n", humanize.Comma(int64(k.TotalSessions)))
	fmt.Fprintf(w, "  units           %s (%s per session)\n",
		humanize.Comma(int64(k.TotalUnits)), humanize.CommafWithDigits(k.AvgUnitsPerSession, 1))
	fmt.Fprintf(w, "  avg work time   %s\n", seconds(k.AvgWorkDuration))
	fmt.Fprintf(w, "  avg latency     %s\n", seconds(k.AvgLatency))
	fmt.Fprintf(w, "  errors          %s (weekly avg %s)\n",
		humanize.Comma(int64(k.TotalErrors)), humanize.CommafWithDigits(k.WeeklyAvgErrors, 1))
	fmt.Fprintf(w, "  first pass      %s%%\n", humanize.CommafWithDigits(k.AvgYield*100, 1))
	if f.Process.TracksDefects() {
		fmt.Fprintf(w, "  defect rate     %s%%\n", humanize.CommafWithDigits(k.AvgDefectRate*100, 2))
	}
	if len(res.Workers) == 0 {
		fmt.Fprintln(w, "\nno sessions in range")
		return nil
	}

	ranked := make([]model.WorkerPerformance, 0, len(res.Workers))
	for _, p := range res.Workers {
		ranked = append(ranked, p)
	}
	slices.SortFunc(ranked, func(a, b model.WorkerPerformance) int {
		if c := cmp.Compare(b.OverallScore, a.OverallScore); c != 0 {
			return c
		}
		return cmp.Compare(a.WorkerID, b.WorkerID)
	})

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tWORKER\tSCORE\tSESSIONS\tUNITS\tAVG WORK\tBEST")
	for i, p := range ranked {
		best := "-"
		if p.HasBestRecord() {
			best = seconds(p.BestWorkTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			humanize.Ordinal(i+1), p.WorkerID, humanize.CommafWithDigits(p.OverallScore, 1),
			p.SessionCount, humanize.Comma(int64(p.TotalUnits)), seconds(p.AvgWorkTime), best)
	}
	return tw.Flush()
}

func seconds(s float64) string {
	return (time.Duration(s * float64(time.Second))).Round(time.Second).String()
}
