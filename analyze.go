package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jalad-shrimali/cdr-analyzer/geofence"
	"github.com/jalad-shrimali/cdr-analyzer/pipeline"
	"github.com/jalad-shrimali/cdr-analyzer/sheet"
)

func analyzeCmd() *cobra.Command {
	var (
		out              string
		topN, callerTopN int
		lookup, callerID bool
	)
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Analyse a CDR export and write the report workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			tbl, err := readFile(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top-n") {
				topN = a.cfg.Analysis.TopN
			}
			if !cmd.Flags().Changed("caller-top-n") {
				callerTopN = a.cfg.Analysis.CallerTopN
			}
			res, err := a.analyzer.Analyze(cmd.Context(), tbl, pipeline.AnalyzeOptions{
				TopN: topN, CallerTopN: callerTopN, Lookup: lookup, CallerID: callerID,
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd, res, outputPath(out, args[0], "_analysis"))
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output workbook (default: <input>_analysis.xlsx)")
	cmd.Flags().IntVar(&topN, "top-n", pipeline.DefaultTopN, "numbers to look up in the SIM registry")
	cmd.Flags().IntVar(&callerTopN, "caller-top-n", pipeline.DefaultCallerTopN, "numbers to look up for caller ID")
	cmd.Flags().BoolVar(&lookup, "lookup", false, "enable SIM registry lookups")
	cmd.Flags().BoolVar(&callerID, "caller-id", false, "enable caller-ID lookups")
	return cmd
}

func geofenceCmd() *cobra.Command {
	var (
		out      string
		from, to string
		includeB bool
	)
	cmd := &cobra.Command{
		Use:   "geofence FILE",
		Short: "Keep the calls inside a time-of-day window and summarise their numbers",
		Example: `  cdr-analyzer geofence site.xlsx --from "09:00 AM" --to "05:00 PM"
  cdr-analyzer geofence site.csv --from 21:30 --to 23:59 --include-b`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromTime, fromPeriod := splitClock(from)
			toTime, toPeriod := splitClock(to)
			win, err := geofence.ParseWindow(fromTime, fromPeriod, toTime, toPeriod)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			tbl, err := readFile(args[0])
			if err != nil {
				return err
			}
			res, err := a.analyzer.Geofence(cmd.Context(), tbl, geofence.Options{Window: win, IncludeB: includeB})
			if err != nil {
				return err
			}
			return writeOutput(cmd, res, outputPath(out, args[0], "_geofence"))
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output workbook (default: <input>_geofence.xlsx)")
	cmd.Flags().StringVar(&from, "from", "", `window start, "hh:mm AM" or 24-hour "hh:mm"`)
	cmd.Flags().StringVar(&to, "to", "", `window end, "hh:mm PM" or 24-hour "hh:mm"`)
	cmd.Flags().BoolVar(&includeB, "include-b", false, "summarise B-party numbers too")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

/* ──────────── helpers ──────────── */

func readFile(path string) (*sheet.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sheet.Read(f, filepath.Base(path))
}

func outputPath(out, input, suffix string) string {
	if out != "" {
		return out
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix + ".xlsx"
}

func writeOutput(cmd *cobra.Command, res *pipeline.Output, path string) error {
	if err := os.WriteFile(path, res.Workbook.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d numbers (run %s)\n", path, res.Rows, res.Numbers, res.ID)
	return nil
}

// splitClock splits "09:00 PM" into its clock and period.
func splitClock(s string) (string, string) {
	clock, period, _ := strings.Cut(strings.TrimSpace(s), " ")
	return clock, strings.TrimSpace(period)
}
