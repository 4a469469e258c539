package calculate

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"pcp-stats/connectors/config"
	ccsv "pcp-stats/connectors/csv"
	"pcp-stats/domain/downtime"
	"pcp-stats/domain/pcp"
)

// Run executes the calculate command: it loads the base table from the data directory,
// computes every panel for the selected period and writes the results back as CSV files.
func Run(args []string) error {
	cfg, err := config.LoadOrDefault(config.Path())
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dataDir := fs.String("data", cfg.Data.Dir, "directory containing the base CSV and receiving outputs")
	preset := fs.String("preset", cfg.Period.Preset, "period preset: custom | last_6_months | last_12_months")
	start := fs.String("start", cfg.Period.Start, "custom period start (YYYY-MM-DD)")
	end := fs.String("end", cfg.Period.End, "custom period end (YYYY-MM-DD)")
	target := fs.Float64("target", cfg.Targets.MonthlyLoss, "monthly premature-cut loss target (R$)")
	compliance := fs.Float64("compliance", cfg.Targets.Compliance, "simulated No-Cut <7d compliance (0-100)")
	breakeven := fs.Float64("breakeven", cfg.Targets.Breakeven, "monthly target used for the breakeven compliance (R$)")
	axis := fs.String("axis", cfg.Targets.SubgroupAxis, "subgroup axis: celula | familia (empty to skip)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sel, err := config.ParseSelection(*preset, *start, *end)
	if err != nil {
		return err
	}
	q, err := cfg.Query(sel)
	if err != nil {
		slog.Error("calculate.config.error", "error", err)
		return err
	}
	q.MonthlyTarget = *target
	q.Compliance = *compliance
	q.BreakevenTarget = *breakeven
	q.Axis = ""
	if *axis != "" {
		if q.Axis, err = pcp.ParseAxis(*axis); err != nil {
			return err
		}
	}

	slog.Info("calculate.start", "data", *dataDir, "preset", sel.Preset, "target", q.MonthlyTarget, "compliance", q.Compliance)
	ds, events, err := ccsv.LoadDir(*dataDir, cfg.Data.Base, cfg.Data.Downtime)
	if err != nil {
		slog.Error("calculate.load.error", "error", err)
		return err
	}

	rep, err := pcp.Analyze(ds, q)
	if errors.Is(err, pcp.ErrEmptyWindow) {
		slog.Warn("calculate.empty_window", "period", rep.Overview.Periods.Current.String())
		fmt.Fprintf(os.Stderr, "Período sem dados: %s\n", rep.Overview.Periods.Current)
		return err
	}
	if err != nil {
		return err
	}
	if rep.Subgroups == nil && q.Axis != "" {
		slog.Info("calculate.subgroups.skip", "axis", q.Axis, "reason", "column not in base")
	}

	var dt *downtime.Summary
	if events != nil {
		s := downtime.Summarize(events, rep.Overview.Periods.Current)
		dt = &s
	}
	if err := ccsv.WriteAll(*dataDir, ds.Capabilities(), rep, dt); err != nil {
		slog.Error("calculate.write.error", "error", err)
		return err
	}

	fmt.Fprintf(os.Stderr, "calculate.done records=%d period=%s\n", len(rep.Records), rep.Overview.Periods.Current)
	return nil
}
