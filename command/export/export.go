package export

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pcp-stats/connectors/chart"
	"pcp-stats/connectors/config"
	ccsv "pcp-stats/connectors/csv"
	"pcp-stats/connectors/deck"
	"pcp-stats/connectors/report"
	"pcp-stats/domain/downtime"
	"pcp-stats/domain/pcp"
)

// Run executes the export command: it renders every chart of the configured period and writes
// the report deck (title, KPI summary, one sheet per chart) as an xlsx workbook.
//
// Usage:
//
//	pcp-stats export [-out ./data/pcp_report.xlsx] [-charts ./data/charts] [-preset ...]
func Run(args []string) error {
	cfg, err := config.LoadOrDefault(config.Path())
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dataDir := fs.String("data", cfg.Data.Dir, "directory containing the base CSV")
	out := fs.String("out", "", "deck output path (default <data>/pcp_report.xlsx)")
	chartsDir := fs.String("charts", "", "also write each chart as PNG into this directory (optional)")
	preset := fs.String("preset", cfg.Period.Preset, "period preset: custom | last_6_months | last_12_months")
	start := fs.String("start", cfg.Period.Start, "custom period start (YYYY-MM-DD)")
	end := fs.String("end", cfg.Period.End, "custom period end (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		*out = filepath.Join(*dataDir, "pcp_report.xlsx")
	}
	sel, err := config.ParseSelection(*preset, *start, *end)
	if err != nil {
		return err
	}

	slog.Info("export.start", "data", *dataDir, "out", *out)
	ds, events, err := ccsv.LoadDir(*dataDir, cfg.Data.Base, cfg.Data.Downtime)
	if err != nil {
		return err
	}
	q, err := cfg.Query(sel)
	if err != nil {
		return err
	}
	rep, err := pcp.Analyze(ds, q)
	if errors.Is(err, pcp.ErrEmptyWindow) {
		fmt.Fprintf(os.Stderr, "Período sem dados: %s\n", rep.Overview.Periods.Current)
		return err
	}
	if err != nil {
		return err
	}
	var dt *downtime.Summary
	if events != nil {
		s := downtime.Summarize(events, rep.Overview.Periods.Current)
		dt = &s
	}

	renderer := chart.NewRenderer(cfg.Charts.Width, cfg.Charts.Height)
	d, err := report.Deck(rep, dt, renderer, time.Now())
	if err != nil {
		return err
	}
	if *chartsDir != "" {
		if err := writePNGs(*chartsDir, d.Slides); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := deck.Write(f, d); err != nil {
		f.Close()
		slog.Error("export.deck.error", "error", err)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("export.done", "slides", len(d.Slides), "out", *out)
	return nil
}

func writePNGs(dir string, slides []deck.Slide) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, s := range slides {
		path := filepath.Join(dir, s.Name+".png")
		if err := os.WriteFile(path, s.PNG, 0o644); err != nil {
			return err
		}
		slog.Info("export.chart.written", "path", path)
	}
	return nil
}
