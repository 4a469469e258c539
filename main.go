package main

import (
	"fmt"
	"log/slog"
	"os"

	cmdcalculate "pcp-stats/command/calculate"
	cmdexport "pcp-stats/command/export"
	cmdimport "pcp-stats/command/import"
	cmdweb "pcp-stats/command/web"
	"pcp-stats/connectors/config"
)

// PCP dashboard: monthly production-planning KPIs, loss-vs-target, No-Cut <7d simulation,
// subgroup ranking, downtime aggregates and an exportable report deck.
// Usage:
//   pcp-stats import -s3 | -postgres [-since 2024-01-01]
//   pcp-stats calculate [-preset last_12_months] [-target 50000] [-compliance 50]
//   pcp-stats web [-addr :8080] [-data ./data]
//   pcp-stats export [-out ./data/pcp_report.xlsx] [-charts ./data/charts]
// Notes:
// - The base table is <data>/pcp_data.csv; <data>/paradas.csv is optional.
// - A .env file is read before CONFIG_PATH is resolved.

const usage = "usage: pcp-stats import -s3|-postgres [-since <date>] | calculate [-preset <p>] [-start <d>] [-end <d>] | web [-addr :8080] [-data ./data] | export [-out <xlsx>] [-charts <dir>]\nENV: set CONFIG_PATH to point to a YAML config file (default ./config.yml)"

func main() {
	args := os.Args
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))
	config.LoadEnv()

	if len(args) > 1 {
		run := map[string]func([]string) error{
			"import":    cmdimport.Run,
			"calculate": cmdcalculate.Run,
			"web":       cmdweb.Run,
			"export":    cmdexport.Run,
		}[args[1]]
		if run != nil {
			if err := run(append([]string{}, args[2:]...)); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, usage)
	os.Exit(2)
}
