// Package report turns a computed pcp.Report into chart images and the report deck.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pcp-stats/connectors/chart"
	"pcp-stats/connectors/deck"
	"pcp-stats/domain/downtime"
	"pcp-stats/domain/format"
	"pcp-stats/domain/pcp"
)

// Title is printed on the deck's first sheet.
const Title = "PCP – Dashboard Dinâmico"

// Charts lists the figures of rep, followed by the downtime chart when a summary is given.
func Charts(rep pcp.Report, dt *downtime.Summary) []pcp.Chart {
	charts := append([]pcp.Chart{}, rep.Charts...)
	if dt != nil && len(dt.Monthly) > 0 {
		charts = append(charts, dt.Chart())
	}
	return charts
}

// FindChart returns the chart called name.
func FindChart(charts []pcp.Chart, name string) (pcp.Chart, bool) {
	for _, c := range charts {
		if c.Name == name {
			return c, true
		}
	}
	return pcp.Chart{}, false
}

// SummaryLines are the target, simulation and breakeven figures shown under the KPI cards.
func SummaryLines(rep pcp.Report) []deck.Line {
	lines := []deck.Line{
		{Label: "Meta mensal (R$)", Value: format.BRL(rep.Target.Target, 0)},
		{Label: "Perda total no período (R$)", Value: format.BRL(rep.Target.TotalLoss, 0)},
		{Label: "Desvio total vs. meta (R$)", Value: format.BRL(rep.Target.TotalGap, 0)},
		{Label: "Compliance simulado (No-Cut <7d)", Value: format.Pct(rep.Simulation.Compliance, 0)},
		{Label: "Perda simulada (R$)", Value: format.BRL(rep.Simulation.TotalSimulated, 0)},
		{Label: "Economia estimada (R$)", Value: format.BRL(rep.Simulation.Savings, 0)},
	}
	if rep.Breakeven.NoEffortNeeded {
		lines = append(lines, deck.Line{Label: "Compliance necessário (breakeven)", Value: "Perda média atual é zero. Nenhum esforço adicional necessário."})
	} else {
		lines = append(lines, deck.Line{Label: "Compliance necessário (breakeven)", Value: format.Pct(rep.Breakeven.Compliance, 1)})
	}
	if rep.Subgroups != nil && len(rep.Subgroups.Ranking) > 0 {
		top := rep.Subgroups.Ranking[0]
		lines = append(lines, deck.Line{Label: fmt.Sprintf("Maior desvio por %s", rep.Subgroups.Axis), Value: fmt.Sprintf("%s (%s)", top.Key, format.BRL(top.Gap, 0))})
	}
	return lines
}

// Deck renders every chart and assembles the deck. Charts without data are skipped.
func Deck(rep pcp.Report, dt *downtime.Summary, r chart.Renderer, now time.Time) (deck.Deck, error) {
	d := deck.Deck{
		Title:     Title,
		Subtitle:  "Layer executivo + simuladores operacionais",
		Generated: now,
		Periods:   rep.Overview.Periods,
		Cards:     format.Cards(rep.Overview),
		Lines:     SummaryLines(rep),
	}
	for _, c := range Charts(rep, dt) {
		png, err := r.PNG(c)
		if errors.Is(err, chart.ErrNothingToDraw) {
			slog.Info("report.chart.skip", "chart", c.Name)
			continue
		}
		if err != nil {
			return d, fmt.Errorf("render %s: %w", c.Name, err)
		}
		d.Slides = append(d.Slides, deck.Slide{Name: c.Name, Title: c.Title, PNG: png})
	}
	return d, nil
}
