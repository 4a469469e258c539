package csv

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"pcp-stats/domain/downtime"
	"pcp-stats/domain/format"
	"pcp-stats/domain/pcp"
)

// Output file names written into the data directory.
const (
	BaseFile          = "pcp_data.csv"
	DowntimeFile      = "paradas.csv"
	FilteredFile      = "pcp_data_filtrado.csv"
	DowntimeAggFile   = "paradas_aggregado.csv"
	KPIFile           = "kpis.csv"
	LossVsTargetFile  = "loss_vs_target.csv"
	SimulationFile    = "simulation.csv"
	SubgroupFile      = "subgroups.csv"
	SubgroupRankFile  = "subgroups_ranking.csv"
	QualityFile       = "quality.csv"
	DowntimeTopFile   = "paradas_top.csv"
	DowntimeMonthFile = "paradas_mensal.csv"
)

type table struct {
	name  string
	write func(io.Writer) error
}

// WriteAll writes every table of rep (and of the downtime summary, when given) into dir.
func WriteAll(dir string, caps pcp.Capabilities, rep pcp.Report, dt *downtime.Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	writers := []table{
		{FilteredFile, func(w io.Writer) error { return WriteRecords(w, caps, rep.Records) }},
		{KPIFile, func(w io.Writer) error { return WriteOverview(w, rep.Overview) }},
		{LossVsTargetFile, func(w io.Writer) error { return WriteTarget(w, rep.Target) }},
		{SimulationFile, func(w io.Writer) error { return WriteSimulation(w, rep.Simulation, rep.Breakeven) }},
		{QualityFile, func(w io.Writer) error { return WriteQuality(w, rep.Quality) }},
	}
	if rep.Subgroups != nil {
		sg := *rep.Subgroups
		writers = append(writers,
			table{SubgroupFile, func(w io.Writer) error { return WriteSubgroups(w, sg) }},
			table{SubgroupRankFile, func(w io.Writer) error { return WriteSubgroupRanking(w, sg) }},
		)
	}
	if dt != nil {
		s := *dt
		writers = append(writers,
			table{DowntimeAggFile, func(w io.Writer) error { return WriteDowntimeDetail(w, s.Detail) }},
			table{DowntimeTopFile, func(w io.Writer) error { return WriteDowntimeTop(w, s.TopCode) }},
			table{DowntimeMonthFile, func(w io.Writer) error { return WriteDowntimeMonthly(w, s.Monthly) }},
		)
	}
	for _, wr := range writers {
		if err := writeFile(filepath.Join(dir, wr.name), wr.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RecordHeaders lists the base-table columns written for caps, in load order.
func RecordHeaders(caps pcp.Capabilities) []string {
	h := []string{pcp.ColMonth, pcp.ColLeadTime, pcp.ColEffectiveness}
	if caps.TotalLossM3 {
		h = append(h, pcp.ColTotalLossM3)
	}
	if caps.PrematureM3 {
		h = append(h, pcp.ColPrematureM3)
	}
	h = append(h, pcp.ColPrematureLoss, pcp.ColPrematurePct)
	if caps.Cell {
		h = append(h, pcp.ColCell)
	}
	if caps.Family {
		h = append(h, pcp.ColFamily)
	}
	return h
}

// WriteRecords writes the filtered base table so that ReadBase reproduces it.
func WriteRecords(out io.Writer, caps pcp.Capabilities, records []pcp.MonthlyRecord) error {
	w := csv.NewWriter(out)
	if err := w.Write(RecordHeaders(caps)); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Month.Format(pcp.DateLayout), formatFloat(r.LeadTime), formatFloat(r.Effectiveness)}
		if caps.TotalLossM3 {
			row = append(row, formatFloat(r.TotalLossM3))
		}
		if caps.PrematureM3 {
			row = append(row, formatFloat(r.PrematureM3))
		}
		row = append(row, formatFloat(r.PrematureLoss), formatFloat(r.PrematurePct))
		if caps.Cell {
			row = append(row, r.Cell)
		}
		if caps.Family {
			row = append(row, r.Family)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteOverview writes one line per KPI with its current, previous and delta values.
func WriteOverview(out io.Writer, ov pcp.Overview) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"kpi", "current", "previous", "delta", "display", "display_delta", "period_start", "period_end", "previous_start", "previous_end"}); err != nil {
		return err
	}
	prev := func(f func(pcp.KPIs) float64) string {
		if ov.Previous == nil {
			return ""
		}
		return formatFloat(f(*ov.Previous))
	}
	cards := format.Cards(ov)
	lines := []struct {
		name  string
		get   func(pcp.KPIs) float64
		delta *float64
	}{
		{"lead_time", func(k pcp.KPIs) float64 { return k.LeadTime }, ov.Deltas.LeadTime},
		{"efetividade", func(k pcp.KPIs) float64 { return k.Effectiveness }, ov.Deltas.Effectiveness},
		{"perda_total", func(k pcp.KPIs) float64 { return k.PrematureLoss }, ov.Deltas.PrematureLoss},
		{"pct_prem", func(k pcp.KPIs) float64 { return k.PrematurePct }, ov.Deltas.PrematurePct},
	}
	for i, l := range lines {
		display := ""
		if cards[i].Delta != nil {
			display = *cards[i].Delta
		}
		row := []string{
			l.name,
			formatFloat(l.get(ov.Current)),
			prev(l.get),
			formatOptional(l.delta),
			cards[i].Value,
			display,
			formatDate(ov.Periods.Current.Start),
			formatDate(ov.Periods.Current.End),
			formatDate(ov.Periods.Previous.Start),
			formatDate(ov.Periods.Previous.End),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteTarget writes month, loss, target and gap.
func WriteTarget(out io.Writer, rep pcp.TargetReport) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"month", "perda_prem_R", "meta", "gap"}); err != nil {
		return err
	}
	for _, r := range rep.Rows {
		if err := w.Write([]string{formatDate(r.Month), formatFloat(r.Loss), formatFloat(r.Target), formatFloat(r.Gap)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSimulation writes actual and simulated loss per month. The breakeven compliance is
// repeated on every line and left empty when no effort is needed.
func WriteSimulation(out io.Writer, sim pcp.Simulation, be pcp.Breakeven) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"month", "perda_prem_R", "perda_prem_R_simulada", "compliance", "breakeven_compliance", "no_effort_needed"}); err != nil {
		return err
	}
	breakeven := formatFloat(be.Compliance)
	if be.NoEffortNeeded {
		breakeven = ""
	}
	for _, r := range sim.Rows {
		row := []string{
			formatDate(r.Month),
			formatFloat(r.Actual),
			formatFloat(r.Simulated),
			formatFloat(sim.Compliance),
			breakeven,
			strconv.FormatBool(be.NoEffortNeeded),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSubgroups writes the (subgroup, month) table.
func WriteSubgroups(out io.Writer, rep pcp.SubgroupReport) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{string(rep.Axis), "month", "perda_prem_R", "meta", "gap"}); err != nil {
		return err
	}
	for _, r := range rep.Rows {
		if err := w.Write([]string{r.Key, formatDate(r.Month), formatFloat(r.Loss), formatFloat(r.Target), formatFloat(r.Gap)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSubgroupRanking writes subgroups ordered by total gap.
func WriteSubgroupRanking(out io.Writer, rep pcp.SubgroupReport) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"rank", string(rep.Axis), "perda_prem_R", "meta", "gap"}); err != nil {
		return err
	}
	for i, r := range rep.Ranking {
		if err := w.Write([]string{strconv.Itoa(i + 1), r.Key, formatFloat(r.Loss), formatFloat(r.Target), formatFloat(r.Gap)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteQuality writes the data quality checks.
func WriteQuality(out io.Writer, checks []pcp.QualityCheck) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"campo", "NaN", "Negativos", "Zeros"}); err != nil {
		return err
	}
	for _, c := range checks {
		if err := w.Write([]string{c.Field, strconv.Itoa(c.NaN), strconv.Itoa(c.Negatives), strconv.Itoa(c.Zeros)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteDowntimeDetail writes minutes per (cell, stop code).
func WriteDowntimeDetail(out io.Writer, detail []downtime.CellCodeMinutes) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{downtime.ColCell, downtime.ColStopCode, downtime.ColMinutes}); err != nil {
		return err
	}
	for _, d := range detail {
		if err := w.Write([]string{d.Cell, d.StopCode, formatFloat(d.Minutes)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteDowntimeTop writes the stop-code ranking.
func WriteDowntimeTop(out io.Writer, top []downtime.CodeMinutes) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{downtime.ColStopCode, downtime.ColMinutes}); err != nil {
		return err
	}
	for _, c := range top {
		if err := w.Write([]string{c.StopCode, formatFloat(c.Minutes)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteDowntimeMonthly writes the monthly minutes series.
func WriteDowntimeMonthly(out io.Writer, monthly []downtime.MonthMinutes) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"mes", downtime.ColMinutes}); err != nil {
		return err
	}
	for _, m := range monthly {
		if err := w.Write([]string{formatDate(m.Month), formatFloat(m.Minutes)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// formatFloat keeps full precision so values survive a re-read; NaN is an empty cell.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatDate(t time.Time) string {
	return t.Format(pcp.DateLayout)
}
