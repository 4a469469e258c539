package pcp

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	lo "github.com/samber/lo"
)

// DefaultRollingWindow is the rolling-mean width used when none is configured.
const DefaultRollingWindow = 3

// Point is one value of a monthly series. Value may be NaN.
type Point struct {
	Month time.Time `json:"month"`
	Value float64   `json:"value"`
}

// MarshalJSON writes undefined values as null.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Month time.Time `json:"month"`
		Value *float64  `json:"value"`
	}{Month: p.Month, Value: Optional(p.Value)})
}

// Optional maps NaN to nil.
func Optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// Series is a named monthly line of a chart.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Chart groups the series drawn on one figure. Rolling and Peak are derived from the first series.
type Chart struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	YLabel  string   `json:"y_label"`
	Series  []Series `json:"series"`
	Rolling *Series  `json:"rolling,omitempty"`
	Peak    *Point   `json:"peak,omitempty"`
}

// SeriesOf extracts one field of the records as a series.
func SeriesOf(name string, records []MonthlyRecord, field func(MonthlyRecord) float64) Series {
	return Series{
		Name: name,
		Points: lo.Map(records, func(r MonthlyRecord, _ int) Point {
			return Point{Month: r.Month, Value: field(r)}
		}),
	}
}

// RollingMean averages each point with up to window-1 predecessors, skipping NaN.
// A point whose whole span is NaN stays NaN.
func RollingMean(points []Point, window int) []Point {
	if window < 1 {
		window = 1
	}
	out := make([]Point, len(points))
	for i := range points {
		from := i - window + 1
		if from < 0 {
			from = 0
		}
		span := make([]float64, 0, i-from+1)
		for _, p := range points[from : i+1] {
			span = append(span, p.Value)
		}
		out[i] = Point{Month: points[i].Month, Value: mean(span)}
	}
	return out
}

// Peak returns the highest defined point; the earliest wins on ties.
func Peak(points []Point) (Point, bool) {
	var best Point
	found := false
	for _, p := range points {
		if math.IsNaN(p.Value) {
			continue
		}
		if !found || p.Value > best.Value {
			best = p
			found = true
		}
	}
	return best, found
}

// WithTrend attaches the rolling mean and peak of the chart's first series.
func (c Chart) WithTrend(window int) Chart {
	if len(c.Series) == 0 {
		return c
	}
	base := c.Series[0]
	c.Rolling = &Series{Name: base.Name + " (média móvel)", Points: RollingMean(base.Points, window)}
	if p, ok := Peak(base.Points); ok {
		c.Peak = &p
	}
	return c
}

// ChartInput carries the computed panels a chart set is drawn from.
type ChartInput struct {
	Records       []MonthlyRecord
	Target        TargetReport
	Simulation    Simulation
	Subgroups     *SubgroupReport
	RollingWindow int
}

// BuildCharts returns the monthly figures in presentation order.
func BuildCharts(in ChartInput) []Chart {
	w := in.RollingWindow
	if w <= 0 {
		w = DefaultRollingWindow
	}
	charts := []Chart{
		{
			Name:   "lead_time",
			Title:  "Lead time médio (dias) - Mensal",
			YLabel: "Dias",
			Series: []Series{SeriesOf("Lead time", in.Records, func(r MonthlyRecord) float64 { return r.LeadTime })},
		},
		{
			Name:   "pct_refugo_prem",
			Title:  "% do refugo atribuído ao corte prematuro - Mensal",
			YLabel: "%",
			Series: []Series{SeriesOf("% refugo prematuro", in.Records, func(r MonthlyRecord) float64 { return r.PrematurePct })},
		},
		{
			Name:   "loss_vs_target",
			Title:  "Perda prematura vs. meta",
			YLabel: "R$",
			Series: []Series{
				{Name: "Perda (R$)", Points: lo.Map(in.Target.Rows, func(r TargetRow, _ int) Point { return Point{Month: r.Month, Value: r.Loss} })},
				{Name: "Meta (R$)", Points: lo.Map(in.Target.Rows, func(r TargetRow, _ int) Point { return Point{Month: r.Month, Value: r.Target} })},
			},
		},
		{
			Name:   "simulation",
			Title:  "Perda prematura — Atual vs. Simulada",
			YLabel: "R$",
			Series: []Series{
				{Name: "Atual", Points: lo.Map(in.Simulation.Rows, func(r SimulationRow, _ int) Point { return Point{Month: r.Month, Value: r.Actual} })},
				{Name: "Simulada", Points: lo.Map(in.Simulation.Rows, func(r SimulationRow, _ int) Point { return Point{Month: r.Month, Value: r.Simulated} })},
			},
		},
	}
	// Every chart but the simulation carries the rolling mean and peak.
	for i := range charts {
		if charts[i].Name != "simulation" {
			charts[i] = charts[i].WithTrend(w)
		}
	}
	if in.Subgroups != nil && len(in.Subgroups.Rows) > 0 {
		charts = append(charts, SubgroupChart(*in.Subgroups))
	}
	return charts
}

// SubgroupChart draws one line per subgroup, keys in ascending order.
func SubgroupChart(rep SubgroupReport) Chart {
	byKey := lo.GroupBy(rep.Rows, func(r SubgroupRow) string { return r.Key })
	keys := lo.Keys(byKey)
	sort.Strings(keys)
	series := lo.Map(keys, func(k string, _ int) Series {
		return Series{Name: k, Points: lo.Map(byKey[k], func(r SubgroupRow, _ int) Point { return Point{Month: r.Month, Value: r.Loss} })}
	})
	return Chart{Name: "subgroups", Title: "Perda prematura por subgrupo", YLabel: "R$", Series: series}
}
