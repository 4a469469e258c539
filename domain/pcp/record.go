package pcp

import (
	"errors"
	"math"
	"sort"
	"time"

	lo "github.com/samber/lo"
)

// Column names of the monthly base table.
const (
	ColMonth         = "month"
	ColLeadTime      = "lead_time_mean"
	ColEffectiveness = "efetividade_media"
	ColPrematureLoss = "perda_prem_R"
	ColPrematurePct  = "pct_refugo_prem"
	ColTotalLossM3   = "perda_total_m3"
	ColPrematureM3   = "perda_prem_m3"
	ColCell          = "celula"
	ColFamily        = "familia"
)

// RequiredColumns must be present in every base table.
var RequiredColumns = []string{ColMonth, ColLeadTime, ColEffectiveness, ColPrematureLoss, ColPrematurePct}

var (
	ErrMissingColumn   = errors.New("missing required column")
	ErrMalformedMonth  = errors.New("malformed month value")
	ErrEmptyDataset    = errors.New("dataset has no records")
	ErrEmptyWindow     = errors.New("period has no data")
	ErrInvalidWindow   = errors.New("period start is after end")
	ErrUnknownPreset   = errors.New("unknown period preset")
	ErrComplianceRange = errors.New("compliance must be between 0 and 100")
	ErrAxisUnavailable = errors.New("subgroup axis not available in dataset")
)

// MonthlyRecord is one row of the monthly base table. Missing numeric cells are NaN.
type MonthlyRecord struct {
	Month         time.Time `json:"month"`
	LeadTime      float64   `json:"lead_time_mean"`
	Effectiveness float64   `json:"efetividade_media"`
	PrematureLoss float64   `json:"perda_prem_R"`
	PrematurePct  float64   `json:"pct_refugo_prem"`
	TotalLossM3   float64   `json:"perda_total_m3"`
	PrematureM3   float64   `json:"perda_prem_m3"`
	Cell          string    `json:"celula,omitempty"`
	Family        string    `json:"familia,omitempty"`
}

// Capabilities records which optional columns the loaded table carried.
type Capabilities struct {
	Cell        bool `json:"celula"`
	Family      bool `json:"familia"`
	TotalLossM3 bool `json:"perda_total_m3"`
	PrematureM3 bool `json:"perda_prem_m3"`
}

// Axes lists the subgroup axes available, celula first.
func (c Capabilities) Axes() []Axis {
	var out []Axis
	if c.Cell {
		out = append(out, AxisCell)
	}
	if c.Family {
		out = append(out, AxisFamily)
	}
	return out
}

// Dataset is an immutable snapshot of the base table, ordered by month.
type Dataset struct {
	records []MonthlyRecord
	caps    Capabilities
}

// NewDataset copies records, sorts them by month (stable) and freezes the capabilities.
func NewDataset(records []MonthlyRecord, caps Capabilities) Dataset {
	rs := make([]MonthlyRecord, len(records))
	copy(rs, records)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Month.Before(rs[j].Month) })
	return Dataset{records: rs, caps: caps}
}

func (d Dataset) Len() int                   { return len(d.records) }
func (d Dataset) Capabilities() Capabilities { return d.caps }

// Records returns a copy of the ordered records.
func (d Dataset) Records() []MonthlyRecord {
	out := make([]MonthlyRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Bounds returns the first and last month. ok is false on an empty dataset.
func (d Dataset) Bounds() (first, last time.Time, ok bool) {
	if len(d.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return d.records[0].Month, d.records[len(d.records)-1].Month, true
}

// Window returns the records whose month falls inside w (inclusive).
func (d Dataset) Window(w PeriodWindow) []MonthlyRecord {
	return lo.Filter(d.records, func(r MonthlyRecord, _ int) bool { return w.Contains(r.Month) })
}

// defined drops NaN cells.
func defined(values []float64) []float64 {
	return lo.Reject(values, func(v float64, _ int) bool { return math.IsNaN(v) })
}

// mean averages the defined values; NaN when none are defined.
func mean(values []float64) float64 {
	vs := defined(values)
	if len(vs) == 0 {
		return math.NaN()
	}
	return lo.Sum(vs) / float64(len(vs))
}

// sum adds the defined values; NaN cells count as zero.
func sum(values []float64) float64 {
	return lo.Sum(defined(values))
}
