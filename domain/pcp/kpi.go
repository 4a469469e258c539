package pcp

import (
	"math"

	lo "github.com/samber/lo"
)

// KPIs are the scalar indicators of a window. Undefined means are NaN.
type KPIs struct {
	Records       int     `json:"records"`
	LeadTime      float64 `json:"lead_time_mean"`
	Effectiveness float64 `json:"efetividade_media"`
	PrematureLoss float64 `json:"perda_prem_R"`
	PrematurePct  float64 `json:"pct_refugo_prem"`
}

// Deltas compare two windows. A nil field means no comparison is available.
type Deltas struct {
	LeadTime      *float64 `json:"lead_time_mean"`
	Effectiveness *float64 `json:"efetividade_media"`
	PrematureLoss *float64 `json:"perda_prem_R"`
	PrematurePct  *float64 `json:"pct_refugo_prem"`
}

// Overview is the KPI block of the current window plus deltas against the previous one.
type Overview struct {
	Periods  Periods `json:"periods"`
	Current  KPIs    `json:"current"`
	Previous *KPIs   `json:"previous"`
	Deltas   Deltas  `json:"deltas"`
}

// Aggregate reduces records to KPIs.
func Aggregate(records []MonthlyRecord) KPIs {
	return KPIs{
		Records:       len(records),
		LeadTime:      mean(lo.Map(records, func(r MonthlyRecord, _ int) float64 { return r.LeadTime })),
		Effectiveness: mean(lo.Map(records, func(r MonthlyRecord, _ int) float64 { return r.Effectiveness })),
		PrematureLoss: sum(lo.Map(records, func(r MonthlyRecord, _ int) float64 { return r.PrematureLoss })),
		PrematurePct:  PrematurePctMean(records),
	}
}

// PrematurePctMean averages pct_refugo_prem with exact zeros treated as not applicable.
func PrematurePctMean(records []MonthlyRecord) float64 {
	vs := lo.FilterMap(records, func(r MonthlyRecord, _ int) (float64, bool) {
		return r.PrematurePct, r.PrematurePct != 0
	})
	return mean(vs)
}

// Compare subtracts prev from cur field by field. Fields undefined on either side stay nil.
func Compare(cur, prev KPIs) Deltas {
	return Deltas{
		LeadTime:      diff(cur.LeadTime, prev.LeadTime),
		Effectiveness: diff(cur.Effectiveness, prev.Effectiveness),
		PrematureLoss: diff(cur.PrematureLoss, prev.PrematureLoss),
		PrematurePct:  diff(cur.PrematurePct, prev.PrematurePct),
	}
}

func diff(a, b float64) *float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return nil
	}
	d := a - b
	return &d
}

// BuildOverview computes the current KPIs and, when the previous window has records, the deltas.
func BuildOverview(ds Dataset, p Periods) (Overview, error) {
	cur := ds.Window(p.Current)
	if len(cur) == 0 {
		return Overview{Periods: p}, ErrEmptyWindow
	}
	ov := Overview{Periods: p, Current: Aggregate(cur)}
	if prev := ds.Window(p.Previous); len(prev) > 0 {
		k := Aggregate(prev)
		ov.Previous = &k
		ov.Deltas = Compare(ov.Current, k)
	}
	return ov, nil
}
