package pcp

import "math"

// QualityCheck counts suspicious cells of one numeric field.
type QualityCheck struct {
	Field     string `json:"campo"`
	NaN       int    `json:"NaN"`
	Negatives int    `json:"Negativos"`
	Zeros     int    `json:"Zeros"`
}

type qualityField struct {
	name    string
	present func(Capabilities) bool
	value   func(MonthlyRecord) float64
}

var qualityFields = []qualityField{
	{ColLeadTime, always, func(r MonthlyRecord) float64 { return r.LeadTime }},
	{ColEffectiveness, always, func(r MonthlyRecord) float64 { return r.Effectiveness }},
	{ColTotalLossM3, func(c Capabilities) bool { return c.TotalLossM3 }, func(r MonthlyRecord) float64 { return r.TotalLossM3 }},
	{ColPrematureM3, func(c Capabilities) bool { return c.PrematureM3 }, func(r MonthlyRecord) float64 { return r.PrematureM3 }},
	{ColPrematureLoss, always, func(r MonthlyRecord) float64 { return r.PrematureLoss }},
	{ColPrematurePct, always, func(r MonthlyRecord) float64 { return r.PrematurePct }},
}

func always(Capabilities) bool { return true }

// CheckQuality counts NaN, negative and zero cells of the critical fields the dataset carries.
func CheckQuality(caps Capabilities, records []MonthlyRecord) []QualityCheck {
	var out []QualityCheck
	for _, f := range qualityFields {
		if !f.present(caps) {
			continue
		}
		qc := QualityCheck{Field: f.name}
		for _, r := range records {
			v := f.value(r)
			switch {
			case math.IsNaN(v):
				qc.NaN++
			case v < 0:
				qc.Negatives++
			case v == 0:
				qc.Zeros++
			}
		}
		out = append(out, qc)
	}
	return out
}
