package format

import "pcp-stats/domain/pcp"

// Card is one KPI tile: its label, formatted value and optional formatted delta.
type Card struct {
	Label string  `json:"label"`
	Value string  `json:"value"`
	Delta *string `json:"delta,omitempty"`
}

// Cards renders the four overview KPIs. Deltas are omitted when no previous period exists.
func Cards(ov pcp.Overview) []Card {
	k := ov.Current
	return []Card{
		{Label: "Lead time médio (dias)", Value: Days(k.LeadTime), Delta: optional(ov.Deltas.LeadTime, SignedDays)},
		{Label: "Efetividade média", Value: Ratio(k.Effectiveness), Delta: optional(ov.Deltas.Effectiveness, SignedRatio)},
		{Label: "Perda prematura (R$)", Value: BRL(k.PrematureLoss, 0), Delta: optional(ov.Deltas.PrematureLoss, func(d float64) string { return BRL(d, 0) })},
		{Label: "% refugo por corte prematuro", Value: Pct(k.PrematurePct, 1), Delta: optional(ov.Deltas.PrematurePct, PointsDelta)},
	}
}

func optional(d *float64, f func(float64) string) *string {
	if d == nil {
		return nil
	}
	s := f(*d)
	return &s
}
