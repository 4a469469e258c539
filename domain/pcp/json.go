package pcp

import (
	"encoding/json"
	"time"
)

// The types below may carry NaN cells, which encoding/json rejects. They encode them as null.

func (r MonthlyRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Month         time.Time `json:"month"`
		LeadTime      *float64  `json:"lead_time_mean"`
		Effectiveness *float64  `json:"efetividade_media"`
		PrematureLoss *float64  `json:"perda_prem_R"`
		PrematurePct  *float64  `json:"pct_refugo_prem"`
		TotalLossM3   *float64  `json:"perda_total_m3,omitempty"`
		PrematureM3   *float64  `json:"perda_prem_m3,omitempty"`
		Cell          string    `json:"celula,omitempty"`
		Family        string    `json:"familia,omitempty"`
	}{
		Month:         r.Month,
		LeadTime:      Optional(r.LeadTime),
		Effectiveness: Optional(r.Effectiveness),
		PrematureLoss: Optional(r.PrematureLoss),
		PrematurePct:  Optional(r.PrematurePct),
		TotalLossM3:   Optional(r.TotalLossM3),
		PrematureM3:   Optional(r.PrematureM3),
		Cell:          r.Cell,
		Family:        r.Family,
	})
}

func (k KPIs) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Records       int      `json:"records"`
		LeadTime      *float64 `json:"lead_time_mean"`
		Effectiveness *float64 `json:"efetividade_media"`
		PrematureLoss *float64 `json:"perda_prem_R"`
		PrematurePct  *float64 `json:"pct_refugo_prem"`
	}{k.Records, Optional(k.LeadTime), Optional(k.Effectiveness), Optional(k.PrematureLoss), Optional(k.PrematurePct)})
}

func (r TargetRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Month  time.Time `json:"month"`
		Loss   *float64  `json:"perda_prem_R"`
		Target float64   `json:"meta"`
		Gap    *float64  `json:"gap"`
	}{r.Month, Optional(r.Loss), r.Target, Optional(r.Gap)})
}

func (r SimulationRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Month     time.Time `json:"month"`
		Actual    *float64  `json:"perda_prem_R"`
		Simulated *float64  `json:"perda_prem_R_simulada"`
	}{r.Month, Optional(r.Actual), Optional(r.Simulated)})
}

func (b Breakeven) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Target         float64  `json:"target"`
		MeanLoss       *float64 `json:"mean_loss"`
		NoEffortNeeded bool     `json:"no_effort_needed"`
		Compliance     float64  `json:"compliance"`
	}{b.Target, Optional(b.MeanLoss), b.NoEffortNeeded, b.Compliance})
}
