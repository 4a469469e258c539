package pcp

import (
	"time"

	lo "github.com/samber/lo"
)

// TargetRow is one month of loss against a flat monthly target.
type TargetRow struct {
	Month  time.Time `json:"month"`
	Loss   float64   `json:"perda_prem_R"`
	Target float64   `json:"meta"`
	Gap    float64   `json:"gap"`
}

// TargetReport holds the per-month gaps and their totals.
type TargetReport struct {
	Target    float64     `json:"meta"`
	Rows      []TargetRow `json:"rows"`
	TotalLoss float64     `json:"total_loss"`
	TotalGap  float64     `json:"total_gap"`
}

// EvaluateTarget subtracts target from every record's premature-cut loss.
func EvaluateTarget(records []MonthlyRecord, target float64) TargetReport {
	rows := lo.Map(records, func(r MonthlyRecord, _ int) TargetRow {
		return TargetRow{Month: r.Month, Loss: r.PrematureLoss, Target: target, Gap: r.PrematureLoss - target}
	})
	return TargetReport{
		Target:    target,
		Rows:      rows,
		TotalLoss: sum(lo.Map(rows, func(r TargetRow, _ int) float64 { return r.Loss })),
		TotalGap:  sum(lo.Map(rows, func(r TargetRow, _ int) float64 { return r.Gap })),
	}
}
