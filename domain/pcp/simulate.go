package pcp

import (
	"fmt"
	"math"
	"time"

	lo "github.com/samber/lo"
)

// SimulationRow pairs a month's actual loss with the loss under the simulated compliance.
type SimulationRow struct {
	Month     time.Time `json:"month"`
	Actual    float64   `json:"perda_prem_R"`
	Simulated float64   `json:"perda_prem_R_simulada"`
}

// Simulation is the outcome of applying a No-Cut <7d compliance rate to a window.
type Simulation struct {
	Compliance     float64         `json:"compliance"`
	Factor         float64         `json:"factor"`
	Rows           []SimulationRow `json:"rows"`
	TotalActual    float64         `json:"total_actual"`
	TotalSimulated float64         `json:"total_simulated"`
	Savings        float64         `json:"savings"`
}

// Simulate scales each month's loss by (100 - compliance) / 100.
func Simulate(records []MonthlyRecord, compliance float64) (Simulation, error) {
	if math.IsNaN(compliance) || compliance < 0 || compliance > 100 {
		return Simulation{}, fmt.Errorf("%w: %v", ErrComplianceRange, compliance)
	}
	factor := (100 - compliance) / 100
	rows := lo.Map(records, func(r MonthlyRecord, _ int) SimulationRow {
		return SimulationRow{Month: r.Month, Actual: r.PrematureLoss, Simulated: r.PrematureLoss * factor}
	})
	actual := sum(lo.Map(rows, func(r SimulationRow, _ int) float64 { return r.Actual }))
	simulated := sum(lo.Map(rows, func(r SimulationRow, _ int) float64 { return r.Simulated }))
	return Simulation{
		Compliance:     compliance,
		Factor:         factor,
		Rows:           rows,
		TotalActual:    actual,
		TotalSimulated: simulated,
		Savings:        actual - simulated,
	}, nil
}

// Breakeven is the minimal compliance that brings the mean monthly loss to the target.
type Breakeven struct {
	Target         float64 `json:"target"`
	MeanLoss       float64 `json:"mean_loss"`
	NoEffortNeeded bool    `json:"no_effort_needed"`
	Compliance     float64 `json:"compliance"`
}

// ComputeBreakeven solves mean * (1 - c/100) <= target for the smallest c in [0, 100].
func ComputeBreakeven(records []MonthlyRecord, target float64) (Breakeven, error) {
	if len(records) == 0 {
		return Breakeven{Target: target}, ErrEmptyWindow
	}
	m := mean(lo.Map(records, func(r MonthlyRecord, _ int) float64 { return r.PrematureLoss }))
	return BreakevenFor(m, target), nil
}

// BreakevenFor applies the breakeven rule to an already computed mean monthly loss.
// An undefined mean yields compliance 0.
func BreakevenFor(meanLoss, target float64) Breakeven {
	b := Breakeven{Target: target, MeanLoss: meanLoss}
	if math.IsNaN(meanLoss) {
		return b
	}
	if meanLoss == 0 {
		b.NoEffortNeeded = true
		return b
	}
	c := 0.0
	if meanLoss > 0 {
		c = 100 * (1 - target/meanLoss)
	}
	b.Compliance = math.Max(0, math.Min(100, c))
	return b
}
