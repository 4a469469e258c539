package pcp

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateTarget(t *testing.T) {
	records := []MonthlyRecord{
		rec(month(2024, time.January), 60000, 1),
		rec(month(2024, time.February), 40000, 1),
	}
	rep := EvaluateTarget(records, 50000)
	require.Len(t, rep.Rows, 2)
	assert.InDelta(t, 10000.0, rep.Rows[0].Gap, 1e-9)
	assert.InDelta(t, -10000.0, rep.Rows[1].Gap, 1e-9)
	assert.InDelta(t, 100000.0, rep.TotalLoss, 1e-9)
	assert.InDelta(t, 0.0, rep.TotalGap, 1e-9)
	for _, r := range rep.Rows {
		assert.InDelta(t, r.Loss-r.Target, r.Gap, 1e-9)
	}
}

func TestSimulate(t *testing.T) {
	records := []MonthlyRecord{
		rec(month(2024, time.January), 1000, 1),
		rec(month(2024, time.February), 3000, 1),
	}
	tests := []struct {
		compliance float64
		simulated  float64
	}{
		{0, 4000},
		{25, 3000},
		{50, 2000},
		{100, 0},
	}
	for _, tt := range tests {
		sim, err := Simulate(records, tt.compliance)
		require.NoError(t, err)
		assert.InDelta(t, tt.simulated, sim.TotalSimulated, 1e-9, "compliance %v", tt.compliance)
		assert.InDelta(t, 4000-tt.simulated, sim.Savings, 1e-9)
		for _, r := range sim.Rows {
			assert.LessOrEqual(t, r.Simulated, r.Actual)
		}
	}
}

func TestSimulateRejectsOutOfRange(t *testing.T) {
	for _, c := range []float64{-1, 100.5, math.NaN()} {
		_, err := Simulate(nil, c)
		assert.ErrorIs(t, err, ErrComplianceRange)
	}
}

func TestBreakevenFor(t *testing.T) {
	tests := []struct {
		name     string
		mean     float64
		target   float64
		want     float64
		noEffort bool
	}{
		{"half", 1000, 500, 50, false},
		{"already below target", 1000, 1500, 0, false},
		{"exactly at target", 1000, 1000, 0, false},
		{"zero target", 1000, 0, 100, false},
		{"negative target clamps", 1000, -500, 100, false},
		{"negative mean", -200, 100, 0, false},
		{"zero mean", 0, 500, 0, true},
		{"undefined mean", math.NaN(), 500, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BreakevenFor(tt.mean, tt.target)
			assert.Equal(t, tt.noEffort, b.NoEffortNeeded)
			assert.InDelta(t, tt.want, b.Compliance, 1e-9)
			assert.GreaterOrEqual(t, b.Compliance, 0.0)
			assert.LessOrEqual(t, b.Compliance, 100.0)
		})
	}
}

func TestComputeBreakevenEmptyWindow(t *testing.T) {
	_, err := ComputeBreakeven(nil, 100)
	assert.ErrorIs(t, err, ErrEmptyWindow)
}
