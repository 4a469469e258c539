package pcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	records := monthly(2024, time.June, 60000)
	for i := range records {
		records[i].Cell = []string{"A", "B"}[i%2]
	}
	ds := NewDataset(records, Capabilities{Cell: true})

	rep, err := Analyze(ds, Query{
		Selection:       Selection{Preset: Last6Months},
		MonthlyTarget:   50000,
		Compliance:      50,
		BreakevenTarget: 30000,
		Axis:            AxisCell,
	})
	require.NoError(t, err)
	assert.Len(t, rep.Records, 6)
	assert.InDelta(t, 360000.0, rep.Overview.Current.PrematureLoss, 1e-9)
	assert.InDelta(t, 60000.0, rep.Target.TotalGap, 1e-9)
	assert.InDelta(t, 180000.0, rep.Simulation.TotalSimulated, 1e-9)
	assert.InDelta(t, 50.0, rep.Breakeven.Compliance, 1e-9)
	require.NotNil(t, rep.Subgroups)
	assert.Len(t, rep.Subgroups.Ranking, 2)
	assert.Len(t, rep.Quality, 4)
	assert.Len(t, rep.Charts, 5)
}

func TestAnalyzeToleratesMissingAxis(t *testing.T) {
	ds := NewDataset(monthly(2024, time.March, 100), Capabilities{})
	rep, err := Analyze(ds, Query{Axis: AxisFamily})
	require.NoError(t, err)
	assert.Nil(t, rep.Subgroups)
	assert.Len(t, rep.Charts, 4)
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	ds := NewDataset(monthly(2024, time.March, 100), Capabilities{})
	rep, err := Analyze(ds, Query{Selection: Selection{Start: day(2021, 1, 1), End: day(2021, 2, 1)}})
	assert.ErrorIs(t, err, ErrEmptyWindow)
	assert.Equal(t, day(2021, 1, 1), rep.Overview.Periods.Current.Start)
}

func TestAnalyzeRejectsCompliance(t *testing.T) {
	ds := NewDataset(monthly(2024, time.March, 100), Capabilities{})
	_, err := Analyze(ds, Query{Compliance: 120})
	assert.ErrorIs(t, err, ErrComplianceRange)
}
