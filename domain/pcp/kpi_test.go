package pcp

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrematurePctMeanExcludesZeros(t *testing.T) {
	records := []MonthlyRecord{
		rec(month(2024, time.January), 0, 0),
		rec(month(2024, time.February), 0, 10),
		rec(month(2024, time.March), 0, 20),
	}
	assert.InDelta(t, 15.0, PrematurePctMean(records), 1e-9)

	allZero := []MonthlyRecord{rec(month(2024, time.January), 0, 0)}
	assert.True(t, math.IsNaN(PrematurePctMean(allZero)))
}

func TestAggregate(t *testing.T) {
	records := []MonthlyRecord{
		{Month: month(2024, time.January), LeadTime: 4, Effectiveness: 1.5, PrematureLoss: 1000, PrematurePct: 10},
		{Month: month(2024, time.February), LeadTime: math.NaN(), Effectiveness: 2.5, PrematureLoss: math.NaN(), PrematurePct: math.NaN()},
		{Month: month(2024, time.March), LeadTime: 6, Effectiveness: 2, PrematureLoss: 500, PrematurePct: 30},
	}
	k := Aggregate(records)
	assert.Equal(t, 3, k.Records)
	assert.InDelta(t, 5.0, k.LeadTime, 1e-9)
	assert.InDelta(t, 2.0, k.Effectiveness, 1e-9)
	assert.InDelta(t, 1500.0, k.PrematureLoss, 1e-9)
	assert.InDelta(t, 20.0, k.PrematurePct, 1e-9)
}

func TestBuildOverviewWithoutPrevious(t *testing.T) {
	ds := NewDataset(monthly(2024, time.March, 100), Capabilities{})
	p, err := Resolve(ds, Selection{})
	require.NoError(t, err)

	ov, err := BuildOverview(ds, p)
	require.NoError(t, err)
	assert.Nil(t, ov.Previous)
	assert.Nil(t, ov.Deltas.LeadTime)
	assert.Nil(t, ov.Deltas.Effectiveness)
	assert.Nil(t, ov.Deltas.PrematureLoss)
	assert.Nil(t, ov.Deltas.PrematurePct)
	assert.InDelta(t, 300.0, ov.Current.PrematureLoss, 1e-9)
}

func TestBuildOverviewDeltas(t *testing.T) {
	records := []MonthlyRecord{
		{Month: month(2023, time.December), LeadTime: 5, Effectiveness: 1, PrematureLoss: 800, PrematurePct: 12},
		{Month: month(2024, time.January), LeadTime: 3, Effectiveness: 1.5, PrematureLoss: 500, PrematurePct: 10},
	}
	ds := NewDataset(records, Capabilities{})
	p, err := Resolve(ds, Selection{Start: day(2024, 1, 1), End: day(2024, 1, 31)})
	require.NoError(t, err)

	ov, err := BuildOverview(ds, p)
	require.NoError(t, err)
	require.NotNil(t, ov.Previous)
	require.NotNil(t, ov.Deltas.LeadTime)
	assert.InDelta(t, -2.0, *ov.Deltas.LeadTime, 1e-9)
	assert.InDelta(t, 0.5, *ov.Deltas.Effectiveness, 1e-9)
	assert.InDelta(t, -300.0, *ov.Deltas.PrematureLoss, 1e-9)
	assert.InDelta(t, -2.0, *ov.Deltas.PrematurePct, 1e-9)
}

func TestBuildOverviewEmptyWindow(t *testing.T) {
	ds := NewDataset(monthly(2024, time.March, 100), Capabilities{})
	p, err := Resolve(ds, Selection{Start: day(2020, 1, 1), End: day(2020, 3, 1)})
	require.NoError(t, err)

	ov, err := BuildOverview(ds, p)
	assert.ErrorIs(t, err, ErrEmptyWindow)
	assert.Equal(t, p, ov.Periods)
}

func TestCompareUndefinedSide(t *testing.T) {
	d := Compare(KPIs{LeadTime: math.NaN(), PrematurePct: 5}, KPIs{LeadTime: 3, PrematurePct: math.NaN()})
	assert.Nil(t, d.LeadTime)
	assert.Nil(t, d.PrematurePct)
	require.NotNil(t, d.Effectiveness)
	assert.Zero(t, *d.Effectiveness)
}
