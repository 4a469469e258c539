package downtime

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcp-stats/domain/pcp"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

var events = []Event{
	{Date: at(2024, time.January, 3, 8), StopCode: "P01", Minutes: 30, Cell: "C1"},
	{Date: at(2024, time.January, 20, 14), StopCode: "P02", Minutes: 45, Cell: "C1"},
	{Date: at(2024, time.February, 1, 0), StopCode: "P01", Minutes: 15, Cell: "C2"},
	{Date: at(2024, time.February, 10, 9), StopCode: "P03", Minutes: 45, Cell: "C2"},
	{Date: at(2024, time.February, 29, 23), StopCode: "P02", Minutes: math.NaN(), Cell: "C1"},
	{Date: at(2024, time.March, 5, 7), StopCode: "P01", Minutes: 60, Cell: "C1"},
}

func TestTopCodes(t *testing.T) {
	got := TopCodes(events, TopN)
	assert.Equal(t, []CodeMinutes{
		{StopCode: "P01", Minutes: 105},
		{StopCode: "P02", Minutes: 45},
		{StopCode: "P03", Minutes: 45},
	}, got)

	assert.Len(t, TopCodes(events, 1), 1)
}

func TestTopCodesKeepsTen(t *testing.T) {
	var many []Event
	for i := 0; i < 15; i++ {
		many = append(many, Event{Date: at(2024, time.January, 1, 0), StopCode: string(rune('A' + i)), Minutes: float64(i + 1)})
	}
	got := TopCodes(many, TopN)
	require.Len(t, got, 10)
	assert.Equal(t, "O", got[0].StopCode)
	assert.Equal(t, 15.0, got[0].Minutes)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Minutes, got[i].Minutes)
	}
}

func TestMonthly(t *testing.T) {
	got := Monthly(events)
	assert.Equal(t, []MonthMinutes{
		{Month: at(2024, time.January, 1, 0), Minutes: 75},
		{Month: at(2024, time.February, 1, 0), Minutes: 60},
		{Month: at(2024, time.March, 1, 0), Minutes: 60},
	}, got)
}

func TestByCellAndCode(t *testing.T) {
	got := ByCellAndCode(events)
	assert.Equal(t, []CellCodeMinutes{
		{Cell: "C1", StopCode: "P01", Minutes: 90},
		{Cell: "C1", StopCode: "P02", Minutes: 45},
		{Cell: "C2", StopCode: "P03", Minutes: 45},
		{Cell: "C2", StopCode: "P01", Minutes: 15},
	}, got)
}

func TestSummarizeFiltersWindow(t *testing.T) {
	w := pcp.PeriodWindow{Start: at(2024, time.February, 1, 0), End: at(2024, time.February, 29, 0)}
	s := Summarize(events, w)
	assert.Equal(t, 3, s.Events)
	require.Len(t, s.Monthly, 1)
	assert.Equal(t, 60.0, s.Monthly[0].Minutes)

	c := s.Chart()
	assert.Equal(t, "downtime", c.Name)
	require.Len(t, c.Series, 1)
	assert.Len(t, c.Series[0].Points, 1)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, pcp.PeriodWindow{Start: at(2024, time.January, 1, 0), End: at(2024, time.December, 31, 0)})
	assert.Zero(t, s.Events)
	assert.Empty(t, s.TopCode)
	assert.Empty(t, s.Monthly)
	assert.Empty(t, s.Detail)
}
