package csv

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcp-stats/domain/pcp"
)

const baseCSV = "\ufeffmonth,lead_time_mean,efetividade_media,perda_total_m3,perda_prem_R,pct_refugo_prem,celula\n" +
	"2024-02-01,4.5,1.2,10,2500.5,12,C2\n" +
	"2024-01-01,3,1.1,,1000,0,C1\n" +
	",,,,,,\n" +
	"2024-03,5,NaN,8,-10,20,C1\n"

func TestReadBase(t *testing.T) {
	ds, err := ReadBase(strings.NewReader(baseCSV))
	require.NoError(t, err)

	assert.Equal(t, pcp.Capabilities{Cell: true, TotalLossM3: true}, ds.Capabilities())
	rs := ds.Records()
	require.Len(t, rs, 3)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), rs[0].Month)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), rs[2].Month)
	assert.Equal(t, "C1", rs[0].Cell)
	assert.True(t, math.IsNaN(rs[0].TotalLossM3))
	assert.True(t, math.IsNaN(rs[0].PrematureM3))
	assert.True(t, math.IsNaN(rs[2].Effectiveness))
	assert.Equal(t, 2500.5, rs[1].PrematureLoss)
	assert.Equal(t, -10.0, rs[2].PrematureLoss)
}

func TestReadBaseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty file", "", pcp.ErrMissingColumn},
		{"missing pct", "month,lead_time_mean,efetividade_media,perda_prem_R\n2024-01-01,1,1,1\n", pcp.ErrMissingColumn},
		{"bad month", "month,lead_time_mean,efetividade_media,perda_prem_R,pct_refugo_prem\njaneiro,1,1,1,1\n", pcp.ErrMalformedMonth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBase(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := ReadBase(strings.NewReader("month,lead_time_mean,efetividade_media,perda_prem_R,pct_refugo_prem\n2024-01-01,abc,1,1,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead_time_mean")
}

func TestWriteRecordsRoundTrip(t *testing.T) {
	ds, err := ReadBase(strings.NewReader(baseCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, ds.Capabilities(), ds.Records()))
	assert.True(t, strings.HasPrefix(buf.String(), "month,lead_time_mean,efetividade_media,perda_total_m3,perda_prem_R,pct_refugo_prem,celula\n"))

	again, err := ReadBase(&buf)
	require.NoError(t, err)
	assert.Equal(t, ds.Capabilities(), again.Capabilities())
	require.Equal(t, ds.Len(), again.Len())
	for i, r := range ds.Records() {
		got := again.Records()[i]
		assert.Equal(t, r.Month, got.Month)
		assert.Equal(t, r.Cell, got.Cell)
		assert.Equal(t, r.PrematureLoss, got.PrematureLoss)
		assert.Equal(t, math.IsNaN(r.Effectiveness), math.IsNaN(got.Effectiveness))
	}
}

func TestReadDowntime(t *testing.T) {
	in := "data,codigo_parada,minutos,celula\n" +
		"2024-01-05 08:30:00,P01,30,C1\n" +
		"05/02/2024,P02,,C2\n"
	events, err := ReadDowntime(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, time.Date(2024, time.January, 5, 8, 30, 0, 0, time.UTC), events[0].Date)
	assert.Equal(t, time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC), events[1].Date)
	assert.True(t, math.IsNaN(events[1].Minutes))

	_, err = ReadDowntime(strings.NewReader("data,minutos\n2024-01-01,3\n"))
	assert.ErrorIs(t, err, pcp.ErrMissingColumn)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, BaseFile), []byte(baseCSV), 0o644))

	ds, events, err := LoadDir(dir, BaseFile, DowntimeFile)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Nil(t, events)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DowntimeFile), []byte("data,codigo_parada,minutos,celula\n2024-01-05,P01,30,C1\n"), 0o644))
	_, events, err = LoadDir(dir, BaseFile, DowntimeFile)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, _, err = LoadDir(t.TempDir(), BaseFile, DowntimeFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
