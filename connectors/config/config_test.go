package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcp-stats/domain/pcp"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := `
data:
  dir: /srv/pcp
period:
  preset: custom
  start: "2024-01-01"
targets:
  monthly_loss: 42000
  subgroup_axis: familia
  subgroups:
    F1: 1000
    F2: 2500
sources:
  s3:
    bucket: pcp-exports
    key: monthly/pcp_data.csv
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/pcp", c.Data.Dir)
	assert.Equal(t, "pcp_data.csv", c.Data.Base)
	assert.Equal(t, 42000.0, c.Targets.MonthlyLoss)
	assert.Equal(t, 50.0, c.Targets.Compliance)
	assert.Equal(t, "pcp-exports", c.Sources.S3.Bucket)
	assert.Equal(t, "pcp_monthly", c.Sources.Postgres.Table)

	sel, err := c.Selection()
	require.NoError(t, err)
	assert.Equal(t, pcp.Custom, sel.Preset)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), sel.Start)
	assert.True(t, sel.End.IsZero())

	q, err := c.Query(sel)
	require.NoError(t, err)
	assert.Equal(t, pcp.AxisFamily, q.Axis)
	assert.Equal(t, 2500.0, q.SubgroupTargets.For("F2"))
	assert.Zero(t, q.SubgroupTargets.For("F9"))
	assert.Equal(t, pcp.DefaultRollingWindow, q.RollingWindow)
}

func TestQuerySubgroupAxis(t *testing.T) {
	tests := []struct {
		axis    string
		want    pcp.Axis
		wantErr bool
	}{
		{"", "", false},
		{"celula", pcp.AxisCell, false},
		{" Familia ", pcp.AxisFamily, false},
		{"celulla", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.axis, func(t *testing.T) {
			c := Default()
			c.Targets.SubgroupAxis = tt.axis
			q, err := c.Query(pcp.Selection{})
			if tt.wantErr {
				assert.ErrorIs(t, err, pcp.ErrAxisUnavailable)
				assert.ErrorContains(t, err, "targets.subgroup_axis")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Axis)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("targets: [1, 2"), 0o644))
	_, err = LoadOrDefault(bad)
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, Path())
	t.Setenv("CONFIG_PATH", "/etc/pcp.yml")
	assert.Equal(t, "/etc/pcp.yml", Path())
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection("last_6_months", "garbage", "")
	require.NoError(t, err)
	assert.Equal(t, pcp.Last6Months, sel.Preset)
	assert.True(t, sel.Start.IsZero())

	_, err = ParseSelection("custom", "2024-13-01", "")
	assert.Error(t, err)

	_, err = ParseSelection("yesterday", "", "")
	assert.ErrorIs(t, err, pcp.ErrUnknownPreset)
}
