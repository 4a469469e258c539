package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	ccsv "pcp-stats/connectors/csv"
)

func TestRunWritesDeckAndCharts(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yml"))
	dir := t.TempDir()
	base := "month,lead_time_mean,efetividade_media,perda_prem_R,pct_refugo_prem\n2024-01-01,3,1.1,60000,10\n2024-02-01,4,1.2,40000,8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ccsv.BaseFile), []byte(base), 0o644))

	out := filepath.Join(dir, "out", "deck.xlsx")
	charts := filepath.Join(dir, "charts")
	require.NoError(t, Run([]string{"-data", dir, "-out", out, "-charts", charts}))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Capa", f.GetSheetList()[0])
	assert.Len(t, f.GetSheetList(), 6)

	assert.FileExists(t, filepath.Join(charts, "lead_time.png"))
	assert.FileExists(t, filepath.Join(charts, "simulation.png"))
}

func TestRunDefaultsOutIntoDataDir(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yml"))
	dir := t.TempDir()
	base := "month,lead_time_mean,efetividade_media,perda_prem_R,pct_refugo_prem\n2024-01-01,3,1.1,60000,10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ccsv.BaseFile), []byte(base), 0o644))
	cwd := t.TempDir()
	t.Chdir(cwd)

	require.NoError(t, Run([]string{"-data", dir}))

	assert.FileExists(t, filepath.Join(dir, "pcp_report.xlsx"))
	assert.NoDirExists(t, filepath.Join(cwd, "data"))
}
