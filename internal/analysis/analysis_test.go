package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pharmacli/internal/config"
	"pharmacli/internal/dataset"
	"pharmacli/internal/metrics"
)

// thirteen pharma companies; 4599 carries zero total assets and blank
// ROA/ROE, exercising the undefined-value path end to end.
var testRows = [][]interface{}{
	{"証券コード", "企業名", "売上高", "営業利益", "当期純利益", "総資産", "自己資本", "ROA", "ROE"},
	{"4502", "Takeda", 4263762, 142794, 95522, 13957501, 7142411, 0.7, 1.3},
	{"4503", "Astellas", 1518965, 113717, 17021, 3161957, 1550043, 0.5, 1.1},
	{"4507", "Shionogi", 450000, 150000, 120000, 1300000, 1000000, 9.2, 12.0},
	{"4151", "Kyowa Kirin", 442333, 100846, 81917, 1100000, 900000, 7.4, 9.1},
	{"4528", "Ono", 447519, 141003, 104211, 1000000, 850000, 10.4, 12.3},
	{"4568", "Daiichi Sankyo", 1601688, 211589, 191706, 3400000, 1600000, 5.6, 12.0},
	{"4519", "Chugai", 1111367, 434567, 332549, 1800000, 1500000, 18.5, 22.2},
	{"4523", "Eisai", 741751, 53545, 55425, 1200000, 800000, 4.6, 6.9},
	{"4578", "Otsuka", 2018446, 303634, 245447, 3200000, 2200000, 7.7, 11.2},
	{"4506", "Sumitomo Pharma", 314558, -354827, -314933, 800000, 200000, -39.4, -157.5},
	{"4521", "Kaken", 119480, 13422, 10882, 220000, 170000, 4.9, 6.4},
	{"4540", "Tsumura", 150006, 25461, 19343, 350000, 280000, 5.5, 6.9},
	{"4599", "StemRIM", 500, -1500, -1400, 0, 0, nil, nil},
}

func writeTestWorkbook(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "financials.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range testRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input.Path = writeTestWorkbook(t, dir)
	cfg.Output.Dir = filepath.Join(dir, "output")
	return &cfg
}

func TestRunnerLoadDataset(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(cfg, "test-run", nil)

	ds, err := r.LoadDataset()
	require.NoError(t, err)
	require.Len(t, ds.Companies, 13)

	byCode := make(map[string]metrics.CompanyMetrics)
	for _, m := range ds.Companies {
		byCode[m.Code] = m
	}

	// Zero total assets: turnover and equity ratio undefined, never zero.
	stemrim := byCode["4599"]
	assert.False(t, stemrim.AssetTurnover.Defined)
	assert.False(t, stemrim.EquityRatio.Defined)
	assert.False(t, stemrim.ROA.Defined)

	takeda := byCode["4502"]
	assert.InDelta(t, 3.349, takeda.OperatingMargin.Float, 0.01)
	assert.Equal(t, dataset.Defined(0.7), takeda.ROA)
}

func TestRunnerRunAll(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(cfg, "test-run", nil)

	require.NoError(t, r.Run(context.Background(), 0, false))

	wantFiles := []string{
		"01_positioning_table.csv",
		"01_positioning_table.xlsx",
		"fig_01_assets_vs_roa.png",
		"fig_01_revenue_vs_opm.png",
		"01_summary.md",
		"02_profitability_table.csv",
		"02_profitability_table.xlsx",
		"fig_02_opm_vs_npm.png",
		"fig_02_margins_by_company.png",
		"02_summary.md",
		"03_capital_efficiency_table.csv",
		"03_capital_efficiency_table.xlsx",
		"fig_03_roa_vs_roe.png",
		"fig_03_equity_ratio_vs_roe.png",
		"03_summary.md",
		"04_cluster_assignments.csv",
		"04_cluster_profiles.csv",
		"04_cluster_profiles.xlsx",
		"fig_04_pca_scatter.png",
		"04_summary.md",
	}
	for _, name := range wantFiles {
		_, err := os.Stat(filepath.Join(cfg.Output.Dir, name))
		assert.NoError(t, err, "missing artifact %s", name)
	}
}

func TestRunnerUndefinedStaysVisible(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(cfg, "test-run", nil)
	require.NoError(t, r.Run(context.Background(), 1, false))

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "01_positioning_table.csv"))
	require.NoError(t, err)

	var stemrimLine string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "4599") {
			stemrimLine = line
		}
	}
	require.NotEmpty(t, stemrimLine)
	assert.Contains(t, stemrimLine, "n/a")
	assert.NotContains(t, stemrimLine, "Inf")
	assert.NotContains(t, stemrimLine, "NaN")
}

func TestRunnerSingleAnalysis(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(cfg, "test-run", nil)
	require.NoError(t, r.Run(context.Background(), 3, false))

	_, err := os.Stat(filepath.Join(cfg.Output.Dir, "03_summary.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "01_summary.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunnerUnknownAnalysis(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(cfg, "test-run", nil)
	assert.Error(t, r.Run(context.Background(), 9, false))
}

func TestRunnerClusteringExcludesUndefined(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(cfg, "test-run", nil)
	require.NoError(t, r.Run(context.Background(), 4, false))

	summary, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "04_summary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Selected k")
	assert.Contains(t, string(summary), "4599")

	assignments, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "04_cluster_assignments.csv"))
	require.NoError(t, err)
	assert.NotContains(t, string(assignments), "4599")
}

func TestRunnerPreservesCommentaryAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(cfg, "test-run", nil)
	require.NoError(t, r.Run(context.Background(), 2, false))

	path := filepath.Join(cfg.Output.Dir, "02_summary.md")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	edited := strings.Replace(string(data),
		"_Add analyst observations here._",
		"Chugai's margin lead is priced in.", 1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0644))

	require.NoError(t, r.Run(context.Background(), 2, false))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(after), "Chugai's margin lead is priced in.")
	assert.NotContains(t, string(after), "_Add analyst observations here._")
}

func TestRunnerMissingWorkbook(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.Path = filepath.Join(t.TempDir(), "absent.xlsx")
	r := NewRunner(cfg, "test-run", nil)
	assert.Error(t, r.Run(context.Background(), 0, false))
}

func TestOutlierSectionEmpty(t *testing.T) {
	s := outlierSection("Outliers (IQR)", nil)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, "No outliers detected.", s.Lines[0])
}

func TestRankingSection(t *testing.T) {
	ms := []metrics.CompanyMetrics{
		{Code: "1001", Name: "A", ROA: dataset.Defined(5)},
		{Code: "1002", Name: "B", ROA: dataset.Defined(9)},
		{Code: "1003", Name: "C", ROA: dataset.Defined(1)},
		{Code: "1004", Name: "D"},
	}
	s := rankingSection(metrics.TopBottom(ms, metrics.MetricROA, 2))

	assert.Equal(t, "Top/Bottom by ROA (%)", s.Heading)
	assert.Contains(t, s.Lines, "B (1002): 9.00")
	assert.Contains(t, s.Lines, "C (1003): 1.00")
	assert.Contains(t, s.Lines, "Excluded (undefined): 1")
}

func TestLog10Of(t *testing.T) {
	rev := func(m metrics.CompanyMetrics) dataset.Value { return m.Revenue }
	f := log10Of(rev)

	assert.Equal(t, dataset.Defined(3), f(metrics.CompanyMetrics{Revenue: dataset.Defined(1000)}))
	assert.False(t, f(metrics.CompanyMetrics{Revenue: dataset.Defined(0)}).Defined)
	assert.False(t, f(metrics.CompanyMetrics{Revenue: dataset.Defined(-5)}).Defined)
	assert.False(t, f(metrics.CompanyMetrics{}).Defined)
}

func TestXLSXCell(t *testing.T) {
	assert.Equal(t, 1.5, xlsxCell(dataset.Defined(1.5)))
	assert.Equal(t, "n/a", xlsxCell(dataset.Undefined()))
}
