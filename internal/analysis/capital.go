package analysis

import (
	"context"
	"fmt"
	"path/filepath"

	"pharmacli/internal/chart"
	"pharmacli/internal/dataset"
	"pharmacli/internal/metrics"
	"pharmacli/internal/report"
)

// runCapitalEfficiency examines how balance-sheet structure turns into
// returns: ROA against ROE, the leverage-driven gap between them, equity
// ratio and asset turnover. ROE outliers use the z-score method because the
// leverage effect makes ROE the heaviest-tailed column in the table.
func (r *Runner) runCapitalEfficiency(ctx context.Context, d *Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms := d.Companies

	headers := []string{"code", "name", "roa", "roe", "roe_roa_gap", "equity_ratio", "asset_turnover"}
	csvRows := make([][]string, 0, len(ms))
	xlsxRows := make([][]interface{}, 0, len(ms))
	for _, m := range ms {
		csvRows = append(csvRows, []string{
			m.Code, m.Name,
			report.FormatValue(m.ROA, 2),
			report.FormatValue(m.ROE, 2),
			report.FormatValue(m.ROEROAGap, 2),
			report.FormatValue(m.EquityRatio, 2),
			report.FormatValue(m.AssetTurnover, 2),
		})
		xlsxRows = append(xlsxRows, []interface{}{
			m.Code, m.Name,
			xlsxCell(m.ROA), xlsxCell(m.ROE), xlsxCell(m.ROEROAGap),
			xlsxCell(m.EquityRatio), xlsxCell(m.AssetTurnover),
		})
	}
	if err := r.csv.WriteSimpleCSV("03_capital_efficiency_table.csv", headers, csvRows); err != nil {
		return fmt.Errorf("write capital-efficiency table: %w", err)
	}
	if err := r.xlsx.WriteTable("03_capital_efficiency_table.xlsx", "CapitalEfficiency", headers, xlsxRows); err != nil {
		return fmt.Errorf("write capital-efficiency workbook: %w", err)
	}

	roa := func(m metrics.CompanyMetrics) dataset.Value { return m.ROA }
	roe := func(m metrics.CompanyMetrics) dataset.Value { return m.ROE }
	equity := func(m metrics.CompanyMetrics) dataset.Value { return m.EquityRatio }

	if err := r.figures.Scatter("fig_03_roa_vs_roe.png", chart.ScatterOptions{
		Title:    "ROA vs ROE",
		XLabel:   metrics.MetricROA.DisplayName(),
		YLabel:   metrics.MetricROE.DisplayName(),
		Groups:   [][]chart.Point{scatterPoints(ms, roa, roe)},
		Annotate: true,
	}); err != nil {
		return fmt.Errorf("render roa-vs-roe figure: %w", err)
	}
	if err := r.figures.Scatter("fig_03_equity_ratio_vs_roe.png", chart.ScatterOptions{
		Title:    "Equity Ratio vs ROE",
		XLabel:   metrics.MetricEquityRatio.DisplayName(),
		YLabel:   metrics.MetricROE.DisplayName(),
		Groups:   [][]chart.Point{scatterPoints(ms, equity, roe)},
		Annotate: true,
	}); err != nil {
		return fmt.Errorf("render equity-vs-roe figure: %w", err)
	}

	roeFlags := metrics.DetectZScore(ms, metrics.MetricROE, r.cfg.Outliers.ZScoreThreshold)

	doc := report.Document{
		Title: "Capital Efficiency",
		Meta:  d.metaLines(),
		Sections: []report.Section{
			statsSection(metrics.Summarize(ms, []metrics.Metric{
				metrics.MetricROA,
				metrics.MetricROE,
				metrics.MetricROEROAGap,
				metrics.MetricEquityRatio,
				metrics.MetricAssetTurnover,
			})),
			outlierSection("Outliers (z-score)", roeFlags),
			rankingSection(metrics.TopBottom(ms, metrics.MetricROA, r.cfg.Ranking.TopN)),
			rankingSection(metrics.TopBottom(ms, metrics.MetricROE, r.cfg.Ranking.TopN)),
			rankingSection(metrics.TopBottom(ms, metrics.MetricEquityRatio, r.cfg.Ranking.TopN)),
			rankingSection(metrics.TopBottom(ms, metrics.MetricROEROAGap, r.cfg.Ranking.TopN)),
		},
	}
	return r.reports.Write(filepath.Join(r.cfg.Output.Dir, "03_summary.md"), doc, r.cfg.Output.OverwriteCommentary)
}
