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

// runPositioning maps company size (revenue, total assets) against efficiency
// (ROA, operating margin): the full ratio table, two scatter figures, IQR
// outliers and the ROA ranking.
func (r *Runner) runPositioning(ctx context.Context, d *Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms := d.Companies

	headers := []string{"code", "name", "revenue", "total_assets",
		"operating_margin", "net_margin", "roa", "roe", "equity_ratio", "asset_turnover"}
	csvRows := make([][]string, 0, len(ms))
	xlsxRows := make([][]interface{}, 0, len(ms))
	for _, m := range ms {
		csvRows = append(csvRows, []string{
			m.Code, m.Name,
			report.FormatValue(m.Revenue, 0),
			report.FormatValue(m.TotalAssets, 0),
			report.FormatValue(m.OperatingMargin, 2),
			report.FormatValue(m.NetMargin, 2),
			report.FormatValue(m.ROA, 2),
			report.FormatValue(m.ROE, 2),
			report.FormatValue(m.EquityRatio, 2),
			report.FormatValue(m.AssetTurnover, 2),
		})
		xlsxRows = append(xlsxRows, []interface{}{
			m.Code, m.Name,
			xlsxCell(m.Revenue), xlsxCell(m.TotalAssets),
			xlsxCell(m.OperatingMargin), xlsxCell(m.NetMargin),
			xlsxCell(m.ROA), xlsxCell(m.ROE),
			xlsxCell(m.EquityRatio), xlsxCell(m.AssetTurnover),
		})
	}
	if err := r.csv.WriteSimpleCSV("01_positioning_table.csv", headers, csvRows); err != nil {
		return fmt.Errorf("write positioning table: %w", err)
	}
	if err := r.xlsx.WriteTable("01_positioning_table.xlsx", "Positioning", headers, xlsxRows); err != nil {
		return fmt.Errorf("write positioning workbook: %w", err)
	}

	assets := func(m metrics.CompanyMetrics) dataset.Value { return m.TotalAssets }
	revenue := func(m metrics.CompanyMetrics) dataset.Value { return m.Revenue }
	roa := func(m metrics.CompanyMetrics) dataset.Value { return m.ROA }
	opm := func(m metrics.CompanyMetrics) dataset.Value { return m.OperatingMargin }

	if err := r.figures.Scatter("fig_01_assets_vs_roa.png", chart.ScatterOptions{
		Title:    "Total Assets vs ROA",
		XLabel:   "log10(total assets)",
		YLabel:   metrics.MetricROA.DisplayName(),
		Groups:   [][]chart.Point{scatterPoints(ms, log10Of(assets), roa)},
		Annotate: true,
	}); err != nil {
		return fmt.Errorf("render assets-vs-roa figure: %w", err)
	}
	if err := r.figures.Scatter("fig_01_revenue_vs_opm.png", chart.ScatterOptions{
		Title:    "Revenue vs Operating Margin",
		XLabel:   "log10(revenue)",
		YLabel:   metrics.MetricOperatingMargin.DisplayName(),
		Groups:   [][]chart.Point{scatterPoints(ms, log10Of(revenue), opm)},
		Annotate: true,
	}); err != nil {
		return fmt.Errorf("render revenue-vs-opm figure: %w", err)
	}

	roaFlags := metrics.DetectIQR(ms, metrics.MetricROA, r.cfg.Outliers.IQRFactor)
	opmFlags := metrics.DetectIQR(ms, metrics.MetricOperatingMargin, r.cfg.Outliers.IQRFactor)
	ranking := metrics.TopBottom(ms, metrics.MetricROA, r.cfg.Ranking.TopN)

	doc := report.Document{
		Title: "Positioning: Size vs Efficiency",
		Meta:  d.metaLines(),
		Sections: []report.Section{
			statsSection(metrics.Summarize(ms, []metrics.Metric{
				metrics.MetricOperatingMargin,
				metrics.MetricNetMargin,
				metrics.MetricROA,
				metrics.MetricROE,
				metrics.MetricEquityRatio,
				metrics.MetricAssetTurnover,
			})),
			outlierSection("Outliers (IQR)", roaFlags, opmFlags),
			rankingSection(ranking),
		},
	}
	return r.reports.Write(filepath.Join(r.cfg.Output.Dir, "01_summary.md"), doc, r.cfg.Output.OverwriteCommentary)
}
