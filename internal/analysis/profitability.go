package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"pharmacli/internal/chart"
	"pharmacli/internal/dataset"
	"pharmacli/internal/metrics"
	"pharmacli/internal/report"
)

// runProfitability decomposes profitability into operating margin, net margin
// and the gap between them. The table is sorted by margin gap descending so
// the companies leaking the most between operating and net profit lead.
func (r *Runner) runProfitability(ctx context.Context, d *Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms := append([]metrics.CompanyMetrics(nil), d.Companies...)
	sort.Slice(ms, func(i, j int) bool {
		a, b := ms[i].MarginGap, ms[j].MarginGap
		switch {
		case a.Defined && !b.Defined:
			return true
		case !a.Defined && b.Defined:
			return false
		case a.Defined && b.Defined && a.Float != b.Float:
			return a.Float > b.Float
		default:
			return ms[i].Code < ms[j].Code
		}
	})

	headers := []string{"code", "name", "operating_margin", "net_margin", "margin_gap"}
	csvRows := make([][]string, 0, len(ms))
	xlsxRows := make([][]interface{}, 0, len(ms))
	for _, m := range ms {
		csvRows = append(csvRows, []string{
			m.Code, m.Name,
			report.FormatValue(m.OperatingMargin, 2),
			report.FormatValue(m.NetMargin, 2),
			report.FormatValue(m.MarginGap, 2),
		})
		xlsxRows = append(xlsxRows, []interface{}{
			m.Code, m.Name,
			xlsxCell(m.OperatingMargin), xlsxCell(m.NetMargin), xlsxCell(m.MarginGap),
		})
	}
	if err := r.csv.WriteSimpleCSV("02_profitability_table.csv", headers, csvRows); err != nil {
		return fmt.Errorf("write profitability table: %w", err)
	}
	if err := r.xlsx.WriteTable("02_profitability_table.xlsx", "Profitability", headers, xlsxRows); err != nil {
		return fmt.Errorf("write profitability workbook: %w", err)
	}

	opm := func(m metrics.CompanyMetrics) dataset.Value { return m.OperatingMargin }
	npm := func(m metrics.CompanyMetrics) dataset.Value { return m.NetMargin }

	if err := r.figures.Scatter("fig_02_opm_vs_npm.png", chart.ScatterOptions{
		Title:    "Operating Margin vs Net Margin",
		XLabel:   metrics.MetricOperatingMargin.DisplayName(),
		YLabel:   metrics.MetricNetMargin.DisplayName(),
		Groups:   [][]chart.Point{scatterPoints(d.Companies, opm, npm)},
		Annotate: true,
	}); err != nil {
		return fmt.Errorf("render opm-vs-npm figure: %w", err)
	}

	var bars []chart.Point
	for _, m := range ms {
		if m.OperatingMargin.Defined {
			bars = append(bars, chart.Point{Label: m.Name, Y: m.OperatingMargin.Float})
		}
	}
	if err := r.figures.Bar("fig_02_margins_by_company.png", chart.BarOptions{
		Title:  "Operating Margin by Company",
		YLabel: metrics.MetricOperatingMargin.DisplayName(),
		Bars:   bars,
	}); err != nil {
		return fmt.Errorf("render margins bar figure: %w", err)
	}

	doc := report.Document{
		Title: "Profitability Decomposition",
		Meta:  d.metaLines(),
		Sections: []report.Section{
			statsSection(metrics.Summarize(d.Companies, []metrics.Metric{
				metrics.MetricOperatingMargin,
				metrics.MetricNetMargin,
				metrics.MetricMarginGap,
			})),
			rankingSection(metrics.TopBottom(d.Companies, metrics.MetricOperatingMargin, r.cfg.Ranking.TopN)),
			rankingSection(metrics.TopBottom(d.Companies, metrics.MetricNetMargin, r.cfg.Ranking.TopN)),
			rankingSection(metrics.TopBottom(d.Companies, metrics.MetricMarginGap, r.cfg.Ranking.TopN)),
		},
	}
	return r.reports.Write(filepath.Join(r.cfg.Output.Dir, "02_summary.md"), doc, r.cfg.Output.OverwriteCommentary)
}
