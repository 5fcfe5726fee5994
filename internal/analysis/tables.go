package analysis

import (
	"fmt"
	"math"

	"pharmacli/internal/chart"
	"pharmacli/internal/dataset"
	"pharmacli/internal/metrics"
	"pharmacli/internal/report"
)

// xlsxCell converts a Value to a spreadsheet cell, keeping undefined results
// visible as "n/a" rather than silently blank or zero.
func xlsxCell(v dataset.Value) interface{} {
	if !v.Defined {
		return "n/a"
	}
	return v.Float
}

// statsSection renders summary statistics as a markdown table
func statsSection(stats []metrics.ColumnStats) report.Section {
	headers := []string{"metric", "count", "undefined", "mean", "median", "std", "min", "q1", "q3", "max"}
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		if s.Count == 0 {
			rows = append(rows, []string{s.Metric.DisplayName(), "0", fmt.Sprint(s.Undefined),
				"n/a", "n/a", "n/a", "n/a", "n/a", "n/a", "n/a"})
			continue
		}
		rows = append(rows, []string{
			s.Metric.DisplayName(),
			fmt.Sprint(s.Count),
			fmt.Sprint(s.Undefined),
			fmt.Sprintf("%.2f", s.Mean),
			fmt.Sprintf("%.2f", s.Median),
			fmt.Sprintf("%.2f", s.Std),
			fmt.Sprintf("%.2f", s.Min),
			fmt.Sprintf("%.2f", s.Q1),
			fmt.Sprintf("%.2f", s.Q3),
			fmt.Sprintf("%.2f", s.Max),
		})
	}
	return report.TableSection("Summary Statistics", headers, rows)
}

// outlierSection lists flagged companies with the bounds or score that
// flagged them. An empty result is stated explicitly so the section never
// reads as forgotten.
func outlierSection(heading string, flagSets ...[]metrics.OutlierFlag) report.Section {
	var lines []string
	for _, flags := range flagSets {
		for _, f := range metrics.Outliers(flags) {
			switch f.Method {
			case metrics.MethodIQR:
				lines = append(lines, fmt.Sprintf("%s (%s) — %s outside [%.2f, %.2f]",
					f.Name, f.Code, f.Metric.DisplayName(), f.Lower, f.Upper))
			case metrics.MethodZScore:
				lines = append(lines, fmt.Sprintf("%s (%s) — %s |z| = %.2f > %.2f",
					f.Name, f.Code, f.Metric.DisplayName(), f.Score, f.Threshold))
			}
		}
	}
	if len(lines) == 0 {
		lines = []string{"No outliers detected."}
	}
	return report.Section{Heading: heading, Lines: lines}
}

// rankingSection renders the top and bottom lists for one metric
func rankingSection(rk metrics.Ranking) report.Section {
	lines := []string{fmt.Sprintf("### Top %d", rk.N)}
	for _, e := range rk.Top {
		lines = append(lines, fmt.Sprintf("%s (%s): %.2f", e.Name, e.Code, e.Value))
	}
	lines = append(lines, "", fmt.Sprintf("### Bottom %d", rk.N))
	for _, e := range rk.Bottom {
		lines = append(lines, fmt.Sprintf("%s (%s): %.2f", e.Name, e.Code, e.Value))
	}
	if rk.Undefined > 0 {
		lines = append(lines, "", fmt.Sprintf("Excluded (undefined): %d", rk.Undefined))
	}
	return report.Section{
		Heading: fmt.Sprintf("Top/Bottom by %s", rk.Metric.DisplayName()),
		Lines:   lines,
	}
}

// scatterPoints builds labeled chart points from two per-company accessors,
// skipping companies where either axis value is undefined.
func scatterPoints(ms []metrics.CompanyMetrics, x, y func(metrics.CompanyMetrics) dataset.Value) []chart.Point {
	var pts []chart.Point
	for _, m := range ms {
		xv, yv := x(m), y(m)
		if !xv.Defined || !yv.Defined {
			continue
		}
		pts = append(pts, chart.Point{X: xv.Float, Y: yv.Float, Label: m.Name})
	}
	return pts
}

// log10Of adapts a raw-figure accessor to its base-10 logarithm, undefined
// for non-positive inputs.
func log10Of(f func(metrics.CompanyMetrics) dataset.Value) func(metrics.CompanyMetrics) dataset.Value {
	return func(m metrics.CompanyMetrics) dataset.Value {
		v := f(m)
		if !v.Defined || v.Float <= 0 {
			return dataset.Undefined()
		}
		return dataset.Defined(math.Log10(v.Float))
	}
}
