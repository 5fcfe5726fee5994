package metrics

// ColumnStats are descriptive statistics for one metric column. Undefined
// counts how many companies had no defined value for the metric; the moments
// cover the defined values only.
type ColumnStats struct {
	Metric    Metric
	Count     int // defined observations
	Undefined int
	Mean      float64
	Median    float64
	Std       float64
	Min       float64
	Q1        float64
	Q3        float64
	Max       float64
}

// Summarize computes descriptive statistics for each requested metric.
// Metrics with no defined values at all still appear in the output with
// Count=0 so the report shows how much of the table was undefined.
func Summarize(ms []CompanyMetrics, metricList []Metric) []ColumnStats {
	out := make([]ColumnStats, 0, len(metricList))
	for _, metric := range metricList {
		vals, undefined := definedValues(ms, metric)
		stats := ColumnStats{
			Metric:    metric,
			Count:     len(vals),
			Undefined: undefined,
		}
		if len(vals) > 0 {
			stats.Mean = mean(vals)
			stats.Median = quantile(vals, 0.5)
			stats.Std = stddev(vals)
			stats.Q1 = quantile(vals, 0.25)
			stats.Q3 = quantile(vals, 0.75)
			stats.Min, stats.Max = minMax(vals)
		}
		out = append(out, stats)
	}
	return out
}
