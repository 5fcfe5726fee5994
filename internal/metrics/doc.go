// Package metrics implements the analytical core of the pipeline: derivation
// of standard financial ratios from raw company figures, cross-sectional
// outlier detection, top/bottom ranking and summary statistics.
//
// Every function in this package is a pure transform of its inputs. A ratio
// with a zero denominator carries the explicit undefined marker
// (dataset.Value with Defined=false); summary statistics count undefined
// values instead of silently ignoring them, and rankings exclude them.
//
//   - metrics.go:  ratio derivation (CompanyRecord -> CompanyMetrics)
//   - outliers.go: IQR and z-score outlier flags over a metric column
//   - ranking.go:  deterministic top/bottom-N extraction
//   - summary.go:  per-metric descriptive statistics
//   - stats.go:    shared quantile and moment helpers
//
// Determinism: identical input tables produce identical derived records,
// flags and rankings. All ties break by security code ascending.
package metrics
