package metrics

import (
	"math"
)

// Method identifies the outlier-detection method behind a flag.
type Method string

const (
	MethodIQR    Method = "iqr"
	MethodZScore Method = "zscore"
)

// Default detection parameters; overridable through configuration.
const (
	DefaultIQRFactor       = 1.5
	DefaultZScoreThreshold = 2.0
)

// OutlierFlag records the outlier decision for one company on one metric,
// together with the method and the bounds or threshold that produced it.
// Flags are cross-sectional: bounds come from the distribution of the metric
// across the whole dataset.
type OutlierFlag struct {
	Code    string
	Name    string
	Metric  Metric
	Method  Method
	Outlier bool

	// IQR bounds (Method == MethodIQR)
	Lower float64
	Upper float64

	// Z-score threshold and observed score (Method == MethodZScore)
	Threshold float64
	Score     float64
}

// DetectIQR flags values outside [Q1 - factor*IQR, Q3 + factor*IQR].
// Companies whose metric is undefined receive no flag. A zero-variance column
// collapses the fences onto the constant value and flags nothing.
func DetectIQR(ms []CompanyMetrics, metric Metric, factor float64) []OutlierFlag {
	if factor <= 0 {
		factor = DefaultIQRFactor
	}
	vals, _ := definedValues(ms, metric)
	if len(vals) == 0 {
		return nil
	}

	q1 := quantile(vals, 0.25)
	q3 := quantile(vals, 0.75)
	iqr := q3 - q1
	lower := q1 - factor*iqr
	upper := q3 + factor*iqr

	var flags []OutlierFlag
	for _, m := range ms {
		v := m.Value(metric)
		if !v.Defined {
			continue
		}
		flags = append(flags, OutlierFlag{
			Code:    m.Code,
			Name:    m.Name,
			Metric:  metric,
			Method:  MethodIQR,
			Outlier: v.Float < lower || v.Float > upper,
			Lower:   lower,
			Upper:   upper,
		})
	}
	return flags
}

// DetectZScore flags values whose |x - mean| / stddev exceeds the threshold.
// A zero standard deviation flags nothing instead of dividing by zero.
func DetectZScore(ms []CompanyMetrics, metric Metric, threshold float64) []OutlierFlag {
	if threshold <= 0 {
		threshold = DefaultZScoreThreshold
	}
	vals, _ := definedValues(ms, metric)
	if len(vals) == 0 {
		return nil
	}

	mu := mean(vals)
	sigma := stddev(vals)

	var flags []OutlierFlag
	for _, m := range ms {
		v := m.Value(metric)
		if !v.Defined {
			continue
		}
		score := 0.0
		if sigma > 0 {
			score = math.Abs(v.Float-mu) / sigma
		}
		flags = append(flags, OutlierFlag{
			Code:      m.Code,
			Name:      m.Name,
			Metric:    metric,
			Method:    MethodZScore,
			Outlier:   sigma > 0 && score > threshold,
			Threshold: threshold,
			Score:     score,
		})
	}
	return flags
}

// Outliers filters a flag list down to the companies actually flagged
func Outliers(flags []OutlierFlag) []OutlierFlag {
	var out []OutlierFlag
	for _, f := range flags {
		if f.Outlier {
			out = append(out, f)
		}
	}
	return out
}
