package cluster

import (
	"math"

	"pharmacli/internal/dataset"
	"pharmacli/internal/metrics"
)

// Feature names one clustering input dimension.
type Feature string

const (
	// FeatureLogRevenue is log10 of revenue: size on a scale comparable to
	// the ratio features once standardized
	FeatureLogRevenue      Feature = "log_revenue"
	FeatureOperatingMargin Feature = "operating_margin"
	FeatureNetMargin       Feature = "net_margin"
	FeatureROA             Feature = "roa"
	FeatureROE             Feature = "roe"
	FeatureEquityRatio     Feature = "equity_ratio"
)

// DefaultFeatures is the standard feature set: size, profitability,
// efficiency and balance-sheet quality.
func DefaultFeatures() []Feature {
	return []Feature{
		FeatureLogRevenue,
		FeatureOperatingMargin,
		FeatureNetMargin,
		FeatureROA,
		FeatureROE,
		FeatureEquityRatio,
	}
}

// featureValue extracts one feature of a company, undefined when the
// underlying metric is undefined or, for log revenue, not positive.
func featureValue(m metrics.CompanyMetrics, f Feature) dataset.Value {
	switch f {
	case FeatureLogRevenue:
		if !m.Revenue.Defined || m.Revenue.Float <= 0 {
			return dataset.Undefined()
		}
		return dataset.Defined(math.Log10(m.Revenue.Float))
	case FeatureOperatingMargin:
		return m.OperatingMargin
	case FeatureNetMargin:
		return m.NetMargin
	case FeatureROA:
		return m.ROA
	case FeatureROE:
		return m.ROE
	case FeatureEquityRatio:
		return m.EquityRatio
	default:
		return dataset.Undefined()
	}
}

// featureRow builds the full feature vector for a company; ok is false when
// any feature is undefined, excluding the company from clustering.
func featureRow(m metrics.CompanyMetrics, features []Feature) ([]float64, bool) {
	row := make([]float64, len(features))
	for i, f := range features {
		v := featureValue(m, f)
		if !v.Defined {
			return nil, false
		}
		row[i] = v.Float
	}
	return row, true
}
