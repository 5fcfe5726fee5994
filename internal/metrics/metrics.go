package metrics

import (
	"pharmacli/internal/dataset"
)

// Metric names a derived metric column.
type Metric string

const (
	MetricOperatingMargin Metric = "operating_margin"
	MetricNetMargin       Metric = "net_margin"
	MetricEquityRatio     Metric = "equity_ratio"
	MetricAssetTurnover   Metric = "asset_turnover"
	MetricROA             Metric = "roa"
	MetricROE             Metric = "roe"
	MetricROEROAGap       Metric = "roe_roa_gap"
	MetricMarginGap       Metric = "margin_gap"
)

// DisplayName returns the human-readable label used in reports and charts
func (m Metric) DisplayName() string {
	switch m {
	case MetricOperatingMargin:
		return "Operating Margin (%)"
	case MetricNetMargin:
		return "Net Margin (%)"
	case MetricEquityRatio:
		return "Equity Ratio (%)"
	case MetricAssetTurnover:
		return "Asset Turnover (x)"
	case MetricROA:
		return "ROA (%)"
	case MetricROE:
		return "ROE (%)"
	case MetricROEROAGap:
		return "ROE-ROA Gap (pt)"
	case MetricMarginGap:
		return "Margin Gap (pt)"
	default:
		return string(m)
	}
}

// CompanyMetrics is the derived record for one company. Margin and ratio
// metrics are on the percent scale; asset turnover is a plain multiple.
type CompanyMetrics struct {
	Code string
	Name string

	// Raw figures carried through for tables and chart axes
	Revenue     dataset.Value
	TotalAssets dataset.Value

	OperatingMargin dataset.Value
	NetMargin       dataset.Value
	EquityRatio     dataset.Value
	AssetTurnover   dataset.Value
	ROA             dataset.Value
	ROE             dataset.Value
	ROEROAGap       dataset.Value
	MarginGap       dataset.Value
}

// Value returns the named metric of the record
func (m CompanyMetrics) Value(metric Metric) dataset.Value {
	switch metric {
	case MetricOperatingMargin:
		return m.OperatingMargin
	case MetricNetMargin:
		return m.NetMargin
	case MetricEquityRatio:
		return m.EquityRatio
	case MetricAssetTurnover:
		return m.AssetTurnover
	case MetricROA:
		return m.ROA
	case MetricROE:
		return m.ROE
	case MetricROEROAGap:
		return m.ROEROAGap
	case MetricMarginGap:
		return m.MarginGap
	default:
		return dataset.Undefined()
	}
}

// Derive computes the derived metrics for every company. Zero denominators
// yield the undefined marker, never a zero or an infinity, and undefined
// operands propagate into dependent metrics.
func Derive(records []dataset.CompanyRecord) []CompanyMetrics {
	out := make([]CompanyMetrics, 0, len(records))
	for _, rec := range records {
		operatingMargin := rec.OperatingIncome.Div(rec.Revenue).Scale(100)
		netMargin := rec.NetIncome.Div(rec.Revenue).Scale(100)

		m := CompanyMetrics{
			Code:            rec.Code,
			Name:            rec.Name,
			Revenue:         rec.Revenue,
			TotalAssets:     rec.TotalAssets,
			OperatingMargin: operatingMargin,
			NetMargin:       netMargin,
			EquityRatio:     rec.Equity.Div(rec.TotalAssets).Scale(100),
			AssetTurnover:   rec.Revenue.Div(rec.TotalAssets),
			ROA:             rec.ROA,
			ROE:             rec.ROE,
			ROEROAGap:       rec.ROE.Sub(rec.ROA),
			MarginGap:       operatingMargin.Sub(netMargin),
		}
		out = append(out, m)
	}
	return out
}

// Column extracts one metric across all companies, preserving order
func Column(ms []CompanyMetrics, metric Metric) []dataset.Value {
	out := make([]dataset.Value, len(ms))
	for i, m := range ms {
		out[i] = m.Value(metric)
	}
	return out
}

// definedValues returns the defined floats of a metric column together with
// the count of undefined entries.
func definedValues(ms []CompanyMetrics, metric Metric) ([]float64, int) {
	var vals []float64
	undefined := 0
	for _, m := range ms {
		v := m.Value(metric)
		if v.Defined {
			vals = append(vals, v.Float)
		} else {
			undefined++
		}
	}
	return vals, undefined
}
