package metrics

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// quantile computes the p-quantile of xs using linear interpolation between
// order statistics, the same convention spreadsheet tools use for quartiles,
// so Q1 of [1,2,3,4,100] is exactly 2 and Q3 exactly 4. xs must be non-empty;
// it is not modified.
func quantile(xs []float64, p float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// mean returns the arithmetic mean of xs
func mean(xs []float64) float64 {
	return stat.Mean(xs, nil)
}

// stddev returns the sample standard deviation of xs (n-1 divisor); zero for
// fewer than two observations.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// minMax returns the smallest and largest elements of a non-empty slice
func minMax(xs []float64) (float64, float64) {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
