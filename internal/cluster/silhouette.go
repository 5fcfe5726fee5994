package cluster

import (
	"math"
)

// silhouetteScore returns the mean silhouette coefficient over all samples:
// for each sample, (b-a)/max(a,b) where a is the mean distance to its own
// cluster and b the smallest mean distance to any other cluster. Samples in
// singleton clusters score zero by convention.
func silhouetteScore(x [][]float64, labels []int, k int) float64 {
	n := len(x)
	if n == 0 || k < 2 {
		return 0
	}

	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}

	total := 0.0
	sums := make([]float64, k)
	for i := range x {
		for c := range sums {
			sums[c] = 0
		}
		for j := range x {
			if i == j {
				continue
			}
			sums[labels[j]] += math.Sqrt(sqDist(x[i], x[j]))
		}

		own := labels[i]
		if counts[own] <= 1 {
			continue // silhouette of a singleton is 0
		}
		a := sums[own] / float64(counts[own]-1)

		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if m := sums[c] / float64(counts[c]); m < b {
				b = m
			}
		}

		denom := math.Max(a, b)
		if denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(n)
}
