package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// standardize scales each column to zero mean and unit variance (population
// standard deviation, matching the usual feature-scaling convention). A
// zero-variance column standardizes to all zeros so it cannot dominate, or
// even influence, the distance metric.
func standardize(x [][]float64) [][]float64 {
	if len(x) == 0 {
		return nil
	}
	rows, cols := len(x), len(x[0])
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = x[i][j]
		}
		mu := stat.Mean(col, nil)
		sigma := stat.PopStdDev(col, nil)
		for i := 0; i < rows; i++ {
			if sigma > 0 {
				out[i][j] = (x[i][j] - mu) / sigma
			}
		}
	}
	return out
}

// sqDist is the squared Euclidean distance between two vectors
func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// runKMeans clusters x into k groups, keeping the best of several restarts
// (lowest inertia). All randomness comes from rng, so a fixed seed fixes the
// result.
func runKMeans(x [][]float64, k int, rng *rand.Rand, restarts, maxIter int) ([]int, float64) {
	bestInertia := math.Inf(1)
	var bestLabels []int

	for r := 0; r < restarts; r++ {
		labels, inertia := kMeansOnce(x, k, rng, maxIter)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
		}
	}
	return bestLabels, bestInertia
}

// kMeansOnce runs one Lloyd iteration sequence from a k-means++ seeding
func kMeansOnce(x [][]float64, k int, rng *rand.Rand, maxIter int) ([]int, float64) {
	centroids := plusPlusInit(x, k, rng)
	labels := make([]int, len(x))
	inertia := 0.0

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		inertia = 0.0
		for i, p := range x {
			best, bestD := 0, sqDist(p, centroids[0])
			for c := 1; c < k; c++ {
				if d := sqDist(p, centroids[c]); d < bestD {
					best, bestD = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
			inertia += bestD
		}

		centroids = recomputeCentroids(x, labels, k, centroids)
		if !changed && iter > 0 {
			break
		}
	}
	return labels, inertia
}

// plusPlusInit seeds centroids with the k-means++ scheme: the first centroid
// uniformly, each subsequent one with probability proportional to squared
// distance from the nearest chosen centroid.
func plusPlusInit(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := append([]float64(nil), x[rng.Intn(len(x))]...)
	centroids = append(centroids, first)

	dists := make([]float64, len(x))
	for len(centroids) < k {
		total := 0.0
		for i, p := range x {
			d := math.Inf(1)
			for _, c := range centroids {
				if dc := sqDist(p, c); dc < d {
					d = dc
				}
			}
			dists[i] = d
			total += d
		}

		var next []float64
		if total == 0 {
			// All points coincide with existing centroids; pick uniformly.
			next = x[rng.Intn(len(x))]
		} else {
			target := rng.Float64() * total
			acc := 0.0
			idx := len(x) - 1
			for i, d := range dists {
				acc += d
				if acc >= target {
					idx = i
					break
				}
			}
			next = x[idx]
		}
		centroids = append(centroids, append([]float64(nil), next...))
	}
	return centroids
}

// recomputeCentroids places each centroid at the mean of its members. An
// empty cluster takes over the point farthest from its assigned centroid so
// every candidate k yields k non-degenerate clusters.
func recomputeCentroids(x [][]float64, labels []int, k int, prev [][]float64) [][]float64 {
	dim := len(x[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, p := range x {
		c := labels[i]
		counts[c]++
		for j, v := range p {
			sums[c][j] += v
		}
	}

	centroids := make([][]float64, k)
	for c := range centroids {
		centroids[c] = make([]float64, dim)
		if counts[c] > 0 {
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			continue
		}
		farIdx, farD := 0, -1.0
		for i, p := range x {
			if d := sqDist(p, prev[labels[i]]); d > farD {
				farIdx, farD = i, d
			}
		}
		copy(centroids[c], x[farIdx])
		labels[farIdx] = c
		counts[c] = 1
	}
	return centroids
}
