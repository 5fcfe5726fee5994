// Package cluster groups companies by financial profile. It standardizes a
// declared feature subset, runs k-means for a candidate range of cluster
// counts with a fixed seed, selects the count with the best mean silhouette
// score (ties to the smaller count) and projects the standardized features to
// two dimensions for display. The projection never influences assignment.
//
// Cluster labels are recomputed from scratch each run and are not stable
// across runs with different seeds, candidate ranges or input ordering.
package cluster
