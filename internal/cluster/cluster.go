package cluster

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"pharmacli/internal/errors"
	"pharmacli/internal/metrics"
)

// Default algorithm parameters; overridable through Config.
const (
	DefaultRestarts      = 10
	DefaultMaxIterations = 100
)

// Config declares the clustering inputs: the feature subset, the candidate
// range of cluster counts and the random seed. The seed is explicit, stored
// configuration so the determinism contract (same input + same seed = same
// assignments and same selected k) holds across runs.
type Config struct {
	Features      []Feature
	KMin          int
	KMax          int
	Seed          int64
	Restarts      int
	MaxIterations int
}

// Validate checks the candidate range and fills algorithm defaults
func (c *Config) Validate() error {
	if len(c.Features) == 0 {
		c.Features = DefaultFeatures()
	}
	if c.KMin < 2 {
		return errors.NewConfigError(fmt.Sprintf("smallest candidate cluster count must be at least 2, got %d", c.KMin), nil)
	}
	if c.KMax < c.KMin {
		return errors.NewConfigError(fmt.Sprintf("candidate range %d..%d is empty", c.KMin, c.KMax), nil)
	}
	if c.Restarts <= 0 {
		c.Restarts = DefaultRestarts
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	return nil
}

// Assignment is one company's cluster membership plus the 2-D projected
// coordinates used for display.
type Assignment struct {
	Code     string
	Name     string
	Cluster  int
	Features []float64 // original (unstandardized) feature vector
	X        float64   // first principal component
	Y        float64   // second principal component
}

// Profile summarizes one cluster: centroid in the original feature space,
// member count and member codes sorted ascending.
type Profile struct {
	Cluster  int
	Size     int
	Members  []string
	Centroid []float64
}

// Result is the full clustering outcome for the selected cluster count.
type Result struct {
	SelectedK   int
	Scores      map[int]float64 // silhouette score per evaluated candidate
	Features    []Feature
	Assignments []Assignment
	Profiles    []Profile
	Excluded    []string // codes skipped for undefined features
}

// Analyzer runs the clustering pipeline over derived company metrics.
type Analyzer struct {
	cfg    Config
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer with a validated configuration
func NewAnalyzer(cfg Config, logger *slog.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, logger: logger}, nil
}

// Run clusters the companies with every candidate k and keeps the best one.
// Companies with any undefined feature are excluded and reported in the
// result. Fewer usable companies than the smallest candidate k is an
// InsufficientDataError.
func (a *Analyzer) Run(ms []metrics.CompanyMetrics) (*Result, error) {
	var rows [][]float64
	var included []metrics.CompanyMetrics
	var excluded []string

	for _, m := range ms {
		row, ok := featureRow(m, a.cfg.Features)
		if !ok {
			excluded = append(excluded, m.Code)
			continue
		}
		rows = append(rows, row)
		included = append(included, m)
	}

	if len(excluded) > 0 {
		a.logger.Warn("companies excluded from clustering",
			"count", len(excluded),
			"codes", excluded,
		)
	}
	if len(rows) < a.cfg.KMin {
		return nil, errors.NewInsufficientDataError(len(rows), a.cfg.KMin)
	}

	scaled := standardize(rows)

	bestK := 0
	bestScore := 0.0
	var bestLabels []int
	scores := make(map[int]float64)

	for k := a.cfg.KMin; k <= a.cfg.KMax; k++ {
		if k >= len(scaled) {
			a.logger.Warn("skipping candidate cluster count, not enough companies",
				"k", k, "companies", len(scaled))
			continue
		}

		// A per-candidate source keeps each k's result independent of which
		// other candidates were evaluated.
		rng := rand.New(rand.NewSource(a.cfg.Seed + int64(k)))
		labels, inertia := runKMeans(scaled, k, rng, a.cfg.Restarts, a.cfg.MaxIterations)
		score := silhouetteScore(scaled, labels, k)
		scores[k] = score

		a.logger.Info("evaluated candidate cluster count",
			"k", k,
			"silhouette", score,
			"inertia", inertia,
		)

		// Strict improvement only: a tie keeps the smaller k.
		if bestK == 0 || score > bestScore {
			bestK = k
			bestScore = score
			bestLabels = labels
		}
	}

	if bestK == 0 {
		return nil, errors.NewInsufficientDataError(len(rows), a.cfg.KMin)
	}

	labels := relabelByAppearance(bestLabels, bestK)

	coords, err := projectPCA(scaled)
	if err != nil {
		return nil, fmt.Errorf("project features for display: %w", err)
	}

	assignments := make([]Assignment, len(included))
	for i, m := range included {
		assignments[i] = Assignment{
			Code:     m.Code,
			Name:     m.Name,
			Cluster:  labels[i],
			Features: rows[i],
			X:        coords[i][0],
			Y:        coords[i][1],
		}
	}

	result := &Result{
		SelectedK:   bestK,
		Scores:      scores,
		Features:    a.cfg.Features,
		Assignments: assignments,
		Profiles:    buildProfiles(assignments, bestK, len(a.cfg.Features)),
		Excluded:    excluded,
	}

	a.logger.Info("clustering complete",
		"selected_k", bestK,
		"silhouette", bestScore,
		"companies", len(assignments),
		"excluded", len(excluded),
	)
	return result, nil
}

// relabelByAppearance renumbers cluster labels in input order so the first
// company always sits in cluster 0. Pure cosmetics for stable output; the
// partition itself is unchanged.
func relabelByAppearance(labels []int, k int) []int {
	remap := make(map[int]int, k)
	next := 0
	out := make([]int, len(labels))
	for i, l := range labels {
		if _, ok := remap[l]; !ok {
			remap[l] = next
			next++
		}
		out[i] = remap[l]
	}
	return out
}

// buildProfiles computes per-cluster summaries in the original feature space
func buildProfiles(assignments []Assignment, k, dim int) []Profile {
	profiles := make([]Profile, k)
	for c := range profiles {
		profiles[c] = Profile{Cluster: c, Centroid: make([]float64, dim)}
	}

	for _, asg := range assignments {
		p := &profiles[asg.Cluster]
		p.Size++
		p.Members = append(p.Members, asg.Code)
		for j, v := range asg.Features {
			p.Centroid[j] += v
		}
	}

	for c := range profiles {
		p := &profiles[c]
		sort.Strings(p.Members)
		for j := range p.Centroid {
			if p.Size > 0 {
				p.Centroid[j] /= float64(p.Size)
			}
		}
	}
	return profiles
}
