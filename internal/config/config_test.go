package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "input/financials.xlsx", cfg.Input.Path)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.False(t, cfg.Output.OverwriteCommentary)
	assert.Equal(t, "flag", cfg.Preprocess.MissingPolicy)
	assert.Equal(t, 1.5, cfg.Outliers.IQRFactor)
	assert.Equal(t, 2.0, cfg.Outliers.ZScoreThreshold)
	assert.Equal(t, 3, cfg.Ranking.TopN)
	assert.Equal(t, 2, cfg.Clustering.KMin)
	assert.Equal(t, 4, cfg.Clustering.KMax)
	assert.Equal(t, int64(42), cfg.Clustering.Seed)
	assert.Equal(t, 10, cfg.Clustering.Restarts)
	assert.Equal(t, 100, cfg.Clustering.MaxIterations)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
input:
  path: data/fy2023.xlsx
preprocess:
  missing_policy: drop
outliers:
  iqr_factor: 3.0
clustering:
  k_min: 2
  k_max: 3
  seed: 7
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/fy2023.xlsx", cfg.Input.Path)
	assert.Equal(t, "drop", cfg.Preprocess.MissingPolicy)
	assert.Equal(t, 3.0, cfg.Outliers.IQRFactor)
	assert.Equal(t, 3, cfg.Clustering.KMax)
	assert.Equal(t, int64(7), cfg.Clustering.Seed)
	// Untouched fields keep their defaults.
	assert.Equal(t, 2.0, cfg.Outliers.ZScoreThreshold)
	assert.Equal(t, 3, cfg.Ranking.TopN)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PHARMA_PREPROCESS_MISSING_POLICY", "drop")
	t.Setenv("PHARMA_OUTLIERS_ZSCORE_THRESHOLD", "2.5")
	t.Setenv("PHARMA_OUTPUT_DIR", "artifacts")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "drop", cfg.Preprocess.MissingPolicy)
	assert.Equal(t, 2.5, cfg.Outliers.ZScoreThreshold)
	assert.Equal(t, "artifacts", cfg.Output.Dir)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "flag", cfg.Preprocess.MissingPolicy)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(c *Config) {}},
		{name: "bad missing policy", mutate: func(c *Config) { c.Preprocess.MissingPolicy = "interpolate" }, wantErr: true},
		{name: "non-positive iqr factor", mutate: func(c *Config) { c.Outliers.IQRFactor = 0 }, wantErr: true},
		{name: "k_min below 2", mutate: func(c *Config) { c.Clustering.KMin = 1 }, wantErr: true},
		{name: "empty k range", mutate: func(c *Config) { c.Clustering.KMin = 4; c.Clustering.KMax = 2 }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: true},
		{name: "zero top_n", mutate: func(c *Config) { c.Ranking.TopN = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
