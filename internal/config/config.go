// Package config holds every analytic knob of the pipeline as explicit,
// inspectable configuration: missing-value policy, outlier thresholds,
// clustering candidate range and seed, paths and logging. Values start from
// code defaults, an optional YAML file overrides them, and environment
// variables (PHARMA_ prefix) override both. Nothing is baked into logic.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Input      InputConfig      `yaml:"input" envconfig:"INPUT"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
	Preprocess PreprocessConfig `yaml:"preprocess" envconfig:"PREPROCESS"`
	Outliers   OutlierConfig    `yaml:"outliers" envconfig:"OUTLIERS"`
	Ranking    RankingConfig    `yaml:"ranking" envconfig:"RANKING"`
	Clustering ClusteringConfig `yaml:"clustering" envconfig:"CLUSTERING"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
}

// InputConfig locates the source workbook
type InputConfig struct {
	Path string `yaml:"path" envconfig:"PATH" validate:"required"`
}

// OutputConfig locates the artifact directory
type OutputConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" validate:"required"`
	// OverwriteCommentary resets the analyst-commentary region of existing
	// reports instead of preserving it
	OverwriteCommentary bool `yaml:"overwrite_commentary" envconfig:"OVERWRITE_COMMENTARY"`
}

// PreprocessConfig declares the missing-value policy. The default is
// explicit in Default, not implied anywhere in the pipeline.
type PreprocessConfig struct {
	MissingPolicy string `yaml:"missing_policy" envconfig:"MISSING_POLICY" validate:"oneof=drop flag"`
}

// OutlierConfig holds the detection thresholds
type OutlierConfig struct {
	IQRFactor       float64 `yaml:"iqr_factor" envconfig:"IQR_FACTOR" validate:"gt=0"`
	ZScoreThreshold float64 `yaml:"zscore_threshold" envconfig:"ZSCORE_THRESHOLD" validate:"gt=0"`
}

// RankingConfig controls top/bottom extraction
type RankingConfig struct {
	TopN int `yaml:"top_n" envconfig:"TOP_N" validate:"min=1"`
}

// ClusteringConfig holds the candidate range and the stored random seed that
// guarantees reproducible assignments.
type ClusteringConfig struct {
	// Features selects the clustering dimensions; empty means the built-in
	// default feature set
	Features      []string `yaml:"features" envconfig:"FEATURES"`
	KMin          int      `yaml:"k_min" envconfig:"K_MIN" validate:"min=2"`
	KMax          int      `yaml:"k_max" envconfig:"K_MAX" validate:"min=2"`
	Seed          int64    `yaml:"seed" envconfig:"SEED"`
	Restarts      int      `yaml:"restarts" envconfig:"RESTARTS" validate:"min=1"`
	MaxIterations int      `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() Config {
	return Config{
		Input:  InputConfig{Path: "input/financials.xlsx"},
		Output: OutputConfig{Dir: "output"},
		Preprocess: PreprocessConfig{
			MissingPolicy: "flag",
		},
		Outliers: OutlierConfig{
			IQRFactor:       1.5,
			ZScoreThreshold: 2.0,
		},
		Ranking: RankingConfig{TopN: 3},
		Clustering: ClusteringConfig{
			KMin:          2,
			KMax:          4,
			Seed:          42,
			Restarts:      10,
			MaxIterations: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. Precedence: environment variables over the
// YAML file at configPath over Default. An empty or absent configPath skips
// the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := loadFromFile(configPath, &cfg); err != nil {
				return nil, fmt.Errorf("load config from file: %w", err)
			}
		}
	}

	if err := envconfig.Process("PHARMA", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg. Fields the file does
// not mention keep their current values.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints plus the cross-field rules the struct
// tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Clustering.KMax < c.Clustering.KMin {
		return fmt.Errorf("clustering candidate range %d..%d is empty", c.Clustering.KMin, c.Clustering.KMax)
	}
	return nil
}
