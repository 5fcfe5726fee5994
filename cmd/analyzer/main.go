// Command analyzer runs the pharmaceutical financial-analysis pipeline: it
// loads the company workbook, derives the ratio table and writes the four
// analyses (positioning, profitability, capital efficiency, clustering) as
// CSV/XLSX tables, PNG figures and markdown reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"pharmacli/internal/analysis"
	"pharmacli/internal/config"
)

func main() {
	analysisNum := flag.Int("analysis", 0, "analysis to run: 1=positioning, 2=profitability, 3=capital efficiency, 4=clustering, 0=all")
	stopOnError := flag.Bool("stop-on-error", false, "abort remaining analyses on the first failure")
	input := flag.String("input", "", "input workbook path (overrides config)")
	out := flag.String("out", "", "output directory (overrides config)")
	configPath := flag.String("config", "config.yaml", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Input.Path = *input
	}
	if *out != "" {
		cfg.Output.Dir = *out
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	runID := uuid.New().String()
	logger.Info("starting analysis run",
		"run_id", runID,
		"input", cfg.Input.Path,
		"output", cfg.Output.Dir,
		"analysis", *analysisNum,
	)

	start := time.Now()
	runner := analysis.NewRunner(cfg, runID, logger)
	if err := runner.Run(context.Background(), *analysisNum, *stopOnError); err != nil {
		logger.Error("analysis run failed",
			"run_id", runID,
			"duration", time.Since(start),
			"error", err,
		)
		os.Exit(1)
	}

	logger.Info("analysis run complete",
		"run_id", runID,
		"duration", time.Since(start),
	)
}

// newLogger builds the process logger from the logging configuration
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
