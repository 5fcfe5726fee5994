package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"pharmacli/internal/chart"
	"pharmacli/internal/config"
	"pharmacli/internal/dataset"
	apperrors "pharmacli/internal/errors"
	"pharmacli/internal/exporter"
	"pharmacli/internal/metrics"
	"pharmacli/internal/report"
)

// Dataset is the shared input of all analyses: the derived metrics of every
// company plus provenance carried into report metadata.
type Dataset struct {
	Source    string
	Sheet     string
	Companies []metrics.CompanyMetrics

	BadCells int   // cells that failed numeric coercion
	BadRows  []int // 1-based sheet rows holding those cells
	Dropped  []string
}

// metaLines renders the dataset provenance for report headers
func (d *Dataset) metaLines() []string {
	lines := []string{
		fmt.Sprintf("Source: `%s`, sheet `%s`", d.Source, d.Sheet),
		fmt.Sprintf("Companies: %d", len(d.Companies)),
	}
	if d.BadCells > 0 {
		lines = append(lines, fmt.Sprintf("Unparsable cells: %d (rows %v)", d.BadCells, d.BadRows))
	}
	if len(d.Dropped) > 0 {
		lines = append(lines, fmt.Sprintf("Rows dropped by missing-value policy: %v", d.Dropped))
	}
	return lines
}

// Runner owns the output writers and executes analyses against one dataset.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger

	loader  *dataset.Loader
	csv     *exporter.CSVWriter
	xlsx    *exporter.XLSXWriter
	figures *chart.Renderer
	reports *report.Writer
}

// NewRunner creates a runner. The run ID stamps every generated report.
func NewRunner(cfg *config.Config, runID string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:     cfg,
		logger:  logger,
		loader:  dataset.NewLoader(logger),
		csv:     exporter.NewCSVWriter(cfg.Output.Dir, logger),
		xlsx:    exporter.NewXLSXWriter(cfg.Output.Dir, logger),
		figures: chart.NewRenderer(cfg.Output.Dir, logger),
		reports: report.NewWriter(runID, logger),
	}
}

// LoadDataset runs the shared pipeline: workbook → typed records →
// percent-normalized ROA/ROE → derived metrics.
func (r *Runner) LoadDataset() (*Dataset, error) {
	table, err := r.loader.LoadWorkbook(r.cfg.Input.Path)
	if err != nil {
		return nil, err
	}

	pre, err := dataset.NewPreprocessor(dataset.MissingPolicy(r.cfg.Preprocess.MissingPolicy), r.logger)
	if err != nil {
		return nil, err
	}
	res, err := pre.Records(table)
	if err != nil {
		return nil, err
	}

	records := dataset.NormalizePercent(res.Records, dataset.ColROA, dataset.ColROE)

	d := &Dataset{
		Source:    table.Source,
		Sheet:     table.Sheet,
		Companies: metrics.Derive(records),
		Dropped:   res.Dropped,
	}
	if res.Parse != nil {
		d.BadCells = len(res.Parse.Cells)
		d.BadRows = res.Parse.Rows()
	}
	return d, nil
}

// job is one runnable analysis
type job struct {
	number int
	name   string
	run    func(*Runner, context.Context, *Dataset) error
}

func (r *Runner) jobs() []job {
	return []job{
		{1, "positioning", (*Runner).runPositioning},
		{2, "profitability", (*Runner).runProfitability},
		{3, "capital_efficiency", (*Runner).runCapitalEfficiency},
		{4, "clustering", (*Runner).runClustering},
	}
}

// Run loads the dataset once and executes the selected analysis, or all four
// concurrently when id is 0. With stopOnError the first failure cancels the
// remaining analyses; otherwise every analysis runs and the failures come
// back joined.
func (r *Runner) Run(ctx context.Context, id int, stopOnError bool) error {
	if err := dataset.EnsureOutputDir(r.cfg.Output.Dir); err != nil {
		return err
	}

	ds, err := r.LoadDataset()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	var selected []job
	for _, jb := range r.jobs() {
		if id == 0 || jb.number == id {
			selected = append(selected, jb)
		}
	}
	if len(selected) == 0 {
		return apperrors.NewConfigError(fmt.Sprintf("unknown analysis number %d (valid: 0-4)", id), nil)
	}

	g, gctx := errgroup.WithContext(ctx)
	failures := make([]error, len(selected))

	for i, jb := range selected {
		i, jb := i, jb
		g.Go(func() error {
			start := time.Now()
			err := jb.run(r, gctx, ds)
			r.logger.Info("analysis finished",
				"analysis", jb.name,
				"number", jb.number,
				"duration", time.Since(start),
				"ok", err == nil,
			)
			if err != nil {
				err = fmt.Errorf("analysis %d (%s): %w", jb.number, jb.name, err)
				if stopOnError {
					return err
				}
				failures[i] = err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(failures...)
}
