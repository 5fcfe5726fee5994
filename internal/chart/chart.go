// Package chart renders the static PNG figures for each analysis. It carries
// no decision logic: every series it draws comes from tables computed by the
// metrics engine or the clustering module.
package chart

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
)

// Point is one labeled observation in a scatter plot.
type Point struct {
	X     float64
	Y     float64
	Label string
}

// ScatterOptions describes one scatter figure. Groups beyond the first are
// drawn in distinct colors (used for cluster membership).
type ScatterOptions struct {
	Title    string
	XLabel   string
	YLabel   string
	Groups   [][]Point
	Annotate bool // draw the point labels next to each marker
}

// BarOptions describes one bar figure.
type BarOptions struct {
	Title  string
	YLabel string
	Bars   []Point // X is ignored; Label names the bar, Y its height
}

// Renderer writes figures into a fixed output directory.
type Renderer struct {
	outDir string
	logger *slog.Logger
}

// NewRenderer creates a renderer rooted at outDir
func NewRenderer(outDir string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{outDir: outDir, logger: logger}
}

// Scatter renders a scatter figure to name. Figures with fewer than two
// points are skipped: a single point has no meaningful axis range.
func (r *Renderer) Scatter(name string, opts ScatterOptions) error {
	total := 0
	for _, g := range opts.Groups {
		total += len(g)
	}
	if total < 2 {
		r.logger.Warn("skipping scatter figure with too few points", "name", name, "points", total)
		return nil
	}

	var series []chart.Series
	for i, group := range opts.Groups {
		if len(group) == 0 {
			continue
		}
		xs := make([]float64, len(group))
		ys := make([]float64, len(group))
		for j, p := range group {
			xs[j] = p.X
			ys[j] = p.Y
		}
		color := chart.GetDefaultColor(i)
		series = append(series, chart.ContinuousSeries{
			Name: fmt.Sprintf("group %d", i),
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    color,
			},
			XValues: xs,
			YValues: ys,
		})

		if opts.Annotate {
			annotations := make([]chart.Value2, 0, len(group))
			for _, p := range group {
				if p.Label == "" {
					continue
				}
				annotations = append(annotations, chart.Value2{
					XValue: p.X,
					YValue: p.Y,
					Label:  p.Label,
				})
			}
			if len(annotations) > 0 {
				series = append(series, chart.AnnotationSeries{Annotations: annotations})
			}
		}
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  1024,
		Height: 640,
		XAxis:  chart.XAxis{Name: opts.XLabel},
		YAxis:  chart.YAxis{Name: opts.YLabel},
		Series: series,
	}
	return r.render(name, func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

// Bar renders a bar figure to name
func (r *Renderer) Bar(name string, opts BarOptions) error {
	if len(opts.Bars) == 0 {
		r.logger.Warn("skipping empty bar figure", "name", name)
		return nil
	}

	bars := make([]chart.Value, len(opts.Bars))
	for i, b := range opts.Bars {
		bars[i] = chart.Value{Value: b.Y, Label: b.Label}
	}

	graph := chart.BarChart{
		Title:    opts.Title,
		Width:    1024,
		Height:   640,
		BarWidth: 40,
		YAxis:    chart.YAxis{Name: opts.YLabel},
		Bars:     bars,
	}
	return r.render(name, func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

// render opens the target file and hands it to the draw function
func (r *Renderer) render(name string, draw func(*os.File) error) error {
	fullPath := filepath.Join(r.outDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create figure file: %w", err)
	}
	defer f.Close()

	if err := draw(f); err != nil {
		return fmt.Errorf("render figure %s: %w", name, err)
	}

	r.logger.Info("wrote figure", "path", fullPath)
	return nil
}
