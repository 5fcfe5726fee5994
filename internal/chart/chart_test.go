package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is the fixed 8-byte PNG signature
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func requirePNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), len(pngHeader))
	assert.Equal(t, pngHeader, data[:len(pngHeader)])
}

func TestRendererScatter(t *testing.T) {
	t.Run("renders annotated scatter", func(t *testing.T) {
		dir := t.TempDir()
		r := NewRenderer(dir, nil)

		err := r.Scatter("fig_01_assets_vs_roa.png", ScatterOptions{
			Title:  "Total Assets vs ROA",
			XLabel: "log10(total assets)",
			YLabel: "ROA (%)",
			Groups: [][]Point{{
				{X: 7.1, Y: 0.7, Label: "Takeda"},
				{X: 5.9, Y: 7.4, Label: "Kyowa Kirin"},
				{X: 6.5, Y: 3.8, Label: "Astellas"},
			}},
			Annotate: true,
		})
		require.NoError(t, err)
		requirePNG(t, filepath.Join(dir, "fig_01_assets_vs_roa.png"))
	})

	t.Run("renders multiple groups", func(t *testing.T) {
		dir := t.TempDir()
		r := NewRenderer(dir, nil)

		err := r.Scatter("fig_04_pca_scatter.png", ScatterOptions{
			Title: "Clusters (PCA)",
			Groups: [][]Point{
				{{X: -1, Y: 0.5}, {X: -1.2, Y: 0.4}},
				{{X: 2, Y: -0.3}, {X: 2.1, Y: -0.5}},
			},
		})
		require.NoError(t, err)
		requirePNG(t, filepath.Join(dir, "fig_04_pca_scatter.png"))
	})

	t.Run("skips degenerate figure", func(t *testing.T) {
		dir := t.TempDir()
		r := NewRenderer(dir, nil)

		err := r.Scatter("fig_empty.png", ScatterOptions{Groups: [][]Point{{{X: 1, Y: 1}}}})
		require.NoError(t, err)
		_, statErr := os.Stat(filepath.Join(dir, "fig_empty.png"))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestRendererBar(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, nil)

	err := r.Bar("fig_02_margins_by_company.png", BarOptions{
		Title:  "Operating Margin by Company",
		YLabel: "Operating Margin (%)",
		Bars: []Point{
			{Label: "Takeda", Y: 3.3},
			{Label: "Kyowa Kirin", Y: 18.1},
			{Label: "Astellas", Y: 7.5},
		},
	})
	require.NoError(t, err)
	requirePNG(t, filepath.Join(dir, "fig_02_margins_by_company.png"))
}
