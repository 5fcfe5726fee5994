package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacli/internal/dataset"
)

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "12.35", FormatValue(dataset.Defined(12.345), 2))
	assert.Equal(t, "-5.0", FormatValue(dataset.Defined(-5), 1))
	assert.Equal(t, "n/a", FormatValue(dataset.Undefined(), 2))
}

func TestFormatComma(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1142544, "1,142,544"},
		{-267071, "-267,071"},
		{4263762.4, "4,263,762"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatComma(tt.in))
	}
}

func TestFormatLargeValue(t *testing.T) {
	assert.Equal(t, "1,234,568", FormatLargeValue(dataset.Defined(1234567.8)))
	assert.Equal(t, "n/a", FormatLargeValue(dataset.Undefined()))
}

func TestMarkdownTable(t *testing.T) {
	table := MarkdownTable(
		[]string{"Code", "Name", "ROA"},
		[][]string{
			{"4502", "Takeda", "0.70"},
			{"4151", "Kyowa Kirin"},
		},
	)
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| Code | Name | ROA |", lines[0])
	assert.Equal(t, "| --- | --- | --- |", lines[1])
	assert.Equal(t, "| 4502 | Takeda | 0.70 |", lines[2])
	// Short rows pad with blank cells.
	assert.Equal(t, "| 4151 | Kyowa Kirin |  |", lines[3])
}

func sampleDocument() Document {
	return Document{
		Title: "Positioning Analysis",
		Meta: []string{
			"Source: financials.xlsx",
			"Companies: 13",
		},
		Sections: []Section{
			{Heading: "Summary Statistics", Lines: []string{"mean ROA: 5.4", "undefined: 1"}},
			TableSection("Top Companies", []string{"Code", "ROA"}, [][]string{{"4151", "7.40"}}),
		},
	}
}

// stripGenerated removes the single timestamp line so two renderings can be
// compared byte for byte.
func stripGenerated(t *testing.T, content string) string {
	t.Helper()
	lines := strings.Split(content, "\n")
	var kept []string
	removed := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "_Generated:") {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	require.Equal(t, 1, removed, "expected exactly one generated line")
	return strings.Join(kept, "\n")
}

func TestWriterIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01_summary.md")
	w := NewWriter("test-run", nil)

	require.NoError(t, w.Write(path, sampleDocument(), false))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(path, sampleDocument(), false))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	// Byte-identical except the generated-at line.
	assert.Equal(t, stripGenerated(t, string(first)), stripGenerated(t, string(second)))
}

func TestWriterPreservesCommentary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01_summary.md")
	w := NewWriter("test-run", nil)
	require.NoError(t, w.Write(path, sampleDocument(), false))

	// Simulate the analyst editing the commentary region by hand.
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(content),
		"_Add analyst observations here._",
		"Takeda's scale dwarfs the rest of the sector.\n\nROA leaders are all mid-caps.",
		1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0644))

	require.NoError(t, w.Write(path, sampleDocument(), false))
	after, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(after), "Takeda's scale dwarfs the rest of the sector.")
	assert.Contains(t, string(after), "ROA leaders are all mid-caps.")
	assert.NotContains(t, string(after), "_Add analyst observations here._")
}

func TestWriterOverwriteCommentary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01_summary.md")
	w := NewWriter("test-run", nil)
	require.NoError(t, w.Write(path, sampleDocument(), false))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(content),
		"_Add analyst observations here._", "stale notes", 1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0644))

	// Explicit overwrite resets the region to the placeholder.
	require.NoError(t, w.Write(path, sampleDocument(), true))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(after), "stale notes")
	assert.Contains(t, string(after), "_Add analyst observations here._")
}

func TestWriterNeverPopulatesCommentary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01_summary.md")
	w := NewWriter("test-run", nil)
	require.NoError(t, w.Write(path, sampleDocument(), false))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	inner, ok := ExtractCommentary(string(content))
	require.True(t, ok)
	assert.Equal(t, "\n_Add analyst observations here._\n", inner)
}

func TestExtractCommentary(t *testing.T) {
	t.Run("missing markers", func(t *testing.T) {
		_, ok := ExtractCommentary("# Report\n\nno region here\n")
		assert.False(t, ok)
	})

	t.Run("unterminated region", func(t *testing.T) {
		_, ok := ExtractCommentary("<!-- BEGIN ANALYST COMMENTARY -->\ntext")
		assert.False(t, ok)
	})

	t.Run("verbatim extraction", func(t *testing.T) {
		inner, ok := ExtractCommentary("x<!-- BEGIN ANALYST COMMENTARY -->\n  spaced  \n<!-- END ANALYST COMMENTARY -->y")
		require.True(t, ok)
		assert.Equal(t, "\n  spaced  \n", inner)
	})
}
