package report

import (
	"fmt"
	"strings"

	"pharmacli/internal/dataset"
)

// FormatValue renders a Value for markdown output with the given decimal
// places, using "n/a" for the undefined marker so undefined results stay
// visible instead of degrading to zero.
func FormatValue(v dataset.Value, decimals int) string {
	if !v.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", decimals, v.Float)
}

// FormatLargeValue renders a Value as a comma-separated integer, the style
// used for currency-unit columns like revenue and total assets.
func FormatLargeValue(v dataset.Value) string {
	if !v.Defined {
		return "n/a"
	}
	return FormatComma(v.Float)
}

// FormatComma formats a float as a comma-grouped integer
func FormatComma(f float64) string {
	neg := f < 0
	s := fmt.Sprintf("%.0f", f)
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// MarkdownTable renders a markdown table from a header and rows. Cell counts
// shorter than the header pad with blanks.
func MarkdownTable(headers []string, rows [][]string) string {
	var b strings.Builder

	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}
