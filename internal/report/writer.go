// Package report assembles the markdown summary document for each analysis
// and owns the analyst-commentary contract: a delimited free-text region that
// the pipeline never writes into and, on rewrite, preserves verbatim unless
// the caller explicitly overwrites it.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"pharmacli/internal/errors"
)

const (
	commentaryBegin = "<!-- BEGIN ANALYST COMMENTARY -->"
	commentaryEnd   = "<!-- END ANALYST COMMENTARY -->"

	// defaultCommentary seeds a fresh report's commentary region
	defaultCommentary = "\n_Add analyst observations here._\n"
)

// Section is one heading plus its body lines. Lines render as list items
// unless they already look like markdown structure (sub-headings, tables,
// blanks).
type Section struct {
	Heading string
	Lines   []string
}

// Document is a full analysis report before rendering.
type Document struct {
	Title    string
	Meta     []string // metadata lines rendered under the title
	Sections []Section
}

// Writer renders documents to disk. The timestamp source is injectable so
// tests can pin it.
type Writer struct {
	logger *slog.Logger
	now    func() time.Time
	runID  string
}

// NewWriter creates a report writer stamped with the given run ID
func NewWriter(runID string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger, now: time.Now, runID: runID}
}

// Write renders the document to path. If the file already exists and
// overwriteCommentary is false, the analyst-commentary region of the old file
// is carried into the new one verbatim; everything outside the region is
// regenerated. Re-running with unchanged inputs therefore produces a
// byte-identical file except for the generated-at line.
func (w *Writer) Write(path string, doc Document, overwriteCommentary bool) error {
	commentary := defaultCommentary
	if existing, err := os.ReadFile(path); err == nil && !overwriteCommentary {
		if preserved, ok := ExtractCommentary(string(existing)); ok {
			commentary = preserved
		}
	}

	content := w.render(doc, commentary)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.NewStorageError(fmt.Sprintf("write report %s", path), err)
	}

	w.logger.Info("wrote report", "path", path, "sections", len(doc.Sections))
	return nil
}

// render produces the full markdown document
func (w *Writer) render(doc Document, commentary string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "_Generated: %s (run %s)_\n\n", w.now().Format("2006-01-02 15:04:05"), w.runID)

	for _, line := range doc.Meta {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	if len(doc.Meta) > 0 {
		b.WriteString("\n")
	}

	for _, section := range doc.Sections {
		fmt.Fprintf(&b, "## %s\n\n", section.Heading)
		for _, line := range section.Lines {
			switch {
			case line == "":
				b.WriteString("\n")
			case strings.HasPrefix(line, "#") || strings.HasPrefix(line, "|"):
				b.WriteString(line + "\n")
			default:
				fmt.Fprintf(&b, "- %s\n", line)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Analyst Commentary\n\n")
	b.WriteString(commentaryBegin)
	b.WriteString(commentary)
	b.WriteString(commentaryEnd)
	b.WriteString("\n")

	return b.String()
}

// ExtractCommentary pulls the commentary region out of an existing report,
// including surrounding whitespace, exactly as the analyst left it.
func ExtractCommentary(content string) (string, bool) {
	start := strings.Index(content, commentaryBegin)
	if start < 0 {
		return "", false
	}
	rest := content[start+len(commentaryBegin):]
	end := strings.Index(rest, commentaryEnd)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// TableSection builds a section holding a single markdown table
func TableSection(heading string, headers []string, rows [][]string) Section {
	return Section{
		Heading: heading,
		Lines:   strings.Split(strings.TrimRight(MarkdownTable(headers, rows), "\n"), "\n"),
	}
}
