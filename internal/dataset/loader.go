package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"pharmacli/internal/errors"
)

// columnAliases maps normalized header text to canonical columns. The input
// workbook may carry Japanese or English headers; both resolve to the same
// canonical name.
var columnAliases = map[string]Column{
	"証券コード":            ColCode,
	"code":             ColCode,
	"security code":    ColCode,
	"ticker":           ColCode,
	"企業名":              ColName,
	"name":             ColName,
	"company name":     ColName,
	"company":          ColName,
	"売上高":              ColRevenue,
	"revenue":          ColRevenue,
	"sales":            ColRevenue,
	"営業利益":             ColOperatingIncome,
	"operating income": ColOperatingIncome,
	"当期純利益":            ColNetIncome,
	"net income":       ColNetIncome,
	"総資産":              ColTotalAssets,
	"total assets":     ColTotalAssets,
	"自己資本":             ColEquity,
	"equity":           ColEquity,
	"shareholders equity": ColEquity,
	"roa": ColROA,
	"roe": ColROE,
}

// Loader reads a spreadsheet of company financials into a RawTable.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// NormalizeHeader canonicalizes a header cell: trims surrounding space,
// replaces full-width spaces, collapses runs of spaces and lower-cases the
// result so locale variants of the same header compare equal.
func NormalizeHeader(s string) string {
	s = strings.ReplaceAll(s, "　", " ")
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// LoadWorkbook reads the financial dataset from an Excel workbook. It scans
// every sheet for a header row that resolves all required columns and returns
// the data rows beneath it. A SchemaError carries the full list of columns
// that could not be resolved on the best candidate sheet.
func (l *Loader) LoadWorkbook(path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var best *RawTable
	var bestMissing []Column

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			l.logger.Warn("failed to read sheet", "sheet", sheet, "error", err)
			continue
		}

		table, missing := l.resolveSheet(path, sheet, rows)
		if table == nil {
			continue
		}
		if len(missing) == 0 {
			l.logger.Info("loaded financial dataset",
				"path", path,
				"sheet", sheet,
				"rows", len(table.Rows),
			)
			return table, nil
		}
		if best == nil || len(missing) < len(bestMissing) {
			best = table
			bestMissing = missing
		}
	}

	if best == nil {
		return nil, errors.NewSchemaError(columnNames(RequiredColumns))
	}
	return nil, errors.NewSchemaError(columnNames(bestMissing))
}

// resolveSheet looks for a header row within the first few rows of a sheet
// and maps canonical columns to cell indices. It returns nil when the sheet
// has no recognizable header at all.
func (l *Loader) resolveSheet(path, sheet string, rows [][]string) (*RawTable, []Column) {
	const headerScanRows = 5

	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		columns := make(map[Column]int)
		for idx, cell := range rows[i] {
			if col, ok := columnAliases[NormalizeHeader(cell)]; ok {
				if _, dup := columns[col]; !dup {
					columns[col] = idx
				}
			}
		}
		if len(columns) == 0 {
			continue
		}

		var missing []Column
		for _, col := range RequiredColumns {
			if _, ok := columns[col]; !ok {
				missing = append(missing, col)
			}
		}

		data := trimEmptyRows(rows[i+1:])
		return &RawTable{
			Source:    path,
			Sheet:     sheet,
			Columns:   columns,
			Rows:      data,
			HeaderRow: i,
		}, missing
	}
	return nil, nil
}

// trimEmptyRows drops rows whose cells are all blank
func trimEmptyRows(rows [][]string) [][]string {
	var out [][]string
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}

func columnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	return names
}

// EnsureOutputDir creates the output directory if it does not already exist.
// Calling it repeatedly is harmless.
func EnsureOutputDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.NewStorageError(fmt.Sprintf("create output directory %s", path), err)
	}
	return nil
}
