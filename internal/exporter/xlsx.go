package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter exports tables as Excel workbooks with a bold header row.
type XLSXWriter struct {
	outDir string
	logger *slog.Logger
}

// NewXLSXWriter creates an XLSX writer rooted at outDir
func NewXLSXWriter(outDir string, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{outDir: outDir, logger: logger}
}

// WriteTable writes a single-sheet workbook with the given header and rows
func (w *XLSXWriter) WriteTable(name, sheet string, headers []string, rows [][]interface{}) error {
	fullPath := filepath.Join(w.outDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != f.GetSheetName(0) {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	headerCells := make([]interface{}, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, style)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell coordinates for row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	w.logger.Info("wrote XLSX table",
		"path", fullPath,
		"rows", len(rows),
	)
	return nil
}
