package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XlsxWriter implements SheetWriter by writing a local xlsx file.
type XlsxWriter struct {
	path string
}

// NewXlsxWriter creates an XlsxWriter targeting the given file path.
func NewXlsxWriter(path string) *XlsxWriter {
	return &XlsxWriter{path: path}
}

// Write renders the report into a single Holdings sheet and saves the file.
func (w *XlsxWriter) Write(_ context.Context, rows []HoldingRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Holdings"
	f.SetSheetName("Sheet1", sheet)

	if err := writeRow(f, sheet, 1, headerCells()); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(f, sheet, i+2, rowCells(row)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving report %s: %w", w.path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("building cell reference: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", rowNum, err)
	}
	return nil
}

func headerCells() []any {
	cells := make([]any, len(reportHeader))
	for i, col := range reportHeader {
		cells[i] = col
	}
	return cells
}
