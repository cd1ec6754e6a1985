package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter implements ReportWriter by writing one .xlsx workbook per report
// into a local directory. Files are named <user>_<date>.xlsx.
type XLSXWriter struct {
	dir string
}

// NewXLSXWriter creates an XLSXWriter that writes workbooks under dir.
func NewXLSXWriter(dir string) *XLSXWriter {
	return &XLSXWriter{dir: dir}
}

// Write renders the rows into a workbook and saves it.
func (w *XLSXWriter) Write(_ context.Context, rows []ReportRow) error {
	if len(rows) == 0 {
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &reportHeaders); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		values := []any{
			row.ReportDate,
			row.UserID,
			row.BaseCurrency,
			row.Rule,
			row.Verdict,
			row.Detail,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	name := fmt.Sprintf("%s_%s.xlsx", rows[0].UserID, rows[0].ReportDate)
	path := filepath.Join(w.dir, name)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}

	return nil
}
