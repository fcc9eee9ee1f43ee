package storage

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// ExcelWriter accumulates aggregate views as worksheets of a single workbook.
// Call Save once after all sheets are written.
type ExcelWriter struct {
	path   string
	file   *excelize.File
	logger *utils.Logger
}

// NewExcelWriter creates a workbook writer targeting path.
func NewExcelWriter(path string, logger *utils.Logger) *ExcelWriter {
	return &ExcelWriter{path: path, file: excelize.NewFile(), logger: logger}
}

func (w *ExcelWriter) sheet(name string) error {
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("storage: create sheet %q: %w", name, err)
	}
	return nil
}

func (w *ExcelWriter) setRow(sheet string, row int, values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("storage: cell name: %w", err)
		}
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			v = "NaN"
		}
		if err := w.file.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("storage: set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// WriteSummary writes the dataset dimensions to a Summary sheet.
func (w *ExcelWriter) WriteSummary(rows, cols int) error {
	const sheet = "Summary"
	if err := w.sheet(sheet); err != nil {
		return err
	}
	if err := w.setRow(sheet, 1, "listings", rows); err != nil {
		return err
	}
	return w.setRow(sheet, 2, "columns", cols)
}

// WriteReviewTrend writes the yearly review counts to a ReviewTrend sheet.
func (w *ExcelWriter) WriteReviewTrend(trend []models.YearCount) error {
	const sheet = "ReviewTrend"
	if err := w.sheet(sheet); err != nil {
		return err
	}
	if err := w.setRow(sheet, 1, "year", "reviews"); err != nil {
		return err
	}
	for i, yc := range trend {
		if err := w.setRow(sheet, i+2, yc.Year, yc.Count); err != nil {
			return err
		}
	}
	return nil
}

// WriteCorrelation writes the correlation matrix to a Correlation sheet with
// column labels on both axes.
func (w *ExcelWriter) WriteCorrelation(m models.CorrMatrix) error {
	const sheet = "Correlation"
	if err := w.sheet(sheet); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(m.Columns)+1)
	header = append(header, "")
	for _, col := range m.Columns {
		header = append(header, col)
	}
	if err := w.setRow(sheet, 1, header...); err != nil {
		return err
	}

	for i, col := range m.Columns {
		row := make([]interface{}, 0, len(m.Columns)+1)
		row = append(row, col)
		for j := range m.Columns {
			row = append(row, m.Values[i][j])
		}
		if err := w.setRow(sheet, i+2, row...); err != nil {
			return err
		}
	}
	return nil
}

// WriteValueCounts writes categorical frequency counts to the named sheet.
func (w *ExcelWriter) WriteValueCounts(sheet string, counts []models.ValueCount) error {
	if err := w.sheet(sheet); err != nil {
		return err
	}
	if err := w.setRow(sheet, 1, "value", "count"); err != nil {
		return err
	}
	for i, vc := range counts {
		if err := w.setRow(sheet, i+2, vc.Value, vc.Count); err != nil {
			return err
		}
	}
	return nil
}

// WriteGroupedMetric writes a grouped metric series to the named sheet.
func (w *ExcelWriter) WriteGroupedMetric(sheet string, metrics []models.GroupMetric) error {
	if err := w.sheet(sheet); err != nil {
		return err
	}
	if err := w.setRow(sheet, 1, "group", "value"); err != nil {
		return err
	}
	for i, gm := range metrics {
		if err := w.setRow(sheet, i+2, gm.Group, gm.Value); err != nil {
			return err
		}
	}
	return nil
}

// Save drops the default empty sheet and writes the workbook to disk.
func (w *ExcelWriter) Save() error {
	if len(w.file.GetSheetList()) > 1 {
		if err := w.file.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("storage: delete default sheet: %w", err)
		}
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("storage: save %q: %w", w.path, err)
	}
	w.logger.Info("[storage] Report saved to %s", w.path)
	return nil
}

// Close releases the in-memory workbook.
func (w *ExcelWriter) Close() error {
	return w.file.Close()
}
