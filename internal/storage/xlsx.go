// ABOUTME: Excel workbook export for daily health records.
// ABOUTME: Writes a single sheet with the CSV header and typed cells.
package storage

import (
	"fmt"

	"github.com/harperreed/healthlog/internal/models"
	"github.com/xuri/excelize/v2"
)

// XLSXSheet is the worksheet name used by ExportXLSX.
const XLSXSheet = "health_data"

// ExportXLSX returns an .xlsx workbook holding records.
func ExportXLSX(records []models.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(XLSXSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{r.DateKey(), r.ExerciseMinutes, r.SleepHours, string(r.Mood), r.Memo}
		if err := f.SetSheetRow(XLSXSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %s: %w", r.DateKey(), err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
