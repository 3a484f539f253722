package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Отчет"

// XLSX пишет таблицу в книгу Excel: заголовок, шапка, данные и итог.
type XLSX struct{}

// NewXLSX создаёт XLSX-экспортёр.
func NewXLSX() *XLSX {
	return &XLSX{}
}

func (e *XLSX) Format() Format { return FormatXLSX }

func (e *XLSX) Supports(format Format) bool { return format == FormatXLSX }

func (e *XLSX) Export(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	row := 1
	columns := len(table.Headers)
	if columns == 0 {
		columns = 1
	}
	lastColumn, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}

	if table.Title != "" {
		if err := f.SetCellValue(xlsxSheet, "A1", table.Title); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheet, "A1", "A1", bold); err != nil {
			return fmt.Errorf("style title: %w", err)
		}
		if columns > 1 {
			if err := f.MergeCell(xlsxSheet, "A1", lastColumn+"1"); err != nil {
				return fmt.Errorf("merge title: %w", err)
			}
		}
		row = 3
	}

	headerCell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(xlsxSheet, headerCell, &table.Headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	headerEnd, _ := excelize.CoordinatesToCellName(columns, row)
	if err := f.SetCellStyle(xlsxSheet, headerCell, headerEnd, bold); err != nil {
		return fmt.Errorf("style headers: %w", err)
	}

	for _, values := range table.Rows {
		row++
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	if table.Summary != "" {
		row += 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(xlsxSheet, cell, table.Summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheet, cell, cell, bold); err != nil {
			return fmt.Errorf("style summary: %w", err)
		}
	}

	if err := f.SetColWidth(xlsxSheet, "A", lastColumn, 22); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
