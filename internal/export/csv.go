package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM нужен, чтобы табличные редакторы распознали кодировку.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV пишет таблицу с разделителем ';' и BOM в начале файла.
type CSV struct {
	delimiter rune
}

// NewCSV создаёт CSV-экспортёр.
func NewCSV() *CSV {
	return &CSV{delimiter: ';'}
}

func (e *CSV) Format() Format { return FormatCSV }

func (e *CSV) Supports(format Format) bool { return format == FormatCSV }

func (e *CSV) Export(w io.Writer, table Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = e.delimiter

	if table.Title != "" {
		if err := cw.Write([]string{table.Title}); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
	}
	if err := cw.Write(table.Headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if table.Summary != "" {
		if err := cw.Write([]string{table.Summary}); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
