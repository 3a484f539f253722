// Package export выгружает табличные отчёты в файловые форматы.
package export

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Format задаёт формат выгрузки.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ErrUnsupportedFormat — формат не поддерживается ни одним экспортёром.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat разбирает формат из расширения или флага.
func ParseFormat(raw string) Format {
	return Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), ".")))
}

// Table описывает отчёт как именованные колонки и строки значений.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Summary выводится отдельной строкой после данных.
	Summary string
}

// Exporter пишет таблицу в конкретном формате.
type Exporter interface {
	Format() Format
	Supports(format Format) bool
	Export(w io.Writer, table Table) error
}

// Registry выбирает экспортёр по формату.
type Registry struct {
	exporters map[Format]Exporter
}

// NewRegistry собирает реестр из экспортёров.
func NewRegistry(exporters ...Exporter) *Registry {
	r := &Registry{exporters: make(map[Format]Exporter, len(exporters))}
	for _, e := range exporters {
		r.exporters[e.Format()] = e
	}
	return r
}

// DefaultRegistry возвращает реестр с CSV и XLSX.
func DefaultRegistry() *Registry {
	return NewRegistry(NewCSV(), NewXLSX())
}

// Supports сообщает, доступен ли формат.
func (r *Registry) Supports(format Format) bool {
	e, ok := r.exporters[format]
	return ok && e.Supports(format)
}

// Formats возвращает доступные форматы по алфавиту.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.exporters))
	for f := range r.exporters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Export пишет таблицу в выбранном формате.
func (r *Registry) Export(format Format, w io.Writer, table Table) error {
	if !r.Supports(format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return r.exporters[format].Export(w, table)
}
