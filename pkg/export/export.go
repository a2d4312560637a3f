package export

import (
	"fmt"
	"strings"
)

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
	// Totals is rendered as a final summary row keyed by header.
	Totals map[string]string
}

// Format identifies an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts csv, pdf or xlsx (case insensitive). Empty defaults to csv.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Renderer turns a dataset into file bytes.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}

// Renderers bundles one renderer per supported format.
type Renderers map[Format]Renderer

// DefaultRenderers wires the CSV, PDF and XLSX exporters.
func DefaultRenderers() Renderers {
	return Renderers{
		FormatCSV:  NewCSVExporter(),
		FormatPDF:  NewPDFExporter(),
		FormatXLSX: NewXLSXExporter(),
	}
}

// Render dispatches to the renderer registered for format.
func (r Renderers) Render(format Format, data Dataset) ([]byte, error) {
	renderer, ok := r[format]
	if !ok {
		return nil, fmt.Errorf("no renderer for %s", format)
	}
	return renderer.Render(data)
}

func (d Dataset) records() [][]string {
	out := make([][]string, 0, len(d.Rows)+1)
	for _, row := range d.Rows {
		out = append(out, d.record(row))
	}
	if len(d.Totals) > 0 {
		out = append(out, d.record(d.Totals))
	}
	return out
}

func (d Dataset) record(row map[string]string) []string {
	record := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		record[i] = row[header]
	}
	return record
}
