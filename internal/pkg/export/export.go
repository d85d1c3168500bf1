// Package export renders tabular data as CSV or PDF documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Format is an export file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv", "excel", "xlsx" (all CSV) and "pdf".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv", "excel", "xlsx":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns base with the extension for f.
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Column maps a record field onto an output column.
type Column struct {
	Key    string
	Header string
	// Width is a relative PDF column weight; zero means 1.
	Width float64
}

// Valuer exposes record fields by name.
type Valuer interface {
	Value(field string) (any, bool)
}

// Row is one record flattened to column values.
type Row []string

// Rows flattens items onto cols.
func Rows[T Valuer](items []T, cols []Column) []Row {
	out := make([]Row, 0, len(items))
	for _, item := range items {
		row := make(Row, len(cols))
		for i, c := range cols {
			if v, ok := item.Value(c.Key); ok {
				row[i] = FormatValue(v)
			}
		}
		out = append(out, row)
	}
	return out
}

// FormatValue renders a single cell.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case []string:
		return strings.Join(t, "; ")
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case *float64:
		if t == nil {
			return ""
		}
		return strconv.FormatFloat(*t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case *int64:
		if t == nil {
			return ""
		}
		return strconv.FormatInt(*t, 10)
	case int:
		return strconv.Itoa(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// WriteCSV writes a header row followed by rows. Cells containing commas,
// quotes or line breaks are quoted with inner quotes doubled.
func WriteCSV(w io.Writer, cols []Column, rows []Row) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
