package exporter

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats.
var Formats = []string{string(FormatCSV), string(FormatXLSX)}

// ErrUnsupportedFormat is returned for a format other than csv or xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat normalises s into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the media type served for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds a download name for the table.
func (f Format) Filename(name string) string {
	if name == "" {
		name = "export"
	}
	return name + "." + string(f)
}

// Write encodes t to w in format f.
func Write(w io.Writer, f Format, t *Table) error {
	switch f {
	case FormatCSV:
		return NewCSVWriter().Write(w, t)
	case FormatXLSX:
		return NewXLSXWriter().Write(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// formatFloat formats a float64 for CSV output. Integral values print
// without a fraction; others keep up to four decimals.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(math.Round(f*1e4)/1e4, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return formatInt(int64(x))
	case int64:
		return formatInt(x)
	case float64:
		return formatFloat(x)
	case *float64:
		if x == nil {
			return ""
		}
		return formatFloat(*x)
	case bool:
		return formatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// cellValue converts v into what excelize should store.
func cellValue(v any) any {
	switch x := v.(type) {
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case fmt.Stringer:
		return x.String()
	}
	return v
}
