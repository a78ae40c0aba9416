package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// XLSXWriter writes a table as a single-sheet workbook.
type XLSXWriter struct{}

// NewXLSXWriter creates an XLSX writer.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// Write encodes t as an XLSX workbook.
func (x *XLSXWriter) Write(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(t.Name)
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet stream: %w", err)
	}

	row := 1
	if len(t.Headers) > 0 {
		header := make([]interface{}, len(t.Headers))
		for i, h := range t.Headers {
			header[i] = h
		}
		if err := sw.SetRow("A1", header); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
		row++
	}

	for i, values := range t.Rows {
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
		row++
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile writes t to path, creating parent directories.
func (x *XLSXWriter) WriteFile(path string, t *Table) error {
	return writeFile(path, t, x.Write)
}

// SheetName makes name a legal sheet name: forbidden characters become
// '-' and the result is cut to 31 characters.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Sheet1"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}
