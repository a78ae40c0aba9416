package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// utf8BOM lets spreadsheet tools recognise UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	options WriteOptions
}

// NewCSVWriter creates a CSV writer that prefixes output with a BOM.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{options: WriteOptions{BOMPrefix: true}}
}

// NewCSVWriterWithOptions creates a CSV writer with explicit options.
func NewCSVWriterWithOptions(options WriteOptions) *CSVWriter {
	return &CSVWriter{options: options}
}

// Write encodes t as CSV.
func (c *CSVWriter) Write(w io.Writer, t *Table) error {
	if c.options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(t.Headers) > 0 {
		if err := writer.Write(t.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range t.Records() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes t to path, creating parent directories.
func (c *CSVWriter) WriteFile(path string, t *Table) error {
	return writeFile(path, t, c.Write)
}

func writeFile(path string, t *Table, write func(io.Writer, *Table) error) (err error) {
	slog.Info("Writing export file",
		slog.String("file_path", path),
		slog.Int("record_count", t.Len()))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	return write(file, t)
}
