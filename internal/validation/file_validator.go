package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"crickalytics/internal/dataset"
)

// FileValidator checks the data directory and export destinations.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// DataDirReport summarises a data directory check.
type DataDirReport struct {
	Dir     string   `json:"dir"`
	Present []string `json:"present"`
	Missing []string `json:"missing"`
}

// Complete reports whether every configured source file is present.
func (r DataDirReport) Complete() bool {
	return len(r.Missing) == 0
}

// ValidateDataDirectory confirms the data directory exists and reports which
// configured CSV files are present. Missing files are not an error here; the
// loader decides which of them are required.
func (v *FileValidator) ValidateDataDirectory(src dataset.Sources) (DataDirReport, error) {
	report := DataDirReport{Dir: src.Dir}

	info, err := os.Stat(src.Dir)
	if os.IsNotExist(err) {
		v.logger.Error("Data directory does not exist", slog.String("directory", src.Dir))
		return report, fmt.Errorf("data directory %s does not exist", src.Dir)
	}
	if err != nil {
		return report, fmt.Errorf("failed to stat directory %s: %w", src.Dir, err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("%s is not a directory", src.Dir)
	}

	for _, path := range src.Files() {
		name := filepath.Base(path)
		if err := v.ValidateCSVFile(path); err != nil {
			report.Missing = append(report.Missing, name)
			continue
		}
		report.Present = append(report.Present, name)
	}

	if !report.Complete() {
		v.logger.Warn("Data directory is incomplete",
			slog.String("directory", src.Dir),
			slog.Any("missing", report.Missing))
	} else {
		v.logger.Info("Data directory validated",
			slog.String("directory", src.Dir),
			slog.Int("files_found", len(report.Present)))
	}
	return report, nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks that path is a readable file with a .csv extension.
func (v *FileValidator) ValidateCSVFile(path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return fmt.Errorf("file %s is not a CSV file (extension: %s)", path, ext)
	}
	return v.ValidateFile(path)
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	tmp.Close()
	os.Remove(tmp.Name())
	return nil
}

// ValidateExportPath checks the destination of an export: its extension
// must match format and its directory must be writable.
func (v *FileValidator) ValidateExportPath(path, format string) error {
	want := "." + strings.ToLower(format)
	if ext := strings.ToLower(filepath.Ext(path)); ext != want {
		return fmt.Errorf("output file %s must have extension %s", path, want)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}
