package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crickalytics/internal/dataset"
	"crickalytics/internal/shared/testutil"
)

func TestValidateDataDirectory(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) string
		wantErr     bool
		wantMissing []string
	}{
		{
			name: "complete fixture",
			setup: func(t *testing.T) string {
				return testutil.WriteFixture(t, testutil.SampleFixture())
			},
		},
		{
			name: "summaries absent",
			setup: func(t *testing.T) string {
				f := testutil.SampleFixture()
				f.MatchSummaries = nil
				return testutil.WriteFixture(t, f)
			},
			wantMissing: []string{testutil.MatchSummariesFile},
		},
		{
			name: "directory absent",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			wantErr: true,
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "file.csv")
				require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
				return p
			},
			wantErr: true,
		},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := v.ValidateDataDirectory(dataset.DefaultSources(tt.setup(t)))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMissing, report.Missing)
			assert.Equal(t, len(tt.wantMissing) == 0, report.Complete())
		})
	}
}

func TestValidateExportPath(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	assert.NoError(t, v.ValidateExportPath(filepath.Join(dir, "out", "view.csv"), "csv"))
	assert.DirExists(t, filepath.Join(dir, "out"))

	assert.Error(t, v.ValidateExportPath(filepath.Join(dir, "view.csv"), "xlsx"))
	assert.NoError(t, v.ValidateExportPath(filepath.Join(dir, "VIEW.XLSX"), "xlsx"))
}

func TestValidateCSVFile(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))

	v := NewFileValidator(nil)
	assert.Error(t, v.ValidateCSVFile(txt))
	assert.Error(t, v.ValidateCSVFile(filepath.Join(dir, "missing.csv")))
}
