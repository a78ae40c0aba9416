package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crickalytics/internal/dataset"
	"crickalytics/internal/shared/testutil"
	"crickalytics/internal/validation"
	"crickalytics/pkg/contracts"
)

func newHealthService(t *testing.T, dir string) *HealthService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cache, err := dataset.NewCache(dataset.NewLoader(logger), dataset.DefaultSources(dir), logger)
	require.NoError(t, err)
	return NewHealthService(cache, validation.NewFileValidator(logger), logger)
}

func TestHealthService_HealthAndLiveness(t *testing.T) {
	hs := newHealthService(t, testutil.WriteFixture(t, testutil.SampleFixture()))
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, StatusOK, health.Status)
	assert.Equal(t, contracts.Version, health.Version)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, StatusAlive, live.Status)
	assert.Contains(t, live.Runtime, "goroutines")
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T) string
		wantStatus string
		wantFiles  string
	}{
		{
			name: "complete dataset",
			setup: func(t *testing.T) string {
				return testutil.WriteFixture(t, testutil.SampleFixture())
			},
			wantStatus: StatusReady,
			wantFiles:  StatusReady,
		},
		{
			name: "optional summaries missing",
			setup: func(t *testing.T) string {
				f := testutil.SampleFixture()
				f.MatchSummaries = nil
				return testutil.WriteFixture(t, f)
			},
			wantStatus: StatusReady,
			wantFiles:  StatusReady,
		},
		{
			name: "required file missing",
			setup: func(t *testing.T) string {
				f := testutil.SampleFixture()
				f.Partnerships = nil
				return testutil.WriteFixture(t, f)
			},
			wantStatus: StatusDegraded,
			wantFiles:  StatusDegraded,
		},
		{
			name: "directory missing",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent")
			},
			wantStatus: StatusDegraded,
			wantFiles:  StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := newHealthService(t, tt.setup(t))
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			files, ok := status.Services["data_files"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, tt.wantFiles, files.Status)
		})
	}
}

func TestHealthService_ReadinessRecovers(t *testing.T) {
	f := testutil.SampleFixture()
	dir := testutil.WriteFixture(t, f)
	require.NoError(t, os.Remove(filepath.Join(dir, testutil.BowlingFile)))

	hs := newHealthService(t, dir)
	assert.Equal(t, StatusDegraded, hs.ReadinessCheck(context.Background()).Status)

	testutil.WriteCSV(t, filepath.Join(dir, testutil.BowlingFile), f.Bowling, false)
	assert.Equal(t, StatusReady, hs.ReadinessCheck(context.Background()).Status)
}

func TestHealthService_Version(t *testing.T) {
	hs := newHealthService(t, t.TempDir())
	info := hs.Version()
	assert.Equal(t, contracts.Version, info["version"])
	assert.Contains(t, info, "go_version")
	assert.Contains(t, info, "uptime")
}
