package services

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"crickalytics/internal/analytics"
	"crickalytics/internal/dataset"
	"crickalytics/internal/entities"
	apierrors "crickalytics/internal/errors"
	"crickalytics/internal/infrastructure"
	"crickalytics/internal/shared/testutil"
	api "crickalytics/pkg/contracts/api/v1"
)

func newDashboard(t *testing.T, f testutil.Fixture) (*DashboardService, *testutil.BufferedSlogHandler) {
	t.Helper()
	return newDashboardIn(t, testutil.WriteFixture(t, f), nil)
}

func newDashboardIn(t *testing.T, dir string, metrics *infrastructure.BusinessMetrics) (*DashboardService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	cache, err := dataset.NewCache(dataset.NewLoader(logger), dataset.DefaultSources(dir), logger)
	require.NoError(t, err)
	return NewDashboardService(cache, analytics.DefaultPhaseBoundaries(), metrics, nil, logger), handler
}

func TestDashboardService_Entities(t *testing.T) {
	svc, _ := newDashboard(t, testutil.SampleFixture())
	ctx := context.Background()

	tests := []struct {
		kind string
		want any
	}{
		{kind: EntityBowlers, want: []string{"Y"}},
		{kind: EntityBatsmen, want: []string{"A", "B", "C"}},
		{kind: EntityTeams, want: []string{"Australia", "India", "Pakistan"}},
		{kind: EntityPartnershipTeams, want: []string{"India", "Pakistan"}},
		{kind: EntityMatches, want: []int64{100, 101}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			list, err := svc.Entities(ctx, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, list.Values)
			assert.Equal(t, tt.kind, list.Kind)
		})
	}

	_, err := svc.Entities(ctx, "umpires")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestDashboardService_Opponents(t *testing.T) {
	svc, _ := newDashboard(t, testutil.SampleFixture())

	list, err := svc.Opponents(context.Background(), "India")
	require.NoError(t, err)
	assert.Equal(t, []string{"Australia", "Pakistan"}, list.Values)
	assert.Equal(t, 2, list.Count)

	_, err = svc.Opponents(context.Background(), "Narnia")
	var filterErr *entities.InvalidFilterError
	assert.ErrorAs(t, err, &filterErr)
}

func TestDashboardService_Overview(t *testing.T) {
	svc, _ := newDashboard(t, testutil.SampleFixture())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, overview.Matches)
	assert.Equal(t, 6, overview.Wickets)
	assert.NotEmpty(t, overview.Dataset.Fingerprint)
	assert.True(t, overview.Dataset.HasMatchSummaries)
}

func TestDashboardService_View(t *testing.T) {
	svc, _ := newDashboard(t, testutil.SampleFixture())
	ctx := context.Background()

	tests := []struct {
		name         string
		req          api.ViewRequest
		wantCount    int
		wantWarning  string
		wantFilter   string
		wantFiltered any
	}{
		{
			name:         "bowler view",
			req:          api.ViewRequest{View: api.ViewWicketsVsOpposition, Bowler: "Y"},
			wantCount:    2,
			wantFilter:   "bowler",
			wantFiltered: "Y",
		},
		{
			name:         "missing bowler defaults to first",
			req:          api.ViewRequest{View: api.ViewWicketsVsOpposition},
			wantCount:    2,
			wantWarning:  "no bowler selected, showing Y",
			wantFilter:   "bowler",
			wantFiltered: "Y",
		},
		{
			name:         "top n clamped",
			req:          api.ViewRequest{View: api.ViewTopPartners, Batsman: "A", TopN: 2},
			wantCount:    2,
			wantWarning:  "top_n 2 out of range, using 5",
			wantFilter:   "top_n",
			wantFiltered: 5,
		},
		{
			name:         "head to head defaults",
			req:          api.ViewRequest{View: api.ViewHeadToHead},
			wantCount:    2,
			wantWarning:  "no team2 selected, showing India",
			wantFilter:   "team1",
			wantFiltered: "Australia",
		},
		{
			name:         "innings progression",
			req:          api.ViewRequest{View: api.ViewInningsProgression, MatchID: 100},
			wantCount:    2,
			wantFilter:   "match_id",
			wantFiltered: int64(100),
		},
		{
			name:         "unknown run-rate teams empty the result",
			req:          api.ViewRequest{View: api.ViewRunRates, Teams: []string{"Narnia"}},
			wantCount:    0,
			wantWarning:  EmptyResultWarning,
			wantFilter:   "teams",
			wantFiltered: []string{},
		},
		{
			name:         "unknown years are dropped",
			req:          api.ViewRequest{View: api.ViewMatchesPerYear, Years: []int{2019, 1999}},
			wantCount:    1,
			wantWarning:  "ignored unknown years: 1999",
			wantFilter:   "years",
			wantFiltered: []int{2019},
		},
		{
			name:         "team comparison defaults to three teams",
			req:          api.ViewRequest{View: api.ViewTeamComparison},
			wantCount:    3,
			wantWarning:  "no teams selected, showing Australia, India, Pakistan",
			wantFilter:   "teams",
			wantFiltered: []string{"Australia", "India", "Pakistan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.View(ctx, tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.req.View, result.View)
			assert.Equal(t, tt.wantCount, result.Count)
			assert.False(t, result.Meta.Degraded)
			assert.NotEmpty(t, result.Meta.Fingerprint)
			require.NotNil(t, result.Chart)
			require.NotNil(t, result.Table)
			assert.Equal(t, tt.wantCount, result.Table.Len()/max(1, rowsPerItem(result)))
			if tt.wantWarning != "" {
				assert.Contains(t, result.Warnings, tt.wantWarning)
			}
			assert.Equal(t, tt.wantFiltered, result.Meta.Filters[tt.wantFilter])
		})
	}
}

// rowsPerItem is the number of export rows per result item.
func rowsPerItem(r *ViewResult) int {
	if r.View == api.ViewInningsProgression {
		return 50
	}
	return 1
}

func TestDashboardService_ViewErrors(t *testing.T) {
	svc, _ := newDashboard(t, testutil.SampleFixture())
	ctx := context.Background()

	t.Run("unknown bowler", func(t *testing.T) {
		_, err := svc.View(ctx, api.ViewRequest{View: api.ViewEconomyDistribution, Bowler: "Nobody"})
		var filterErr *entities.InvalidFilterError
		require.ErrorAs(t, err, &filterErr)
		assert.Equal(t, "bowler", filterErr.Field)
		assert.Equal(t, "Nobody", filterErr.Value)
	})

	t.Run("unknown match", func(t *testing.T) {
		_, err := svc.View(ctx, api.ViewRequest{View: api.ViewMatchBowlers, MatchID: 102})
		var filterErr *entities.InvalidFilterError
		require.ErrorAs(t, err, &filterErr)
		assert.Equal(t, "match_id", filterErr.Field)
	})

	t.Run("head to head between teams that never met", func(t *testing.T) {
		_, err := svc.View(ctx, api.ViewRequest{View: api.ViewHeadToHead, Team1: "Australia", Team2: "Pakistan"})
		var filterErr *entities.InvalidFilterError
		require.ErrorAs(t, err, &filterErr)
		assert.Equal(t, "team2", filterErr.Field)
		assert.Equal(t, "Pakistan", filterErr.Value)
	})

	t.Run("head to head against itself", func(t *testing.T) {
		_, err := svc.View(ctx, api.ViewRequest{View: api.ViewHeadToHead, Team1: "India", Team2: "India"})
		var filterErr *entities.InvalidFilterError
		require.ErrorAs(t, err, &filterErr)
		assert.Equal(t, "team2", filterErr.Field)
	})

	t.Run("unknown view", func(t *testing.T) {
		_, err := svc.View(ctx, api.ViewRequest{View: "batting-averages"})
		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)
	})
}

func TestDashboardService_EveryViewAnswers(t *testing.T) {
	svc, _ := newDashboard(t, testutil.SampleFixture())

	for _, view := range api.Views {
		t.Run(view, func(t *testing.T) {
			result, err := svc.View(context.Background(), api.ViewRequest{View: view})
			require.NoError(t, err)
			assert.False(t, result.Meta.Degraded)
			assert.NotNil(t, result.Rows)
			assert.NotNil(t, result.Table)
		})
	}
}

func TestDashboardService_DegradedViews(t *testing.T) {
	t.Run("missing required file", func(t *testing.T) {
		f := testutil.SampleFixture()
		f.Bowling = nil
		svc, handler := newDashboard(t, f)

		result, err := svc.View(context.Background(), api.ViewRequest{View: api.ViewTeamWickets})
		require.NoError(t, err)
		assert.True(t, result.Meta.Degraded)
		assert.Equal(t, 0, result.Count)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], testutil.BowlingFile)
		assert.Equal(t, "degraded", result.Outcome())
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "view computed")

		_, err = svc.Overview(context.Background())
		var missingErr *dataset.MissingDataError
		assert.ErrorAs(t, err, &missingErr)
	})

	t.Run("unreadable required file", func(t *testing.T) {
		f := testutil.SampleFixture()
		f.Bowling = nil
		dir := testutil.WriteFixture(t, f)
		require.NoError(t, os.Mkdir(filepath.Join(dir, testutil.BowlingFile), 0o755))
		svc, _ := newDashboardIn(t, dir, nil)

		_, err := svc.View(context.Background(), api.ViewRequest{View: api.ViewTeamWickets})
		var appErr *apierrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apierrors.ErrTypeData, appErr.Type)
		assert.Contains(t, err.Error(), testutil.BowlingFile)
	})

	t.Run("missing match summaries", func(t *testing.T) {
		f := testutil.SampleFixture()
		f.MatchSummaries = nil
		svc, _ := newDashboard(t, f)

		result, err := svc.View(context.Background(), api.ViewRequest{View: api.ViewTopVenues})
		require.NoError(t, err)
		assert.True(t, result.Meta.Degraded)
		assert.Contains(t, result.Warnings[0], testutil.MatchSummariesFile)

		other, err := svc.View(context.Background(), api.ViewRequest{View: api.ViewTeamWickets})
		require.NoError(t, err)
		assert.False(t, other.Meta.Degraded)
	})

	t.Run("missing optional column", func(t *testing.T) {
		f := testutil.SampleFixture()
		for i, row := range f.Bowling {
			f.Bowling[i] = row[:len(row)-1]
		}
		svc, _ := newDashboard(t, f)

		result, err := svc.View(context.Background(), api.ViewRequest{View: api.ViewEconomyDistribution, Bowler: "Y"})
		require.NoError(t, err)
		assert.True(t, result.Meta.Degraded)
		assert.Contains(t, result.Warnings[0], "economy")

		wickets, err := svc.View(context.Background(), api.ViewRequest{View: api.ViewWicketsVsOpposition, Bowler: "Y"})
		require.NoError(t, err)
		assert.False(t, wickets.Meta.Degraded)
	})
}

func TestDashboardService_StateReused(t *testing.T) {
	svc, _ := newDashboard(t, testutil.SampleFixture())
	ctx := context.Background()

	first, err := svc.current(ctx)
	require.NoError(t, err)
	second, err := svc.current(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = svc.Reload(ctx)
	require.NoError(t, err)
	third, err := svc.current(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestDashboardService_Export(t *testing.T) {
	svc, _ := newDashboard(t, testutil.SampleFixture())
	ctx := context.Background()

	file, err := svc.Export(ctx, api.ExportRequest{
		ViewRequest: api.ViewRequest{View: api.ViewTeamWickets},
		Format:      "csv",
	})
	require.NoError(t, err)
	assert.Equal(t, "team-wickets.csv", file.Filename)

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	content := buf.String()
	assert.Contains(t, content, "team,wickets")
	assert.Contains(t, content, "India,4")
	assert.Contains(t, content, "Australia,2")

	_, err = svc.Export(ctx, api.ExportRequest{
		ViewRequest: api.ViewRequest{View: api.ViewTeamWickets},
		Format:      "pdf",
	})
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)
}

func TestDashboardService_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreateBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	svc, _ := newDashboardIn(t, testutil.WriteFixture(t, testutil.SampleFixture()), metrics)
	ctx := context.Background()

	_, err = svc.View(ctx, api.ViewRequest{View: api.ViewTeamWickets})
	require.NoError(t, err)
	_, err = svc.View(ctx, api.ViewRequest{View: api.ViewDismissalPositions, Batsman: "Nobody"})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	outcomes := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "view_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value("outcome")
				outcomes[outcome.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"ok": 1, "invalid": 1}, outcomes)
}

func TestDashboardService_Phases(t *testing.T) {
	svc, _ := newDashboard(t, testutil.SampleFixture())
	def := svc.Phases()
	assert.Equal(t, 10.0, def.Boundaries.PowerplayEnd)
	require.Len(t, def.Ranges, 3)
	assert.True(t, strings.EqualFold(string(def.Ranges[0].Phase), "powerplay"))
}

func TestDashboardService_Files(t *testing.T) {
	t.Run("inventory", func(t *testing.T) {
		f := testutil.SampleFixture()
		f.MatchSummaries = nil
		svc, _ := newDashboard(t, f)

		inv, err := svc.Files(context.Background())
		require.NoError(t, err)
		require.Len(t, inv.Sources, 5)
		assert.Empty(t, inv.Missing())
		assert.False(t, inv.Sources[4].Present)
		assert.Nil(t, svc.cache.Current())
	})

	t.Run("missing directory", func(t *testing.T) {
		svc, handler := newDashboardIn(t, filepath.Join(t.TempDir(), "absent"), nil)

		_, err := svc.Files(context.Background())
		var appErr *apierrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apierrors.ErrTypeStorage, appErr.Type)
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "data directory inventory failed")
	})
}
