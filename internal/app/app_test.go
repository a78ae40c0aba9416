package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crickalytics/internal/config"
	apierrors "crickalytics/internal/errors"
	"crickalytics/internal/services"
	"crickalytics/internal/shared/testutil"
)

// testConfig returns a configuration serving dir on a random port.
func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Logging.Level = "error"
	cfg.Data.Dir = dir
	return cfg
}

func newTestApp(t *testing.T, dir string) *Application {
	t.Helper()
	app, err := NewApplication(testConfig(dir))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func serve(app *Application, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Count  int             `json:"count"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestNewApplication(t *testing.T) {
	dir := testutil.WriteFixture(t, testutil.SampleFixture())
	app := newTestApp(t, dir)

	assert.NotNil(t, app.Config)
	assert.NotNil(t, app.Logger)
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Metrics)
	assert.NotNil(t, app.ErrorHandler)
	if assert.NotNil(t, app.Services) {
		assert.NotNil(t, app.Services.Cache)
		assert.NotNil(t, app.Services.Dashboard)
		assert.NotNil(t, app.Services.Health)
	}
	assert.Equal(t, "127.0.0.1:0", app.Server.Addr)
	assert.Equal(t, dir, app.Services.Cache.Sources().Dir)
}

func TestNewApplication_InitializationFailures(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(cfg *config.Config)
		errorContains string
	}{
		{
			name:          "bad cache key mode",
			mutate:        func(cfg *config.Config) { cfg.Data.CacheKeyMode = "inode" },
			errorContains: "cache key mode",
		},
		{
			name: "bad phase boundaries",
			mutate: func(cfg *config.Config) {
				cfg.Phases.PowerplayEnd = 45
			},
			errorContains: "phase boundaries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t.TempDir())
			tt.mutate(cfg)

			app, err := NewApplication(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.Nil(t, app)

			var appErr *apierrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
		})
	}
}

func TestSourcesFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Dir = "/srv/odi"

	src := SourcesFrom(cfg.Data)
	assert.Equal(t, "/srv/odi", src.Dir)
	assert.Equal(t, testutil.PlayersFile, src.Players)
	assert.Equal(t, testutil.BowlingFile, src.Bowling)
	assert.Equal(t, testutil.FallOfWicketsFile, src.FallOfWickets)
	assert.Equal(t, testutil.PartnershipsFile, src.Partnerships)
	assert.Equal(t, testutil.MatchSummariesFile, src.MatchSummaries)
	assert.Equal(t, filepath.Join("/srv/odi", testutil.BowlingFile), src.Path(src.Bowling))

	phases := PhasesFrom(cfg.Phases)
	assert.Equal(t, 10.0, phases.PowerplayEnd)
	assert.Equal(t, 40.0, phases.MiddleEnd)
	assert.Equal(t, 50.0, phases.InningsOvers)
}

func TestApplication_setupAPIRoutes(t *testing.T) {
	dir := testutil.WriteFixture(t, testutil.SampleFixture())
	app := newTestApp(t, dir)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantType   string
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK, "application/json"},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK, "application/json"},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK, "application/json"},
		{"version", http.MethodGet, "/api/version", http.StatusOK, "application/json"},
		{"overview", http.MethodGet, "/api/overview", http.StatusOK, "application/json"},
		{"phases", http.MethodGet, "/api/phases", http.StatusOK, "application/json"},
		{"teams", http.MethodGet, "/api/entities/teams", http.StatusOK, "application/json"},
		{"opponents", http.MethodGet, "/api/entities/teams/India/opponents", http.StatusOK, "application/json"},
		{"view", http.MethodGet, "/api/views/team-wickets", http.StatusOK, "application/json"},
		{"export", http.MethodGet, "/api/views/team-wickets/export?format=csv", http.StatusOK, "text/csv"},
		{"unknown view", http.MethodGet, "/api/views/nope", http.StatusNotFound, "application/problem+json"},
		{"unknown entity", http.MethodGet, "/api/entities/umpires", http.StatusNotFound, "application/problem+json"},
		{"unknown route", http.MethodGet, "/api/unknown", http.StatusNotFound, "application/problem+json"},
		{"wrong method", http.MethodDelete, "/api/overview", http.StatusMethodNotAllowed, "application/problem+json"},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt.method, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.wantType)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestApplication_RecoversHandlerPanic(t *testing.T) {
	dir := testutil.WriteFixture(t, testutil.SampleFixture())
	app := newTestApp(t, dir)
	app.Router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := serve(app, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestApplication_ViewRoundTrip(t *testing.T) {
	dir := testutil.WriteFixture(t, testutil.SampleFixture())
	app := newTestApp(t, dir)

	rec := serve(app, http.MethodGet, "/api/views/team-wickets")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "success", env.Status)

	var result services.ViewResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "team-wickets", result.View)
	assert.Equal(t, env.Count, result.Count)
	assert.False(t, result.Meta.Degraded)
	assert.NotEmpty(t, result.Meta.Fingerprint)

	export := serve(app, http.MethodGet, "/api/views/team-wickets/export?format=csv")
	require.Equal(t, http.StatusOK, export.Code)
	assert.Contains(t, export.Header().Get("Content-Disposition"), "team-wickets.csv")
	assert.Contains(t, export.Body.String(), "India,4")
}

func TestApplication_DegradedDataset(t *testing.T) {
	f := testutil.SampleFixture()
	f.Bowling = nil
	dir := testutil.WriteFixture(t, f)
	app := newTestApp(t, dir)

	ready := serve(app, http.MethodGet, "/api/health/ready")
	require.Equal(t, http.StatusOK, ready.Code)
	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(ready.Body.Bytes(), &status))
	assert.Equal(t, services.StatusDegraded, status.Status)

	rec := serve(app, http.MethodGet, "/api/views/team-wickets")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var result services.ViewResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Meta.Degraded)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], testutil.BowlingFile)
}

func TestApplication_ReloadPicksUpNewFiles(t *testing.T) {
	f := testutil.SampleFixture()
	f.MatchSummaries = nil
	dir := testutil.WriteFixture(t, f)
	app := newTestApp(t, dir)

	rec := serve(app, http.MethodGet, "/api/views/matches-per-year")
	require.Equal(t, http.StatusOK, rec.Code)
	var before services.ViewResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &before))
	assert.True(t, before.Meta.Degraded)

	testutil.WriteFixtureTo(t, dir, testutil.Fixture{MatchSummaries: testutil.SampleFixture().MatchSummaries})

	reload := serve(app, http.MethodPost, "/api/dataset/reload")
	require.Equal(t, http.StatusOK, reload.Code, reload.Body.String())

	rec = serve(app, http.MethodGet, "/api/views/matches-per-year")
	require.Equal(t, http.StatusOK, rec.Code)
	var after services.ViewResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &after))
	assert.False(t, after.Meta.Degraded)
	assert.Positive(t, after.Count)
}

func TestApplication_getCORSConfig(t *testing.T) {
	tests := []struct {
		name        string
		enableCORS  bool
		origins     []string
		wantOrigins []string
	}{
		{
			name:        "cors enabled adds configured origins",
			enableCORS:  true,
			origins:     []string{"http://localhost:8501"},
			wantOrigins: []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:8501"},
		},
		{
			name:        "cors disabled keeps same host only",
			enableCORS:  false,
			origins:     []string{"http://localhost:8501"},
			wantOrigins: []string{"http://localhost:8080", "http://127.0.0.1:8080"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			cfg := config.Default()
			cfg.Security.EnableCORS = tt.enableCORS
			cfg.Security.AllowedOrigins = tt.origins

			app := &Application{Config: cfg, Logger: logger}
			cors := app.getCORSConfig()

			assert.Equal(t, tt.wantOrigins, cors.AllowedOrigins)
			assert.Contains(t, cors.ExposedHeaders, "Content-Disposition")
			assert.Contains(t, cors.ExposedHeaders, "X-View-Warnings")
		})
	}
}

func TestApplication_CORSPreflight(t *testing.T) {
	dir := testutil.WriteFixture(t, testutil.SampleFixture())
	app := newTestApp(t, dir)

	req := httptest.NewRequest(http.MethodOptions, "/api/views/team-wickets", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:8501", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_performStartupHealthCheck(t *testing.T) {
	t.Run("complete dataset", func(t *testing.T) {
		dir := testutil.WriteFixture(t, testutil.SampleFixture())
		app := newTestApp(t, dir)

		assert.NoError(t, app.performStartupHealthCheck(context.Background()))
		assert.NotNil(t, app.Services.Cache.Current())
	})

	t.Run("missing required file", func(t *testing.T) {
		f := testutil.SampleFixture()
		f.Partnerships = nil
		dir := testutil.WriteFixture(t, f)
		app := newTestApp(t, dir)

		err := app.performStartupHealthCheck(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data_files")
		assert.Contains(t, err.Error(), testutil.PartnershipsFile)
	})
}

func TestApplication_StartStop(t *testing.T) {
	dir := testutil.WriteFixture(t, testutil.SampleFixture())
	app := newTestApp(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(context.Background()))

	// Shutdown is idempotent for http.Server.
	assert.ErrorIs(t, app.Server.ListenAndServe(), http.ErrServerClosed)
}
