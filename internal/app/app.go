package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"crickalytics/internal/analytics"
	"crickalytics/internal/config"
	"crickalytics/internal/dataset"
	apierrors "crickalytics/internal/errors"
	"crickalytics/internal/infrastructure"
	customMiddleware "crickalytics/internal/middleware"
	"crickalytics/internal/services"
	handlers "crickalytics/internal/transport/http"
	"crickalytics/internal/validation"
	"crickalytics/pkg/contracts"
)

// AppName is reported in startup logs.
const AppName = "Crickalytics - ODI cricket analytics"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler

	Services *ServiceContainer
}

// ServiceContainer holds the services shared by the HTTP handlers
type ServiceContainer struct {
	Cache     *dataset.Cache
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication wires the application from cfg. A nil cfg loads the
// configuration from the usual locations and the environment.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load("")
		if err != nil {
			return nil, apierrors.NewConfigError("failed to load config", err)
		}
		cfg = loaded
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// SourcesFrom maps the data section of the configuration onto dataset sources.
func SourcesFrom(cfg config.DataConfig) dataset.Sources {
	return dataset.Sources{
		Dir:            cfg.Dir,
		Players:        cfg.PlayersFile,
		Bowling:        cfg.BowlingFile,
		FallOfWickets:  cfg.FallOfWicketsFile,
		Partnerships:   cfg.PartnershipsFile,
		MatchSummaries: cfg.MatchSummariesFile,
	}
}

// PhasesFrom maps the phases section of the configuration.
func PhasesFrom(cfg config.PhasesConfig) analytics.PhaseBoundaries {
	return analytics.PhaseBoundaries{
		PowerplayEnd: cfg.PowerplayEnd,
		MiddleEnd:    cfg.MiddleEnd,
		InningsOvers: cfg.InningsOvers,
	}
}

// NewServiceContainer builds the dataset cache and the services over it.
// The command line exporter uses it without the HTTP layer.
func NewServiceContainer(cfg *config.Config, providers *infrastructure.OTelProviders, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*ServiceContainer, error) {
	phases := PhasesFrom(cfg.Phases)
	if err := phases.Validate(); err != nil {
		return nil, apierrors.NewConfigError("invalid phases section", err)
	}

	opts := []dataset.CacheOption{dataset.WithKeyMode(dataset.KeyMode(cfg.Data.CacheKeyMode))}
	if providers != nil {
		opts = append(opts, dataset.WithMeter(providers.Meter))
	}
	sources := SourcesFrom(cfg.Data)
	sources.Dir = cfg.DataDir()
	cache, err := dataset.NewCache(dataset.NewLoader(logger), sources, logger, opts...)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to create dataset cache", err).
			WithContext("cache_key_mode", cfg.Data.CacheKeyMode)
	}

	var tracer trace.Tracer
	if providers != nil {
		tracer = providers.Tracer
	}

	return &ServiceContainer{
		Cache:     cache,
		Dashboard: services.NewDashboardService(cache, phases, metrics, tracer, logger),
		Health:    services.NewHealthService(cache, validation.NewFileValidator(logger), logger),
	}, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	container, err := NewServiceContainer(a.Config, a.OTelProviders, a.Metrics, a.Logger)
	if err != nil {
		return err
	}
	a.Services = container

	a.Logger.Info("Services initialized",
		slog.String("data_dir", container.Cache.Sources().Dir),
		slog.String("cache_key_mode", a.Config.Data.CacheKeyMode))
	return nil
}

// setupRouter configures the HTTP router
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → access log and recovery → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(apierrors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	// Scrapes skip the API timeout.
	handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP).Routes(r)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	dashboardHandler := handlers.NewDashboardHandler(a.Services.Dashboard, a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler.Routes(r)
		dashboardHandler.Routes(r)
	})
}

// getCORSConfig builds the CORS policy from the security configuration.
// With CORS disabled only same-host origins are allowed.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			"Content-Disposition",
			"X-View-Warnings",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	port := a.Config.Server.Port
	cfg.AllowedOrigins = []string{
		fmt.Sprintf("http://localhost:%d", port),
		fmt.Sprintf("http://127.0.0.1:%d", port),
	}
	if a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	a.Logger.Info("CORS configured", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", a.Server.Addr))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	// The run context may already be cancelled.
	return a.Stop(context.Background())
}

// performStartupHealthCheck loads the dataset once so the first request is
// served warm, and reports anything that leaves the service degraded.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	status := a.Services.Health.ReadinessCheck(ctx)
	if status.Status == services.StatusReady {
		a.Logger.InfoContext(ctx, "Startup health check passed")
		return nil
	}

	names := make([]string, 0, len(status.Services))
	for name := range status.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	var warnings []string
	for _, name := range names {
		svc, ok := status.Services[name].(services.ServiceHealth)
		if !ok || svc.Status == services.StatusReady {
			continue
		}
		msg := fmt.Sprintf("%s: %s", name, svc.Message)
		if len(svc.Missing) > 0 {
			msg += fmt.Sprintf(" (%s)", strings.Join(svc.Missing, ", "))
		}
		warnings = append(warnings, msg)
	}
	return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
}
