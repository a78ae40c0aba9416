package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"crickalytics/internal/analytics"
	"crickalytics/internal/dataset"
	"crickalytics/internal/entities"
	apierrors "crickalytics/internal/errors"
	"crickalytics/internal/exporter"
	"crickalytics/internal/files"
	"crickalytics/internal/infrastructure"
	"crickalytics/internal/validation"
	api "crickalytics/pkg/contracts/api/v1"
)

// Entity list names served by Entities.
const (
	EntityBowlers          = "bowlers"
	EntityBatsmen          = "batsmen"
	EntityTeams            = "teams"
	EntityMatches          = "matches"
	EntityVenues           = "venues"
	EntityYears            = "years"
	EntityPartnershipTeams = "partnership-teams"
)

// EntityKinds lists every entity list name.
var EntityKinds = []string{
	EntityBowlers, EntityBatsmen, EntityTeams, EntityMatches,
	EntityVenues, EntityYears, EntityPartnershipTeams,
}

// EntityList is one selectable entity list.
type EntityList struct {
	Kind   string `json:"kind"`
	Values any    `json:"values"`
	Count  int    `json:"count"`
}

// DatasetInfo describes the snapshot currently served.
type DatasetInfo struct {
	Fingerprint       string            `json:"fingerprint"`
	LoadedAt          time.Time         `json:"loaded_at"`
	HasMatchSummaries bool              `json:"has_match_summaries"`
	Stats             dataset.LoadStats `json:"stats"`
}

// OverviewResult is the headline counts plus the dataset they came from.
type OverviewResult struct {
	analytics.Overview
	Dataset DatasetInfo `json:"dataset"`
}

// PhaseDefinition is the active phase boundary configuration.
type PhaseDefinition struct {
	Boundaries analytics.PhaseBoundaries `json:"boundaries"`
	Ranges     []analytics.Range         `json:"ranges"`
}

// ExportFile is a rendered view ready to be written out.
type ExportFile struct {
	Format   exporter.Format
	Filename string
	Result   *ViewResult
}

// Write encodes the export to w.
func (f *ExportFile) Write(w io.Writer) error {
	if err := exporter.Write(w, f.Format, f.Result.Table); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// DashboardService answers entity, overview and view requests from the
// cached dataset snapshot.
type DashboardService struct {
	cache     *dataset.Cache
	phases    analytics.PhaseBoundaries
	validator *validation.RequestValidator
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger

	mu    sync.Mutex
	state *viewState
}

// NewDashboardService creates a dashboard service. metrics and tracer may be
// nil.
func NewDashboardService(cache *dataset.Cache, phases analytics.PhaseBoundaries, metrics *infrastructure.BusinessMetrics, tracer trace.Tracer, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.MeterName)
	}

	logger = infrastructure.WithComponent(logger, "dashboard_service")
	logger.Info("DashboardService initialized",
		slog.String("data_dir", cache.Sources().Dir),
		slog.Float64("powerplay_end", phases.PowerplayEnd),
		slog.Float64("middle_end", phases.MiddleEnd))

	return &DashboardService{
		cache:     cache,
		phases:    phases,
		validator: validation.NewRequestValidator(),
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
	}
}

// current returns the derived state for the latest snapshot, rebuilding it
// only when the cache hands out a different snapshot.
func (s *DashboardService) current(ctx context.Context) (*viewState, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return nil, loadError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != nil && s.state.snap == snap {
		return s.state, nil
	}
	s.state = newViewState(snap, s.cache.Sources(), s.phases)
	s.logger.DebugContext(ctx, "view state rebuilt", slog.String("fingerprint", snap.Fingerprint))
	return s.state, nil
}

// Overview returns the headline counts.
func (s *DashboardService) Overview(ctx context.Context) (*OverviewResult, error) {
	state, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return &OverviewResult{
		Overview: state.engine.Overview(),
		Dataset:  datasetInfo(state.snap),
	}, nil
}

// Entities returns one selectable entity list.
func (s *DashboardService) Entities(ctx context.Context, kind string) (*EntityList, error) {
	state, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	r := state.resolver
	list := &EntityList{Kind: kind}
	switch kind {
	case EntityBowlers:
		list.Values, list.Count = stringList(r.Bowlers())
	case EntityBatsmen:
		list.Values, list.Count = stringList(r.Batsmen())
	case EntityTeams:
		list.Values, list.Count = stringList(r.Teams())
	case EntityPartnershipTeams:
		list.Values, list.Count = stringList(r.PartnershipTeams())
	case EntityVenues:
		list.Values, list.Count = stringList(r.Venues())
	case EntityMatches:
		matches := r.Matches()
		list.Values, list.Count = matches, len(matches)
	case EntityYears:
		years := r.Years()
		list.Values, list.Count = years, len(years)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, kind)
	}
	return list, nil
}

func stringList(values []string) ([]string, int) {
	return values, len(values)
}

// Opponents lists the teams that played team.
func (s *DashboardService) Opponents(ctx context.Context, team string) (*EntityList, error) {
	state, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if err := state.resolver.ValidateTeam("team", team); err != nil {
		return nil, err
	}
	opponents := state.resolver.Opponents(team)
	return &EntityList{Kind: "opponents", Values: opponents, Count: len(opponents)}, nil
}

// Phases returns the phase boundaries in use.
func (s *DashboardService) Phases() PhaseDefinition {
	return PhaseDefinition{Boundaries: s.phases, Ranges: s.phases.Ranges()}
}

// View validates req and computes the view. Missing source data yields a
// degraded result rather than an error.
func (s *DashboardService) View(ctx context.Context, req api.ViewRequest) (*ViewResult, error) {
	ctx, span := s.tracer.Start(ctx, "DashboardService.View",
		trace.WithAttributes(attribute.String("view", req.View)))
	defer span.End()

	start := time.Now()
	result, err := s.view(ctx, req)
	duration := time.Since(start)

	logger := s.logger
	if err != nil {
		outcome := "error"
		if isClientError(err) {
			outcome = "invalid"
		}
		s.metrics.RecordView(ctx, req.View, outcome, 0, duration)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnContext(ctx, "view failed",
			slog.String("view", req.View),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()))
		return nil, err
	}

	outcome := result.Outcome()
	s.metrics.RecordView(ctx, req.View, outcome, result.Count, duration)
	span.SetAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("rows", result.Count))

	level := slog.LevelDebug
	if result.Meta.Degraded {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "view computed",
		slog.String("view", req.View),
		slog.String("outcome", outcome),
		slog.Int("rows", result.Count),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", duration))
	return result, nil
}

func (s *DashboardService) view(ctx context.Context, req api.ViewRequest) (*ViewResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	state, err := s.current(ctx)
	if err != nil {
		var missingErr *dataset.MissingDataError
		var schemaErr *dataset.SchemaError
		if errors.As(err, &missingErr) || errors.As(err, &schemaErr) {
			return degradedResult(req.View, err), nil
		}
		return nil, err
	}
	return state.dispatch(req)
}

// Export computes the view of req and prepares it for writing in the
// requested format.
func (s *DashboardService) Export(ctx context.Context, req api.ExportRequest) (*ExportFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	result, err := s.View(ctx, req.ViewRequest)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordExport(ctx, req.View, string(format))
	s.logger.InfoContext(ctx, "view exported",
		slog.String("view", req.View),
		slog.String("format", string(format)),
		slog.Int("rows", result.Count))

	return &ExportFile{
		Format:   format,
		Filename: format.Filename(req.View),
		Result:   result,
	}, nil
}

// Reload drops the cached snapshot and loads the source files again.
func (s *DashboardService) Reload(ctx context.Context) (*DatasetInfo, error) {
	s.cache.Invalidate()
	state, err := s.current(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "dataset reload failed", slog.String("error", err.Error()))
		return nil, err
	}
	info := datasetInfo(state.snap)
	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.String("fingerprint", info.Fingerprint),
		slog.Duration("duration", info.Stats.Duration))
	return &info, nil
}

// Dataset reports the snapshot currently served, loading it if needed.
func (s *DashboardService) Dataset(ctx context.Context) (*DatasetInfo, error) {
	state, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	info := datasetInfo(state.snap)
	return &info, nil
}

// Files reports the configured source files and any other CSV files in the
// data directory. It does not load the dataset.
func (s *DashboardService) Files(ctx context.Context) (*files.Inventory, error) {
	inv, err := files.NewDiscovery(s.cache.Sources()).Inventory()
	if err != nil {
		s.logger.WarnContext(ctx, "data directory inventory failed", slog.String("error", err.Error()))
		return nil, apierrors.NewStorageError("data directory unavailable", err).
			WithContext("dir", s.cache.Sources().Dir)
	}
	if latest, ok := files.GetLatestFile(inv.Sources); ok {
		s.logger.DebugContext(ctx, "data directory inventoried",
			slog.Int("sources", len(inv.Sources)),
			slog.Int("extra", len(inv.Extra)),
			slog.String("latest", latest.Name))
	}
	return &inv, nil
}

// loadError keeps the typed dataset errors and wraps any other load failure
// as a data error.
func loadError(err error) error {
	var missingErr *dataset.MissingDataError
	var schemaErr *dataset.SchemaError
	switch {
	case errors.As(err, &missingErr), errors.As(err, &schemaErr),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apierrors.NewDataError("failed to read dataset", err)
}

// isClientError reports whether err was caused by the request itself.
func isClientError(err error) bool {
	var apiErr *apierrors.APIError
	var filterErr *entities.InvalidFilterError
	return errors.As(err, &apiErr) ||
		errors.As(err, &filterErr) ||
		errors.Is(err, ErrUnknownView) ||
		errors.Is(err, exporter.ErrUnsupportedFormat)
}

func datasetInfo(snap *dataset.Snapshot) DatasetInfo {
	return DatasetInfo{
		Fingerprint:       snap.Fingerprint,
		LoadedAt:          snap.LoadedAt,
		HasMatchSummaries: snap.HasMatchSummaries,
		Stats:             snap.Stats,
	}
}
