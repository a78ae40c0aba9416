package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "crickalytics/internal/errors"
	"crickalytics/internal/exporter"
	"crickalytics/internal/middleware"
	"crickalytics/internal/services"
	api "crickalytics/pkg/contracts/api/v1"
)

// DashboardHandler handles entity, overview and view requests with RFC 7807
// error responses
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	query        *middleware.QueryParamValidator
	body         *middleware.ValidationMiddleware
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		body:         middleware.NewValidationMiddleware(logger, errorHandler),
	}
}

// Routes registers the dashboard routes on r.
func (h *DashboardHandler) Routes(r chi.Router) {
	r.Get("/overview", h.GetOverview)
	r.Get("/phases", h.GetPhases)

	r.Route("/entities", func(r chi.Router) {
		r.Get("/{kind}", h.GetEntities)
		r.Get("/teams/{team}/opponents", h.GetOpponents)
	})

	r.Route("/views", func(r chi.Router) {
		r.With(
			middleware.ContentTypeValidator(h.errorHandler, "application/json"),
			h.body.ValidateRequest,
		).Post("/", h.PostView)
		r.Get("/{view}", h.GetView)
		r.Get("/{view}/export", h.ExportView)
	})

	r.Route("/dataset", func(r chi.Router) {
		r.Get("/", h.GetDataset)
		r.Get("/files", h.GetDatasetFiles)
		r.Post("/reload", h.ReloadDataset)
	})
}

func success(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	})
}

// handleError maps service errors to problems.
func (h *DashboardHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownView):
		err = apierrors.NotFoundError("view")
	case errors.Is(err, services.ErrUnknownEntity):
		err = apierrors.NotFoundError("entity list")
	case errors.Is(err, exporter.ErrUnsupportedFormat):
		err = apierrors.UnsupportedFormatError(r.URL.Query().Get("format"))
	}
	h.errorHandler.HandleError(w, r, err)
}

// GetOverview handles GET /api/overview
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	success(w, r, overview, 1)
}

// GetPhases handles GET /api/phases
func (h *DashboardHandler) GetPhases(w http.ResponseWriter, r *http.Request) {
	phases := h.service.Phases()
	success(w, r, phases, len(phases.Ranges))
}

// GetEntities handles GET /api/entities/{kind}
func (h *DashboardHandler) GetEntities(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Entities(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	success(w, r, list.Values, list.Count)
}

// GetOpponents handles GET /api/entities/teams/{team}/opponents
func (h *DashboardHandler) GetOpponents(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Opponents(r.Context(), chi.URLParam(r, "team"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	success(w, r, list.Values, list.Count)
}

// GetView handles GET /api/views/{view}
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseViewQuery(w, r)
	if !ok {
		return
	}
	h.serveView(w, r, req)
}

// PostView handles POST /api/views
func (h *DashboardHandler) PostView(w http.ResponseWriter, r *http.Request) {
	var req api.ViewRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.body.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.serveView(w, r, req)
}

func (h *DashboardHandler) serveView(w http.ResponseWriter, r *http.Request, req api.ViewRequest) {
	result, err := h.service.View(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	success(w, r, result, result.Count)
}

// ExportView handles GET /api/views/{view}/export?format=csv|xlsx
func (h *DashboardHandler) ExportView(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseViewQuery(w, r)
	if !ok {
		return
	}
	format, ok := h.query.ValidateEnum(w, r, "format", exporter.Formats, string(exporter.FormatCSV))
	if !ok {
		return
	}

	file, err := h.service.Export(r.Context(), api.ExportRequest{ViewRequest: req, Format: format})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render export",
			slog.String("view", req.View),
			slog.String("format", format),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("failed to render export", err))
		return
	}

	w.Header().Set("Content-Type", file.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if len(file.Result.Warnings) > 0 {
		w.Header().Set("X-View-Warnings", strings.Join(file.Result.Warnings, "; "))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted", slog.String("error", err.Error()))
	}
}

// GetDataset handles GET /api/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Dataset(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	success(w, r, info, 1)
}

// GetDatasetFiles handles GET /api/dataset/files
func (h *DashboardHandler) GetDatasetFiles(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Files(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	success(w, r, inv, len(inv.Sources)+len(inv.Extra))
}

// ReloadDataset handles POST /api/dataset/reload
func (h *DashboardHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Reload(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	success(w, r, info, 1)
}

// parseViewQuery reads a view request from the path and query string. On
// failure the problem response has been written and ok is false.
func (h *DashboardHandler) parseViewQuery(w http.ResponseWriter, r *http.Request) (api.ViewRequest, bool) {
	q := r.URL.Query()
	req := api.ViewRequest{
		View:    chi.URLParam(r, "view"),
		Bowler:  strings.TrimSpace(q.Get("bowler")),
		Batsman: strings.TrimSpace(q.Get("batsman")),
		Team:    strings.TrimSpace(q.Get("team")),
		Team1:   strings.TrimSpace(q.Get("team1")),
		Team2:   strings.TrimSpace(q.Get("team2")),
		Teams:   middleware.MultiValue(r, "teams"),
	}

	// Venue names contain commas, so only repeated keys separate them.
	for _, v := range q["venues"] {
		if v = strings.TrimSpace(v); v != "" {
			req.Venues = append(req.Venues, v)
		}
	}

	matchID, ok := h.query.ValidateInt(w, r, "match_id", 0, math.MaxInt64, 0)
	if !ok {
		return req, false
	}
	topN, ok := h.query.ValidateInt(w, r, "top_n", 0, 1000, 0)
	if !ok {
		return req, false
	}
	years, ok := h.query.ValidateIntList(w, r, "years")
	if !ok {
		return req, false
	}

	req.MatchID = matchID
	req.TopN = int(topN)
	req.Years = years
	return req, true
}
