package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"crickalytics/internal/dataset"
	"crickalytics/internal/validation"
	"crickalytics/pkg/contracts"
)

// Health status values.
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusAlive    = "alive"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	cache     *dataset.Cache
	files     *validation.FileValidator
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(cache *dataset.Cache, files *validation.FileValidator, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if files == nil {
		files = validation.NewFileValidator(logger)
	}

	logger.Info("HealthService initialized",
		slog.String("version", contracts.Version),
		slog.String("data_dir", cache.Sources().Dir))

	return &HealthService{
		version:   contracts.Version,
		cache:     cache,
		files:     files,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the dataset can be served. Missing files
// or a failed load make the service degraded rather than down.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	files := hs.checkDataFiles()
	status.Services["data_files"] = files
	snapshot := hs.checkSnapshot(ctx)
	status.Services["dataset"] = snapshot

	if files.Status != StatusReady || snapshot.Status != StatusReady {
		status.Status = StatusDegraded
		hs.logger.WarnContext(ctx, "ReadinessCheck: degraded",
			slog.String("data_files", files.Message),
			slog.String("dataset", snapshot.Message))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"api_version":  info.APIVersion,
		"data_format":  info.DataFormat,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// checkDataFiles checks that every configured source file is present
func (hs *HealthService) checkDataFiles() ServiceHealth {
	report, err := hs.files.ValidateDataDirectory(hs.cache.Sources())
	if err != nil {
		return ServiceHealth{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("Data directory unavailable: %v", err),
		}
	}
	if report.Complete() {
		return ServiceHealth{Status: StatusReady, Message: "All data files present"}
	}

	optional := filepath.Base(hs.cache.Sources().MatchSummaries)
	for _, name := range report.Missing {
		if name != optional {
			return ServiceHealth{
				Status:  StatusDegraded,
				Message: "Required data files missing",
				Missing: report.Missing,
			}
		}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: "Optional match summaries missing",
		Missing: report.Missing,
	}
}

// checkSnapshot checks that the dataset loads
func (hs *HealthService) checkSnapshot(ctx context.Context) ServiceHealth {
	snap, err := hs.cache.Get(ctx)
	if err != nil {
		return ServiceHealth{Status: StatusDegraded, Message: err.Error()}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("Snapshot %s loaded at %s", snap.Fingerprint, snap.LoadedAt.Format(time.RFC3339)),
	}
}
