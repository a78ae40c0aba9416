package http

import (
	"context"

	"crickalytics/internal/files"
	"crickalytics/internal/services"
	api "crickalytics/pkg/contracts/api/v1"
)

// DashboardServiceInterface defines the dashboard operations used by the
// HTTP layer
type DashboardServiceInterface interface {
	Overview(ctx context.Context) (*services.OverviewResult, error)
	Entities(ctx context.Context, kind string) (*services.EntityList, error)
	Opponents(ctx context.Context, team string) (*services.EntityList, error)
	Phases() services.PhaseDefinition
	View(ctx context.Context, req api.ViewRequest) (*services.ViewResult, error)
	Export(ctx context.Context, req api.ExportRequest) (*services.ExportFile, error)
	Reload(ctx context.Context) (*services.DatasetInfo, error)
	Dataset(ctx context.Context) (*services.DatasetInfo, error)
	Files(ctx context.Context) (*files.Inventory, error)
}

// HealthServiceInterface defines the health operations
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

var (
	_ DashboardServiceInterface = (*services.DashboardService)(nil)
	_ HealthServiceInterface    = (*services.HealthService)(nil)
)
