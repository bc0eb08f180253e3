package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"stockboard/internal/infrastructure"
	"stockboard/pkg/contracts/domain"
)

// HealthService reports process and dataset health for the readiness
// and liveness endpoints.
type HealthService struct {
	version   string
	buildTime string
	dashboard *DashboardService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Dataset   *domain.DatasetInfo    `json:"dataset,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, dashboard *DashboardService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dashboard: dashboard,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// Check returns the full health status including runtime stats and the
// active dataset summary.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version":      runtime.Version(),
			"goroutines":      runtime.NumGoroutine(),
			"memory_alloc_mb": memStats.Alloc / 1024 / 1024,
			"num_cpu":         runtime.NumCPU(),
		},
	}

	if s.dashboard != nil {
		info := s.dashboard.Info(ctx)
		status.Dataset = &info

		// A dashboard with no table to render is degraded, not dead.
		if info.RowCount == 0 {
			status.Status = "degraded"
		}
	}

	return status
}

// Version returns the build identification.
func (s *HealthService) Version() map[string]string {
	return map[string]string{
		"version":    s.version,
		"build_time": s.buildTime,
		"go_version": runtime.Version(),
	}
}

// Ready reports whether the service can render a dashboard.
func (s *HealthService) Ready(ctx context.Context) error {
	if s.dashboard == nil {
		return fmt.Errorf("dashboard service not configured")
	}
	if info := s.dashboard.Info(ctx); info.RowCount == 0 {
		return fmt.Errorf("no dataset loaded")
	}
	return nil
}
