package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"divcli/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version         string
	buildTime       string
	gitCommit       string
	source          WorkbookSource
	outputDir       string
	providerEnabled bool
	startTime       time.Time
	logger          *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service for the given data source and
// output directory.
func NewHealthService(source WorkbookSource, outputDir string, providerEnabled bool, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("HealthService initialized",
		slog.String("version", contracts.Version),
		slog.Bool("provider_enabled", providerEnabled))

	return &HealthService{
		version:         contracts.Version,
		buildTime:       contracts.BuildTime,
		gitCommit:       contracts.GitCommit,
		source:          source,
		outputDir:       outputDir,
		providerEnabled: providerEnabled,
		startTime:       time.Now(),
		logger:          logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))
	return status
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"data":        hs.checkDataHealth(),
			"output":      hs.checkOutputHealth(),
			"market_data": hs.checkProviderHealth(),
		},
	}

	for name, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "Service not ready",
				slog.String("service", name),
				slog.String("message", sh.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
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
	result := map[string]interface{}{
		"version":      hs.version,
		"api_version":  contracts.APIVersion,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "unknown" && hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "unknown" && hs.gitCommit != "" {
		result["git_commit"] = hs.gitCommit
	}
	return result
}

// checkDataHealth reports whether the spreadsheet source is reachable
// without downloading it.
func (hs *HealthService) checkDataHealth() ServiceHealth {
	switch src := hs.source.(type) {
	case nil:
		return ServiceHealth{Status: "not_ready", Message: "no data source configured"}
	case ExcelSource:
		if _, err := os.Stat(src.Path); err != nil {
			return ServiceHealth{
				Status:  "not_ready",
				Message: fmt.Sprintf("Data file not accessible: %v", err),
			}
		}
	case SheetsSource:
		if src.Service == nil {
			return ServiceHealth{Status: "not_ready", Message: "sheets client not initialized"}
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: hs.source.Describe(),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// checkOutputHealth checks that charts and CSV files can be written
func (hs *HealthService) checkOutputHealth() ServiceHealth {
	if err := os.MkdirAll(hs.outputDir, 0o755); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Cannot write to output directory: %v", err),
		}
	}
	return ServiceHealth{Status: "ready", Message: hs.outputDir}
}

// checkProviderHealth never fails readiness: without a provider, symbols
// resolve from the spreadsheet only.
func (hs *HealthService) checkProviderHealth() ServiceHealth {
	if !hs.providerEnabled {
		return ServiceHealth{Status: "ready", Message: "disabled"}
	}
	return ServiceHealth{Status: "ready", Message: "enabled"}
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"version":   hs.Version(),
	}
}
