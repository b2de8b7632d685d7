package services

import (
	"context"
	"log/slog"
	"time"

	"gnecli/internal/infrastructure"
	"gnecli/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	lookup    *LookupService
	collector *infrastructure.SystemMetricsCollector
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                      `json:"status"`
	Timestamp time.Time                   `json:"timestamp"`
	Version   string                      `json:"version"`
	Uptime    string                      `json:"uptime,omitempty"`
	Runtime   *infrastructure.SystemStats `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth    `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService reports on lookup. collector may be nil, in which case
// liveness carries no runtime statistics.
func NewHealthService(lookup *LookupService, collector *infrastructure.SystemMetricsCollector, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &HealthService{
		lookup:    lookup,
		collector: collector,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status. Runtime statistics are the
// collector's last sample, if it has taken one.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Uptime:    hs.Uptime().Round(time.Second).String(),
	}
	if hs.collector != nil {
		if stats := hs.collector.Latest(); stats.GoRoutines > 0 {
			status.Runtime = &stats
		}
	}
	return status
}

// ReadinessCheck reports "ready" once a dictionary is loaded.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	dict := ServiceHealth{Status: "ready"}
	if hs.lookup == nil || !hs.lookup.Ready() {
		dict = ServiceHealth{Status: "not_ready", Message: ErrDictionaryNotLoaded.Error()}
	}

	status := HealthStatus{
		Status:    dict.Status,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services:  map[string]ServiceHealth{"dictionary": dict},
	}
	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "Readiness check failed", slog.String("reason", dict.Message))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
	if hs.collector != nil {
		stats := hs.collector.Current(ctx)
		status.Runtime = &stats
	}
	return status
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

// Uptime is the time since the service was created.
func (hs *HealthService) Uptime() time.Duration {
	return time.Since(hs.startTime)
}
