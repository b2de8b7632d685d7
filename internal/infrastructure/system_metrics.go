package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemMetrics records Go runtime gauges for the lookup service.
type SystemMetrics struct {
	goRoutines    metric.Int64Gauge
	heapAlloc     metric.Int64Gauge
	gcCount       metric.Int64Gauge
	processUptime metric.Float64Gauge
}

// NewSystemMetrics creates the runtime gauges on meter.
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"system_memory_heap",
		metric.WithDescription("Heap bytes allocated and still in use"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"system_gc_count",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	processUptime, err := meter.Float64Gauge(
		"system_process_uptime",
		metric.WithDescription("Process uptime"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &SystemMetrics{
		goRoutines:    goRoutines,
		heapAlloc:     heapAlloc,
		gcCount:       gcCount,
		processUptime: processUptime,
	}, nil
}

// SystemStats is a snapshot of runtime statistics.
type SystemStats struct {
	GoRoutines    int64         `json:"goroutines"`
	HeapAlloc     int64         `json:"heap_alloc_bytes"`
	GCCount       uint32        `json:"gc_count"`
	ProcessUptime time.Duration `json:"-"`
	UptimeSeconds float64       `json:"uptime_seconds"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Collect reads the runtime statistics and records them.
func (sm *SystemMetrics) Collect(ctx context.Context, startTime time.Time) SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	uptime := time.Since(startTime)
	stats := SystemStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		HeapAlloc:     int64(memStats.HeapAlloc),
		GCCount:       memStats.NumGC,
		ProcessUptime: uptime,
		UptimeSeconds: uptime.Seconds(),
		Timestamp:     time.Now(),
	}

	sm.goRoutines.Record(ctx, stats.GoRoutines)
	sm.heapAlloc.Record(ctx, stats.HeapAlloc)
	sm.gcCount.Record(ctx, int64(stats.GCCount))
	sm.processUptime.Record(ctx, uptime.Seconds())
	return stats
}

// SystemMetricsCollector records SystemMetrics on a fixed interval and
// keeps the latest snapshot.
type SystemMetricsCollector struct {
	metrics   *SystemMetrics
	startTime time.Time
	interval  time.Duration
	stopOnce  sync.Once
	stopCh    chan struct{}

	mu     sync.RWMutex
	latest SystemStats
}

// NewSystemMetricsCollector creates a collector sampling every interval.
func NewSystemMetricsCollector(meter metric.Meter, interval time.Duration) (*SystemMetricsCollector, error) {
	metrics, err := NewSystemMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &SystemMetricsCollector{
		metrics:   metrics,
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start samples until ctx is done or Stop is called. It blocks.
func (smc *SystemMetricsCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(smc.interval)
	defer ticker.Stop()

	smc.sample(ctx)
	for {
		select {
		case <-ticker.C:
			smc.sample(ctx)
		case <-smc.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends Start. It is safe to call more than once.
func (smc *SystemMetricsCollector) Stop() {
	smc.stopOnce.Do(func() { close(smc.stopCh) })
}

// Current samples the runtime now and returns the snapshot.
func (smc *SystemMetricsCollector) Current(ctx context.Context) SystemStats {
	return smc.sample(ctx)
}

// Latest returns the most recent sample without taking a new one.
func (smc *SystemMetricsCollector) Latest() SystemStats {
	smc.mu.RLock()
	defer smc.mu.RUnlock()
	return smc.latest
}

func (smc *SystemMetricsCollector) sample(ctx context.Context) SystemStats {
	stats := smc.metrics.Collect(ctx, smc.startTime)
	smc.mu.Lock()
	smc.latest = stats
	smc.mu.Unlock()
	return stats
}
