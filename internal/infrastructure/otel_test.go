package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnecli/internal/config"
	"gnecli/pkg/contracts/domain"
)

func telemetryConfig(metrics, tracing bool) config.TelemetryConfig {
	cfg := config.Default().Telemetry
	cfg.EnableMetrics = metrics
	cfg.EnableTracing = tracing
	if tracing {
		cfg.TraceExporter = "stdout"
	}
	return cfg
}

func initOTel(t *testing.T, cfg config.TelemetryConfig, opts ...OTelOption) *OTelProviders {
	t.Helper()
	providers, err := InitializeOTel(cfg, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = providers.Shutdown(context.Background())
	})
	return providers
}

// family finds a gathered metric family by name prefix, since the
// exporter appends unit and type suffixes.
func family(t *testing.T, providers *OTelProviders, prefix string) *dto.MetricFamily {
	t.Helper()
	families, err := providers.Registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), prefix) {
			return f
		}
	}
	t.Fatalf("metric family %s not found", prefix)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestOTelInitialization(t *testing.T) {
	providers := initOTel(t, telemetryConfig(true, false))

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Registry)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
}

func TestOTelDisabled(t *testing.T) {
	providers := initOTel(t, telemetryConfig(false, false))

	assert.Nil(t, providers.Registry)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NoError(t, providers.WriteMetricsTextfile(filepath.Join(t.TempDir(), "gne.prom")))

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordRow(context.Background(), domain.NotFound)
}

func TestUnsupportedTraceExporter(t *testing.T) {
	cfg := telemetryConfig(false, true)
	cfg.TraceExporter = "jaeger"

	_, err := InitializeOTel(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter: jaeger")
}

func TestPipelineMetrics(t *testing.T) {
	providers := initOTel(t, telemetryConfig(true, false))
	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	man := domain.DataRecord{FirstName: "john", CountryCode: "us", Gender: domain.Man, Accuracy: decimal.NewFromInt(1)}
	metrics.RecordRow(ctx, man)
	metrics.RecordRow(ctx, man)
	metrics.RecordRow(ctx, domain.NotFound)
	metrics.RecordMismatch(ctx, domain.Mismatch{PersonID: "p1", Old: man, New: man.WithGender(domain.Woman)})
	metrics.RecordFile(ctx, ".csv", 250*time.Millisecond, nil)
	metrics.RecordFile(ctx, ".xlsx", time.Second, errors.New("boom"))
	metrics.RecordLookup(ctx, true)

	rows := family(t, providers, "gne_rows_processed")
	byGender := map[string]float64{}
	for _, m := range rows.GetMetric() {
		byGender[labelValue(m, "gender")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"M": 2, "-": 1}, byGender)

	mismatches := family(t, providers, "gne_gender_mismatches")
	require.Len(t, mismatches.GetMetric(), 1)
	assert.Equal(t, float64(1), mismatches.GetMetric()[0].GetCounter().GetValue())

	files := family(t, providers, "gne_files_processed")
	statuses := map[string]string{}
	for _, m := range files.GetMetric() {
		statuses[labelValue(m, "extension")] = labelValue(m, "status")
	}
	assert.Equal(t, map[string]string{".csv": "success", ".xlsx": "failure"}, statuses)

	duration := family(t, providers, "gne_file_duration")
	assert.Equal(t, dto.MetricType_HISTOGRAM, duration.GetType())

	lookups := family(t, providers, "gne_lookups")
	require.Len(t, lookups.GetMetric(), 1)
	assert.Equal(t, "true", labelValue(lookups.GetMetric()[0], "found"))
}

func TestNilPipelineMetrics(t *testing.T) {
	var metrics *PipelineMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		metrics.RecordRow(ctx, domain.NotFound)
		metrics.RecordMismatch(ctx, domain.Mismatch{})
		metrics.RecordFile(ctx, ".csv", time.Second, nil)
		metrics.RecordLookup(ctx, false)
	})
}

func TestPrometheusEndpoint(t *testing.T) {
	providers := initOTel(t, telemetryConfig(true, false))
	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordLookup(context.Background(), false)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gne_lookups")
	assert.Contains(t, string(body), `found="false"`)
}

func TestWriteMetricsTextfile(t *testing.T) {
	providers := initOTel(t, telemetryConfig(true, false))
	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordFile(context.Background(), ".csv", time.Second, nil)

	path := filepath.Join(t.TempDir(), "gne.prom")
	require.NoError(t, providers.WriteMetricsTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "gne_files_processed_total{")
	assert.Contains(t, string(content), "target_info{")
	assert.Contains(t, string(content), `service_name="`)
	assert.NotContains(t, string(content), `{"`, "metric names must not need quoting")

	assert.NoError(t, providers.WriteMetricsTextfile(""))
}

func TestStdoutTracing(t *testing.T) {
	var spans bytes.Buffer
	providers := initOTel(t, telemetryConfig(false, true), WithTraceWriter(&spans))
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "gne.test")
	assert.NotEmpty(t, SpanIDFromContext(ctx))
	RecordError(ctx, errors.New("row failed"))
	span.End()

	assert.Contains(t, spans.String(), "gne.test")
	assert.Contains(t, spans.String(), "row failed")
	assert.Empty(t, SpanIDFromContext(context.Background()))
}

func TestSpanIDInLogs(t *testing.T) {
	var spans, logs bytes.Buffer
	providers := initOTel(t, telemetryConfig(false, true), WithTraceWriter(&spans))

	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &logs)
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "gne.logged")
	logger.InfoContext(ctx, "inside span")
	span.End()

	entries := decodeLines(t, logs.Bytes())
	require.Len(t, entries, 1)
	assert.Equal(t, span.SpanContext().SpanID().String(), entries[0]["span_id"])
}

func TestSystemMetricsCollector(t *testing.T) {
	providers := initOTel(t, telemetryConfig(true, false))
	collector, err := NewSystemMetricsCollector(providers.Meter, time.Hour)
	require.NoError(t, err)

	stats := collector.Current(context.Background())
	assert.Positive(t, stats.GoRoutines)
	assert.Positive(t, stats.HeapAlloc)
	assert.Equal(t, stats, collector.Latest())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		collector.Start(ctx)
		close(done)
	}()
	collector.Stop()
	collector.Stop()
	cancel()
	<-done

	family(t, providers, "system_goroutines")
}
