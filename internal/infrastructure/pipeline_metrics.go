package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gnecli/pkg/contracts/domain"
)

// PipelineMetrics counts enrichment activity. It satisfies
// dataprocessing.Recorder. A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	rowsProcessed metric.Int64Counter
	mismatches    metric.Int64Counter
	filesTotal    metric.Int64Counter
	fileDuration  metric.Float64Histogram
	lookups       metric.Int64Counter
}

// NewPipelineMetrics creates the enrichment instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsProcessed, err := meter.Int64Counter(
		"gne_rows_processed",
		metric.WithDescription("Rows enriched, by estimated gender"),
	)
	if err != nil {
		return nil, err
	}

	mismatches, err := meter.Int64Counter(
		"gne_gender_mismatches",
		metric.WithDescription("Person ids seen with conflicting genders"),
	)
	if err != nil {
		return nil, err
	}

	filesTotal, err := meter.Int64Counter(
		"gne_files_processed",
		metric.WithDescription("Input files processed, by extension and status"),
	)
	if err != nil {
		return nil, err
	}

	fileDuration, err := meter.Float64Histogram(
		"gne_file_duration",
		metric.WithDescription("Time spent processing one input file"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	lookups, err := meter.Int64Counter(
		"gne_lookups",
		metric.WithDescription("Dictionary lookups served over HTTP"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		rowsProcessed: rowsProcessed,
		mismatches:    mismatches,
		filesTotal:    filesTotal,
		fileDuration:  fileDuration,
		lookups:       lookups,
	}, nil
}

// RecordRow counts one enriched row.
func (m *PipelineMetrics) RecordRow(ctx context.Context, rec domain.DataRecord) {
	if m == nil {
		return
	}
	m.rowsProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("gender", rec.Gender.String())))
}

// RecordMismatch counts one gender conflict.
func (m *PipelineMetrics) RecordMismatch(ctx context.Context, _ domain.Mismatch) {
	if m == nil {
		return
	}
	m.mismatches.Add(ctx, 1)
}

// RecordFile records the outcome of processing one file.
func (m *PipelineMetrics) RecordFile(ctx context.Context, extension string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("extension", extension),
		attribute.String("status", status),
	)
	m.filesTotal.Add(ctx, 1, attrs)
	m.fileDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordLookup counts one dictionary lookup.
func (m *PipelineMetrics) RecordLookup(ctx context.Context, found bool) {
	if m == nil {
		return
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", found)))
}
