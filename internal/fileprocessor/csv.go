package fileprocessor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gnecli/internal/dataprocessing"
	apperrors "gnecli/internal/errors"
	"gnecli/internal/exporter"
	"gnecli/internal/files"
	"gnecli/internal/records"
)

type csvProcessor struct{}

func (csvProcessor) Extension() string { return ".csv" }

// Process copies the input to the output file with Gender and Accuracy
// appended to every record, then writes the text summary. Nothing is
// written when the columns cannot be resolved; a failed run removes its
// partial output.
func (csvProcessor) Process(ctx context.Context, p *dataprocessing.Pipeline, opts Options) (*Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger.With(slog.String("component", "csv_processor"))

	ctx, span := startSpan(ctx, "csv", opts)
	defer span.End()
	start := time.Now()

	if err := checkCSVPaths(opts); err != nil {
		return nil, fail(span, err, "invalid output path")
	}

	src, err := records.OpenCSV(opts.InputFile, records.CSVOptions{
		HasHeaders: opts.HasHeaders,
		Delimiter:  opts.Delimiter,
		Quote:      '"',
	})
	if err != nil {
		return nil, fail(span, err, "open input failed")
	}
	defer src.Close()

	run, err := prepare(p, src, opts)
	if err != nil {
		return nil, fail(span, err, "prepare failed")
	}

	out, err := exporter.CreateCSVAppender(opts.OutputFile, src.Delimiter())
	if err != nil {
		return nil, fail(span, apperrors.NewStorageError("failed to create output file", err).
			WithContext("path", opts.OutputFile), "create output failed")
	}
	abort := func(err error) (*Result, error) {
		out.Close()
		os.Remove(opts.OutputFile)
		return nil, fail(span, err, "processing failed")
	}

	if raw, ok := src.RawHeaderLine(); ok {
		if err := out.WriteHeader(raw); err != nil {
			return abort(apperrors.NewStorageError("failed to write output", err))
		}
	}

	for rec, err := range run.Records(ctx) {
		if err != nil {
			return abort(err)
		}
		if err := out.WriteRecord(src.RawLine(), rec); err != nil {
			return abort(apperrors.NewStorageError("failed to write output", err))
		}
	}
	if err := out.WriteTrailer(src.RawLine()); err != nil {
		return abort(apperrors.NewStorageError("failed to write output", err))
	}
	if err := out.Close(); err != nil {
		os.Remove(opts.OutputFile)
		return nil, fail(span, apperrors.NewStorageError("failed to close output file", err), "close output failed")
	}

	report := exporter.BuildReport(run.Summary().Snapshot(), opts.Now(),
		filepath.Base(opts.InputFile), columnsUsed(src, opts.Columns))
	if err := exporter.WriteTextFile(opts.SummaryFile, report); err != nil {
		return nil, fail(span, apperrors.NewStorageError("failed to write summary file", err).
			WithContext("path", opts.SummaryFile), "summary failed")
	}

	result := newResult(opts, run, out.Rows(), start)
	result.SummaryFile = opts.SummaryFile
	span.SetAttributes(attribute.Int("file.rows", result.Rows))

	logger.InfoContext(ctx, "File processed",
		slog.String("input", opts.InputFile),
		slog.String("output", opts.OutputFile),
		slog.String("summary", opts.SummaryFile),
		slog.Int("rows", result.Rows),
		slog.Int("mismatches", result.Mismatches),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// checkCSVPaths rejects output and summary paths that would overwrite the
// input, or each other, while the input is still being read.
func checkCSVPaths(opts Options) error {
	switch {
	case files.SamePath(opts.InputFile, opts.OutputFile):
		return apperrors.NewConfigError("output file must differ from the input file", nil).
			WithContext("path", opts.OutputFile)
	case files.SamePath(opts.InputFile, opts.SummaryFile):
		return apperrors.NewConfigError("summary file must differ from the input file", nil).
			WithContext("path", opts.SummaryFile)
	case files.SamePath(opts.OutputFile, opts.SummaryFile):
		return apperrors.NewConfigError("summary file must differ from the output file", nil).
			WithContext("path", opts.SummaryFile)
	}
	return nil
}
