package fileprocessor

import (
	"context"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gnecli/internal/dataprocessing"
	apperrors "gnecli/internal/errors"
	"gnecli/internal/exporter"
	"gnecli/internal/files"
	"gnecli/internal/records"
)

type xlsxProcessor struct{}

func (xlsxProcessor) Extension() string { return ".xlsx" }

// Process copies the workbook to the output path (or edits it in place
// when both paths name the same file), appends Gender and Accuracy
// columns to the selected worksheet and adds a Results sheet.
func (xlsxProcessor) Process(ctx context.Context, p *dataprocessing.Pipeline, opts Options) (*Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger.With(slog.String("component", "xlsx_processor"))

	ctx, span := startSpan(ctx, "xlsx", opts)
	defer span.End()
	start := time.Now()

	inPlace := files.SamePath(opts.InputFile, opts.OutputFile)
	if !inPlace {
		if err := files.CopyFile(opts.InputFile, opts.OutputFile); err != nil {
			return nil, fail(span, apperrors.NewStorageError("failed to copy workbook", err).
				WithContext("path", opts.OutputFile), "copy failed")
		}
	}
	discard := func() {
		if !inPlace {
			os.Remove(opts.OutputFile)
		}
	}

	src, err := records.OpenXLSX(opts.OutputFile, records.XLSXOptions{
		HasHeaderRow: opts.HasHeaders,
		RowsToSkip:   opts.RowsToSkip,
		RowsToTrim:   opts.RowsToTrim,
		Worksheet:    opts.Worksheet,
	})
	if err != nil {
		discard()
		return nil, fail(span, err, "open workbook failed")
	}
	abort := func(err error) (*Result, error) {
		src.Close()
		discard()
		return nil, fail(span, err, "processing failed")
	}

	run, err := prepare(p, src, opts)
	if err != nil {
		return abort(err)
	}

	f, sheet := src.File(), src.Sheet()
	firstCol, lastCol := src.Columns()
	estimates := exporter.NewEstimateColumns(f, sheet, lastCol)

	headerRow := src.HeaderRow()
	if src.HasHeaders() && headerRow >= 1 {
		if err := estimates.WriteHeader(headerRow); err != nil {
			return abort(apperrors.NewStorageError("failed to write header cells", err))
		}
	}

	rows := 0
	for rec, err := range run.Records(ctx) {
		if err != nil {
			return abort(err)
		}
		if err := estimates.WriteRecord(src.RowIndex(), rec); err != nil {
			return abort(apperrors.NewStorageError("failed to write estimate cells", err).
				WithContext("row", src.RowIndex()))
		}
		rows++
	}

	if err := estimates.Format(max(headerRow+1, 1), src.LastRow()); err != nil {
		return abort(apperrors.NewStorageError("failed to format estimate columns", err))
	}
	if src.HasHeaders() && headerRow >= 1 {
		// A header that is part of a named range or table rejects a filter.
		if err := estimates.AutoFilter(headerRow, firstCol); err != nil {
			logger.WarnContext(ctx, "Header autofilter not applied",
				slog.String("sheet", sheet),
				slog.String("error", err.Error()))
		}
	}

	report := exporter.BuildReport(run.Summary().Snapshot(), opts.Now(), sheet, columnsUsed(src, opts.Columns))
	resultSheet, err := exporter.WriteResultsSheet(f, report)
	if err != nil {
		return abort(apperrors.NewStorageError("failed to write results sheet", err))
	}

	if err := f.Save(); err != nil {
		return abort(apperrors.NewStorageError("failed to save workbook", err).
			WithContext("path", opts.OutputFile))
	}
	if err := src.Close(); err != nil {
		logger.WarnContext(ctx, "Failed to close workbook", slog.String("error", err.Error()))
	}

	result := newResult(opts, run, rows, start)
	result.ResultSheet = resultSheet
	span.SetAttributes(attribute.Int("file.rows", rows), attribute.String("file.sheet", sheet))

	logger.InfoContext(ctx, "File processed",
		slog.String("input", opts.InputFile),
		slog.String("output", opts.OutputFile),
		slog.String("sheet", sheet),
		slog.Int("rows", rows),
		slog.Int("mismatches", result.Mismatches),
		slog.Duration("duration", result.Duration))
	return result, nil
}
