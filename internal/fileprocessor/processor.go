package fileprocessor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gnecli/internal/dataprocessing"
	apperrors "gnecli/internal/errors"
	"gnecli/internal/exporter"
	"gnecli/internal/records"
	"gnecli/internal/validation"
	"gnecli/pkg/contracts/domain"
)

var tracer = otel.Tracer("gnecli/fileprocessor")

// Result describes a finished file run.
type Result struct {
	InputFile   string                 `json:"input_file"`
	OutputFile  string                 `json:"output_file"`
	SummaryFile string                 `json:"summary_file,omitempty"`
	ResultSheet string                 `json:"result_sheet,omitempty"`
	Rows        int                    `json:"rows"`
	Mismatches  int                    `json:"mismatches"`
	Summary     domain.SummarySnapshot `json:"summary"`
	Duration    time.Duration          `json:"duration"`
}

// FileProcessor enriches one input file through a pipeline and writes the
// output file and summary.
type FileProcessor interface {
	Extension() string
	Process(ctx context.Context, p *dataprocessing.Pipeline, opts Options) (*Result, error)
}

// New returns the processor for a file extension.
func New(ext string) (FileProcessor, error) {
	switch strings.ToLower(ext) {
	case validation.ExtCSV:
		return csvProcessor{}, nil
	case validation.ExtXLSX:
		return xlsxProcessor{}, nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("cannot process files with extension: '%s'", ext), nil)
	}
}

// ForFile returns the processor for path's extension.
func ForFile(path string) (FileProcessor, error) {
	return New(filepath.Ext(path))
}

// Process picks the processor for opts.InputFile and runs it.
func Process(ctx context.Context, p *dataprocessing.Pipeline, opts Options) (*Result, error) {
	fp, err := ForFile(opts.InputFile)
	if err != nil {
		return nil, err
	}
	return fp.Process(ctx, p, opts)
}

func configError(err error) error {
	lines := validation.Messages(err)
	return apperrors.NewConfigError("invalid processing options", err).
		WithContext("errors", strings.Join(lines, "; "))
}

// prepare resolves the columns and registers the option callbacks.
func prepare(p *dataprocessing.Pipeline, src records.Source, opts Options) (*dataprocessing.Run, error) {
	run, err := p.Prepare(src, opts.Columns)
	if err != nil {
		return nil, err
	}
	src.OnRowRead(opts.OnRowRead)
	if opts.OnMismatch != nil {
		run.Summary().OnMismatch(opts.OnMismatch)
	}
	return run, nil
}

// columnsUsed describes the selected columns the way the reports print them.
func columnsUsed(src records.Source, cols dataprocessing.Columns) string {
	return exporter.ColumnsUsed(
		cols.FirstName.Describe(src),
		cols.CountryCode.Describe(src),
		cols.DisclosureID.Describe(src),
		cols.PersonID.Describe(src),
	)
}

func startSpan(ctx context.Context, kind string, opts Options) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "fileprocessor."+kind)
	span.SetAttributes(
		attribute.String("file.input", opts.InputFile),
		attribute.String("file.output", opts.OutputFile),
		attribute.Bool("file.has_headers", opts.HasHeaders),
	)
	return ctx, span
}

func fail(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}

func newResult(opts Options, run *dataprocessing.Run, rows int, start time.Time) *Result {
	return &Result{
		InputFile:  opts.InputFile,
		OutputFile: opts.OutputFile,
		Rows:       rows,
		Mismatches: run.Summary().Mismatches(),
		Summary:    run.Summary().Snapshot(),
		Duration:   time.Since(start),
	}
}
