// Command gne enriches CSV and XLSX files with gender estimates from the
// World Gender-Name Dictionary and writes a summary of the results.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"gnecli/internal/config"
	"gnecli/internal/dataprocessing"
	"gnecli/internal/dictionary"
	"gnecli/internal/fileprocessor"
	"gnecli/internal/infrastructure"
	"gnecli/internal/records"
	"gnecli/pkg/contracts"
	"gnecli/pkg/contracts/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// console serializes writes from concurrently processed files.
type console struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

func (c *console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.stdout, format, args...)
}

func (c *console) errorf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.stderr, format, args...)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetVersionString())
		return exitOK
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return exitError
	}

	logCfg := cfg.Logging
	logCfg.FilePath = cfg.LogFilePath()
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()
	if paths, err := config.GetPaths(); err == nil {
		paths.LogPathResolution(logger)
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize telemetry: %v\n", err)
		return exitError
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create metrics: %v\n", err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Processing.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Processing.Timeout)
		defer cancel()
	}
	ctx = infrastructure.ContextWithTraceID(ctx)

	jobs, err := opts.jobs(cfg.Processing.HasHeaders)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	dictPath := cfg.DictionaryPath()
	if opts.dataFile != "" {
		dictPath = opts.dataFile
	}
	dict, err := dictionary.LoadFile(ctx, dictPath, dictionary.LoadOptions{
		Delimiter: cfg.DelimiterRune(),
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load dictionary %q: %v\n", dictPath, err)
		logger.ErrorContext(ctx, "Dictionary load failed",
			slog.String("path", dictPath),
			slog.String("error", err.Error()))
		return exitError
	}

	logger.InfoContext(ctx, "Run started",
		slog.Int("files", len(jobs)),
		slog.String("dictionary", dict.Info.Path),
		slog.String("fingerprint", dict.Info.Fingerprint),
		slog.String("config", cfg.Source))

	pipeline := dataprocessing.NewPipeline(dict,
		dataprocessing.WithLogger(logger),
		dataprocessing.WithRecorder(metrics))
	out := &console{stdout: stdout, stderr: stderr}

	g := new(errgroup.Group)
	g.SetLimit(cfg.Processing.MaxConcurrentFiles)
	for _, job := range jobs {
		g.Go(func() error {
			return processFile(ctx, pipeline, job, cfg.Processing.ProgressEvery, out, metrics, logger)
		})
	}
	runErr := g.Wait()

	if err := providers.WriteMetricsTextfile(cfg.MetricsTextfilePath()); err != nil {
		logger.Warn("Failed to write metrics textfile", slog.String("error", err.Error()))
	}

	if runErr != nil {
		logger.ErrorContext(ctx, "Run failed", slog.String("error", runErr.Error()))
		return exitError
	}
	logger.InfoContext(ctx, "Run completed",
		slog.Int("files", len(jobs)),
		slog.Int64("found", pipeline.Enricher().Hits()),
		slog.Int64("not_found", pipeline.Enricher().Misses()))
	return exitOK
}

// processFile runs one job, printing progress and the output locations.
// Errors are reported here and returned so the run exits non-zero; the
// other files keep processing.
func processFile(ctx context.Context, p *dataprocessing.Pipeline, job fileprocessor.Options, progressEvery int,
	out *console, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) error {
	ctx = infrastructure.ContextWithTraceID(ctx)
	logger = logger.With(slog.String("file", filepath.Base(job.InputFile)))

	progress := rate.Sometimes{Every: progressEvery}
	var dotted bool
	job.OnRowRead = func(records.Source) {
		progress.Do(func() {
			dotted = true
			out.printf(".")
		})
	}
	job.OnMismatch = func(m domain.Mismatch) {
		out.errorf("\n%s\n", m)
		logger.WarnContext(ctx, "Gender mismatch",
			slog.String("person_id", m.PersonID),
			slog.String("old", m.Old.String()),
			slog.String("new", m.New.String()))
	}
	job.Logger = logger

	out.printf("Processing \"%s\"\n", job.InputFile)
	start := time.Now()
	result, err := fileprocessor.Process(ctx, p, job)
	metrics.RecordFile(ctx, filepath.Ext(job.InputFile), time.Since(start), err)
	if dotted {
		out.printf("\n")
	}
	if err != nil {
		out.errorf("Error processing %q: %v\n", job.InputFile, err)
		logger.ErrorContext(ctx, "File failed", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", job.InputFile, err)
	}

	out.printf("Results written to \"%s\"\n", result.OutputFile)
	if result.SummaryFile != "" {
		out.printf("Summary written to \"%s\"\n", result.SummaryFile)
	}
	return nil
}
