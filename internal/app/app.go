package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gnecli/internal/config"
	"gnecli/internal/dictionary"
	apierrors "gnecli/internal/errors"
	"gnecli/internal/infrastructure"
	customMiddleware "gnecli/internal/middleware"
	"gnecli/internal/services"
	handlers "gnecli/internal/transport/http"
	"gnecli/pkg/contracts"
)

// systemMetricsInterval is how often runtime statistics are sampled.
const systemMetricsInterval = 15 * time.Second

// Application represents the lookup service container
type Application struct {
	Config        *config.Config
	Router        http.Handler
	Server        *http.Server
	Lookup        *services.LookupService
	Health        *services.HealthService
	Collector     *infrastructure.SystemMetricsCollector
	Metrics       *infrastructure.PipelineMetrics
	OTelProviders *infrastructure.OTelProviders
	Logger        *slog.Logger

	serveErr chan error

	mu       sync.Mutex
	listener net.Listener
}

// NewApplication loads the configuration, initializes logging and builds
// the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := cfg.Logging
	logCfg.FilePath = cfg.LogFilePath()
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New wires the application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if paths, err := config.GetPaths(); err == nil {
		paths.LogPathResolution(logger)
	}
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("config", cfg.Source))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		serveErr:      make(chan error, 1),
	}

	if err := app.initializeServices(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	app.createServer()
	return app, nil
}

// initializeServices loads the dictionary and builds the services. A
// dictionary that fails to load leaves the service running but not ready;
// a reload can recover it.
func (a *Application) initializeServices(ctx context.Context) error {
	metrics, err := infrastructure.NewPipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	a.Metrics = metrics

	collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, systemMetricsInterval)
	if err != nil {
		return err
	}
	a.Collector = collector

	path := a.Config.DictionaryPath()
	loadOpts := dictionary.LoadOptions{Delimiter: a.Config.DelimiterRune(), Logger: a.Logger}
	dict, err := dictionary.LoadFile(ctx, path, loadOpts)
	if err != nil {
		a.Logger.ErrorContext(ctx, "Dictionary not loaded, service is not ready",
			slog.String("path", path),
			slog.String("error", err.Error()))
		dict = nil
	}

	a.Lookup = services.NewLookupService(dict, path, loadOpts, metrics, a.Logger)
	a.Health = services.NewHealthService(a.Lookup, collector, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	var rateLimiter *customMiddleware.RateLimiter
	if a.Config.Server.RateLimit > 0 {
		rateLimiter = customMiddleware.NewRateLimiter(a.Config.Server.RateLimit, a.Config.Server.RateBurst, a.Logger)
	}

	a.Router = handlers.NewRouter(handlers.RouterConfig{
		Lookup:       handlers.NewLookupHandler(a.Lookup, a.Config.Server.MaxBatchItems, a.Logger, errorHandler),
		Health:       handlers.NewHealthHandler(a.Health, a.Logger),
		Metrics:      a.OTelProviders.PrometheusHTTP,
		OTel:         otelMiddleware,
		RateLimiter:  rateLimiter,
		ErrorHandler: errorHandler,
		Logger:       a.Logger,
	})
	return nil
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Addr returns the address the server listens on once started.
func (a *Application) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the listener and serves in the background. A serve failure
// cancels ctx through cancel and is returned by Run.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	go a.Collector.Start(ctx)

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.serveErr <- err
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", a.Addr()),
		slog.Bool("ready", a.Lookup.Ready()),
		slog.Bool("metrics", a.OTelProviders.Registry != nil),
		slog.Float64("rate_limit", a.Config.Server.RateLimit))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	a.Collector.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down.
// SIGHUP reloads the dictionary.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	for {
		select {
		case <-hup:
			a.Logger.InfoContext(ctx, "Received reload signal")
			a.Lookup.Reload(ctx)
		case <-ctx.Done():
			a.Logger.InfoContext(ctx, "Received shutdown signal")
			stopErr := a.Stop(context.Background())
			select {
			case err := <-a.serveErr:
				return errors.Join(err, stopErr)
			default:
				return stopErr
			}
		}
	}
}
