package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apierrors "gnecli/internal/errors"
	"gnecli/internal/middleware"
)

// RouterConfig collects the pieces NewRouter mounts. Metrics, OTel and
// RateLimiter are optional.
type RouterConfig struct {
	Lookup       *LookupHandler
	Health       *HealthHandler
	Metrics      http.Handler
	OTel         *middleware.OTelMiddleware
	RateLimiter  *middleware.RateLimiter
	ErrorHandler *apierrors.ErrorHandler
	Logger       *slog.Logger
}

// NewRouter builds the service's route tree:
//
//	GET  /health, /health/ready, /health/live, /version
//	GET  /metrics
//	GET  /api/lookup?name=&country=
//	POST /api/lookup
//	GET  /api/dictionary
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.OTel != nil {
		r.Use(cfg.OTel.Handler)
	}
	r.Use(middleware.StructuredLogger(cfg.Logger))
	r.Use(cfg.ErrorHandler.Middleware)

	r.NotFound(cfg.ErrorHandler.NotFound)
	r.MethodNotAllowed(cfg.ErrorHandler.MethodNotAllowed)

	r.Get("/health", cfg.Health.HealthCheck)
	r.Get("/health/ready", cfg.Health.ReadinessCheck)
	r.Get("/health/live", cfg.Health.LivenessCheck)
	r.Get("/version", cfg.Health.Version)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}
		r.Mount("/", cfg.Lookup.Routes())
	})
	return r
}
