// Package http exposes the dictionary over a small JSON API built on chi.
//
// Handlers stay thin: they parse and validate requests, call the services
// package and render the result with go-chi/render. Every error leaves as
// an RFC 7807 problem document through errors.ErrorHandler.
//
// Routes:
//
//	GET  /health              liveness summary
//	GET  /health/ready        503 until a dictionary is loaded
//	GET  /health/live         runtime statistics
//	GET  /version             build information
//	GET  /metrics             Prometheus exposition, when metrics are enabled
//	GET  /api/lookup          ?name=&country= single lookup
//	POST /api/lookup          {"items":[{"first_name":..,"country_code":..}]}
//	GET  /api/dictionary      size and fingerprint of the served dictionary
package http
