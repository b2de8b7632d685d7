// Package app wires the dictionary lookup service together and manages its
// lifecycle.
//
// NewApplication loads configuration and logging, then New builds, in
// order: OpenTelemetry providers, pipeline and runtime metrics, the
// dictionary and lookup services, the chi router and the HTTP server.
//
// Run serves until the context ends or SIGINT/SIGTERM arrives, then shuts
// the server down within server.shutdown_timeout and flushes telemetry.
// SIGHUP re-reads the dictionary file; a failed reload keeps serving the
// previous dictionary.
//
// A dictionary that cannot be loaded at startup is not fatal. The service
// starts, /health/ready answers 503 and lookups fail with
// DICTIONARY_UNAVAILABLE until a reload succeeds.
package app
