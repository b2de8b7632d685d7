// Package services holds the lookup service's business logic between the
// HTTP handlers and the dictionary.
//
// LookupService answers name/country queries against the loaded dictionary
// and can swap in a freshly loaded dictionary without blocking readers.
// HealthService reports liveness, readiness (a dictionary is loaded) and
// runtime statistics.
package services
