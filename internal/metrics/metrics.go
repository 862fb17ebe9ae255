// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package metrics declares every Prometheus collector exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "familymap_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "familymap_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "familymap_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Authentication Metrics
	AuthLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_auth_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"}, // success, invalid, disabled, locked, error
	)

	AuthRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_auth_refreshes_total",
			Help: "Token refresh attempts by outcome",
		},
		[]string{"result"}, // success, blacklisted, invalid, expired, error
	)

	AuthLogouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_auth_logouts_total",
			Help: "Logout attempts by outcome",
		},
		[]string{"result"},
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_authz_decisions_total",
			Help: "Authorization decisions by role and outcome",
		},
		[]string{"role", "result"}, // allowed, denied
	)

	BlacklistSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "familymap_token_blacklist_size",
			Help: "Number of refresh tokens currently blacklisted",
		},
	)

	BlacklistRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "familymap_token_blacklist_rejections_total",
			Help: "Refresh attempts rejected because the token was blacklisted",
		},
	)

	BlacklistCleanups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "familymap_token_blacklist_cleaned_total",
			Help: "Expired blacklist entries removed by cleanup",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "familymap_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// External API Metrics
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_ai_requests_total",
			Help: "OpenAI requests by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	AIRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "familymap_ai_request_duration_seconds",
			Help:    "OpenAI request latency in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
	)

	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_geocode_requests_total",
			Help: "Mapbox geocoding requests by outcome",
		},
		[]string{"result"}, // found, not_found, error
	)

	GeocodeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "familymap_geocode_cache_hits_total",
			Help: "Geocoding lookups served from cache",
		},
	)

	GeocodeCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "familymap_geocode_cache_misses_total",
			Help: "Geocoding lookups that missed the cache",
		},
	)

	// Scraping Pipeline Metrics
	ImportRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_import_records_total",
			Help: "JSONL import outcomes",
		},
		[]string{"outcome"}, // post, place, skipped, duplicate
	)

	EnrichmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_enrichments_total",
			Help: "Scraped place enrichment outcomes",
		},
		[]string{"result"}, // created, existing, failed
	)

	EnrichQueueMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familymap_enrich_queue_messages_total",
			Help: "Enrichment queue messages by action",
		},
		[]string{"action"}, // published, acked, nacked, dropped
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "familymap_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAIRequest records an OpenAI call.
func RecordAIRequest(kind string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	AIRequests.WithLabelValues(kind, result).Inc()
	AIRequestDuration.Observe(duration.Seconds())
}

// RecordImport adds the counts of one import run.
func RecordImport(posts, places, skipped, duplicates int) {
	ImportRecords.WithLabelValues("post").Add(float64(posts))
	ImportRecords.WithLabelValues("place").Add(float64(places))
	ImportRecords.WithLabelValues("skipped").Add(float64(skipped))
	ImportRecords.WithLabelValues("duplicate").Add(float64(duplicates))
}
