// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package metrics provides Prometheus metrics for production observability:
// query-cache efficiency, invalidation volume, vote throughput, price feed
// health, and HTTP endpoint latency. Exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query Result Cache Metrics
	QueryCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_hits_total",
			Help: "Total number of query result cache hits",
		},
		[]string{"kind"},
	)

	QueryCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_misses_total",
			Help: "Total number of query result cache misses",
		},
		[]string{"kind"},
	)

	CacheStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_store_errors_total",
			Help: "Total number of cache store errors swallowed by the fail-open policy",
		},
		[]string{"operation"},
	)

	// Invalidation Metrics
	InvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_invalidations_total",
			Help: "Total number of scope invalidations issued",
		},
		[]string{"scope"},
	)

	InvalidatedKeys = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_invalidated_keys_total",
			Help: "Total number of cache keys removed by invalidation",
		},
	)

	// Vote Ledger Metrics
	VotesAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "votes_accepted_total",
			Help: "Total number of votes accepted by the ledger",
		},
	)

	VotesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_rejected_total",
			Help: "Total number of votes rejected by the ledger",
		},
		[]string{"reason"}, // "already_voted", "not_found", "invalid"
	)

	// Trending Engine Metrics
	TrendingRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trending_rebuild_duration_seconds",
			Help:    "Duration of trending ranking rebuilds on cache miss",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Price Feed Metrics
	PriceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_fetches_total",
			Help: "Total number of outbound price fetches",
		},
		[]string{"chain", "outcome"}, // outcome: "ok", "error", "breaker_open"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Scheduler Metrics
	ScheduledJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_job_runs_total",
			Help: "Total number of scheduled job executions",
		},
		[]string{"job", "outcome"}, // outcome: "ok", "error"
	)
)
