// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics declares the Prometheus instruments exposed in serve mode.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts completed pipeline runs by outcome
	// ("ok", "empty", "client_error", "config_error").
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evidence_searches_total",
		Help: "Completed evidence searches by outcome.",
	}, []string{"status"})

	// ProviderFailures counts provider calls absorbed as empty results.
	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evidence_provider_failures_total",
		Help: "Search provider calls that failed and were skipped.",
	}, []string{"provider"})

	// FetchAttempts counts content-fetch strategy runs by outcome.
	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evidence_fetch_attempts_total",
		Help: "Content fetch attempts by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	// SearchDuration observes end-to-end pipeline latency.
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evidence_search_duration_seconds",
		Help:    "End-to-end search pipeline duration.",
		Buckets: prometheus.DefBuckets,
	})
)
