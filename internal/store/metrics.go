// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	statementsCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_store_statements_committed_total",
		Help: "Statements committed by scope and statement name",
	}, []string{"scope", "statement"})

	commitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "charcore_store_commit_duration_seconds",
		Help:    "Transaction commit latency including retries",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})

	commitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_store_commit_failures_total",
		Help: "Transactions that failed after all retries",
	}, []string{"scope"})

	commitRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_store_commit_retries_total",
		Help: "Transaction replays after transient failures",
	}, []string{"scope"})
)
