// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_session_commits_total",
		Help: "Asynchronous save commits, by result",
	}, []string{"result"})

	commitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "charcore_session_commit_duration_seconds",
		Help:    "Time from handing a save to the store until its completion is posted back",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)
