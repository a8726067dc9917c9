// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charcore_character_loads_total",
		Help: "Characters loaded successfully",
	})

	loadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_character_load_failures_total",
		Help: "Character loads refused, by reason",
	}, []string{"reason"})

	repairCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_character_repairs_total",
		Help: "Rows skipped or corrected while loading, by kind",
	}, []string{"kind"})

	placements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_character_placements_total",
		Help: "Characters relocated on load, by fallback used",
	}, []string{"rung"})

	saveStatements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_character_save_statements_total",
		Help: "Statements produced by character saves, by scope",
	}, []string{"scope"})

	saveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "charcore_character_save_duration_seconds",
		Help:    "Time to build and commit a character save",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	deferredSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charcore_character_deferred_saves_total",
		Help: "Saves postponed because the character was between maps",
	})
)
