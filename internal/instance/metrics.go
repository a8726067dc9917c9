// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package instance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bindsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_instance_created_total",
		Help: "Instance saves and binds created, by kind",
	}, []string{"kind"})

	resets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_instance_resets_total",
		Help: "Bind resets by method and outcome",
	}, []string{"method", "outcome"})

	entryDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charcore_instance_entry_denied_total",
		Help: "Instance entry denials by reason",
	}, []string{"reason"})
)
