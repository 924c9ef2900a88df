/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pass-level metrics
	passDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hostplan_pass_duration_seconds",
			Help:    "Time taken by a complete provisioning pass",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	passTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostplan_pass_total",
			Help: "Total number of provisioning pass attempts",
		},
		[]string{"status"}, // success or error
	)

	phaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hostplan_phase_duration_seconds",
			Help:    "Time taken by individual pass phases",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"phase"}, // collect, resolve, validate, plan, execute
	)

	resolutionConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostplan_resolution_conflicts_total",
			Help: "Total number of passes aborted by a contribution conflict",
		},
	)

	validationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostplan_validation_failures_total",
			Help: "Total number of passes aborted by assertion failures",
		},
	)

	planActionCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hostplan_plan_actions",
			Help: "Number of actions in the last built plan",
		},
	)

	actionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostplan_actions_total",
			Help: "Total number of executed plan actions",
		},
		[]string{"status"}, // completed, unchanged, failed, skipped
	)
)
