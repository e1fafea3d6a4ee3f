// Package metrics holds the prometheus collectors of the service.
// They are registered on the default registry and exposed by the
// /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LockActions counts take/release requests by action and outcome
	// (ok, denied, not_found, invalid, error).
	LockActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "detlockd",
		Name:      "lock_actions_total",
		Help:      "Lock take and release requests by action and outcome.",
	}, []string{"action", "outcome"})

	// LocksTaken tracks how many detector locks are currently held.
	LocksTaken = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "detlockd",
		Name:      "locks_taken",
		Help:      "Number of detector locks currently held.",
	})

	// GateDenials counts mutating requests refused for missing lock
	// ownership.
	GateDenials = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "detlockd",
		Name:      "gate_denials_total",
		Help:      "Mutating requests refused for missing lock ownership.",
	})
)
