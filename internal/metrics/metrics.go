package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gym_cutoff"

// Cut-off rule metrics
var (
	CutoffEditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edits_total",
			Help:      "Cut-off rule edits by rule kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ResolverLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_lookups_total",
			Help:      "Split resolutions by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)
)

// Audit and integrity metrics
var (
	AuditWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Committed edits whose audit entry could not be written",
		},
	)

	IntegrityViolations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "integrity_violations",
			Help:      "Stored cut-off rules breaking an invariant, by violation kind",
		},
		[]string{"kind"},
	)

	IntegrityRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_runs_total",
			Help:      "Integrity check runs by outcome",
		},
		[]string{"outcome"},
	)
)
