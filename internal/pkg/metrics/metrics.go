// Package metrics defines and registers the custom Prometheus metrics for the
// lending ledger. It is the single source of truth for metric names, labels,
// and help strings.
//
// All metrics are registered with the default Prometheus registry at package
// initialisation. HTTP request metrics come from echoprometheus instead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

// ── Registry metrics ──────────────────────────────────────────────────────────

// CustomersCreatedTotal counts customers successfully registered.
var CustomersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "customers_created_total",
		Help:      "Total number of customers created.",
	},
)

// LoansCreatedTotal counts loans successfully recorded.
var LoansCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_created_total",
		Help:      "Total number of loans created.",
	},
)

// LoanStatusUpdatesTotal counts manual status changes.
// Labels:
//   - status: the requested status ("pending" or "completed")
//   - result: "ok" or "rejected"
var LoanStatusUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loan_status_updates_total",
		Help:      "Total number of manual loan status updates, by status and result.",
	},
	[]string{"status", "result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected authentication and authorization attempts.
// Label:
//   - reason: "invalid_token", "bad_credentials", "unknown_user", "not_owner"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected authentication or ownership checks.",
	},
	[]string{"reason"},
)

// ── Sweep metrics ─────────────────────────────────────────────────────────────

// SweepRunsTotal counts overdue sweep runs.
// Label:
//   - result: "ok", "skipped" (lock held elsewhere), or "error"
var SweepRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_runs_total",
		Help:      "Total number of overdue sweep runs, by result.",
	},
	[]string{"result"},
)

// SweepLoansMarkedTotal counts loans promoted to overDue by the sweeper.
var SweepLoansMarkedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_loans_marked_total",
		Help:      "Total number of loans promoted to overDue.",
	},
)

// SweepDuration measures how long one sweep takes against the store.
var SweepDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of a single overdue sweep run.",
		Buckets:   prometheus.DefBuckets,
	},
)
