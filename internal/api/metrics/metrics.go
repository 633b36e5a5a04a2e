// Package metrics defines the custom Prometheus metrics of the rental client.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics are registered with the default registry on package load through
// promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rentchain/rentclient/internal/core/domain"
)

const namespace = "rentclient"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts state changes of the session store.
// Labels:
//   - from, to: session states (unresolved, resolving, authenticated, unauthenticated)
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions.",
	},
	[]string{"from", "to"},
)

// SessionAuthenticated is 1 while a user is signed in.
var SessionAuthenticated = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_authenticated",
		Help:      "Whether the session is currently authenticated.",
	},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - guard: protected, owner or role
//   - outcome: render, pending or redirect
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"guard", "outcome"},
)

// ── Bootstrap metrics ─────────────────────────────────────────────────────────

// UserLoadsTotal counts per-user profile and wallet status loads.
// Label:
//   - result: "ok" or "error"
var UserLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_loads_total",
		Help:      "Total number of per-user profile and wallet status loads.",
	},
	[]string{"result"},
)

// WalletConnectionsTotal counts wallet connect and unlink attempts.
// Labels:
//   - action: connect or unlink
//   - result: ok, rejected, locked or error
var WalletConnectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallet_connections_total",
		Help:      "Total number of wallet connect and unlink attempts.",
	},
	[]string{"action", "result"},
)

// ObserveSession records a session transition.
func ObserveSession(tr domain.SessionTransition) {
	SessionTransitionsTotal.WithLabelValues(string(tr.Old.State), string(tr.New.State)).Inc()
	if tr.New.IsAuthenticated {
		SessionAuthenticated.Set(1)
	} else {
		SessionAuthenticated.Set(0)
	}
}

// ObserveLoad records the outcome of a per-user load.
func ObserveLoad(_ string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	UserLoadsTotal.WithLabelValues(result).Inc()
}
