// Package metrics defines and registers the Prometheus metrics exposed by
// the client API. It is the single source of truth for metric names,
// labels, and help strings; all metrics register with the default registry
// at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clientapi"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Labels:
//   - role: the requested role (e.g. "CLIENT", "ADMIN")
//   - result: "success", "conflict" or "failure"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// AuthRejectionsTotal counts requests rejected by the authorization gate.
// Label:
//   - reason: "missing_token", "malformed", "expired", "signature",
//     "inactive_identity", "store_unavailable" or "forbidden"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the authorization gate, by reason.",
	},
	[]string{"reason"},
)

// EmailChecksTotal counts availability lookups on the open check-email
// endpoint.
// Label:
//   - result: "available" or "taken"
var EmailChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_checks_total",
		Help:      "Total number of email availability checks, by result.",
	},
	[]string{"result"},
)
