package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	accessChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_checks_total",
			Help: "Access checks by resulting status (active/no_access/suspended/blocked/admin).",
		},
		[]string{"status"},
	)

	activationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code_activations_total",
			Help: "Activation code redemptions by outcome (ok/not_found/deactivated/claimed/expired/error).",
		},
		[]string{"outcome"},
	)

	codesExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "codes_expired_total",
			Help: "Unclaimed codes deactivated by the expiry sweep.",
		},
	)
)

func init() { register(accessChecksTotal, activationsTotal, codesExpiredTotal) }

func IncAccessCheck(status string) {
	accessChecksTotal.WithLabelValues(norm(status)).Inc()
}

func IncActivation(outcome string) {
	activationsTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddCodesExpired(n int) {
	codesExpiredTotal.Add(float64(n))
}
