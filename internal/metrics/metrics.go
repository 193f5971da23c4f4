package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "authgate"

// Outcome labels.
const (
	ResultOK            = "ok"
	ResultCsrfMismatch  = "csrf_mismatch"
	ResultUpstreamError = "upstream_error"
	ResultStoreError    = "store_error"
	ResultUnauthorized  = "unauthorized"
	ResultConfigError   = "config_error"
)

// Metrics counts authentication outcomes.
type Metrics struct {
	LoginsStarted prometheus.Counter
	Callbacks     *prometheus.CounterVec
	Logouts       *prometheus.CounterVec
	WhoAmI        *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_started_total",
			Help:      "Number of redirects to the identity provider.",
		}),
		Callbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_total",
			Help:      "Number of provider callbacks by result.",
		}, []string{"result"}),
		Logouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Number of logout requests by result.",
		}, []string{"result"}),
		WhoAmI: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whoami_total",
			Help:      "Number of identity checks by result.",
		}, []string{"result"}),
	}
}
