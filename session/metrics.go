package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts the session lifecycle events of one Manager.
type Metrics struct {
	Refreshes       prometheus.Counter
	RefreshFailures prometheus.Counter
	Replays         prometheus.Counter
	Expirations     prometheus.Counter
}

// NewMetrics creates the counters and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "session",
			Name:      "refresh_total",
			Help:      "Refresh calls issued to the backend.",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "session",
			Name:      "refresh_failures_total",
			Help:      "Refresh calls that failed.",
		}),
		Replays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "session",
			Name:      "replays_total",
			Help:      "Requests replayed after a successful refresh.",
		}),
		Expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "session",
			Name:      "expired_total",
			Help:      "Sessions ended because they could not be refreshed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Refreshes, m.RefreshFailures, m.Replays, m.Expirations)
	}
	return m
}
