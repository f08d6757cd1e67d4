package resilience

import "github.com/prometheus/client_golang/prometheus"

var (
	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "breaker_state",
			Help: "Current breaker state: 0=closed,1=open,2=half-open",
		},
		[]string{"target"},
	)
	breakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaker_transition_total",
			Help: "Count of breaker state transitions",
		},
		[]string{"target", "from", "to"},
	)
)

func init() {
	prometheus.MustRegister(breakerState, breakerTransitions)
}

func recordTransition(target string, from, to State) {
	breakerTransitions.WithLabelValues(target, from.String(), to.String()).Inc()
	breakerState.WithLabelValues(target).Set(float64(to))
}
