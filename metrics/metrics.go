package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "powerjoins"

// Observer counts the joins applied and skipped by the power join scopes.
// Set it as powerjoins.Config.Observer.
type Observer struct {
	applied     *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	scopeErrors *prometheus.CounterVec
}

// NewObserver registers the counters with reg, prometheus.DefaultRegisterer when nil
func NewObserver(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Observer{
		applied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_applied_total",
			Help:      "The total number of relationship joins added to queries.",
		}, []string{"relationship", "join_type"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_skipped_total",
			Help:      "The total number of relationship joins skipped because the query already had them.",
		}, []string{"relationship"}),
		scopeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scope_errors_total",
			Help:      "The total number of scope calls that failed.",
		}, []string{"scope"}),
	}
}

func (o *Observer) JoinApplied(kind, joinType string) {
	o.applied.WithLabelValues(kind, joinType).Inc()
}

func (o *Observer) JoinSkipped(kind string) {
	o.skipped.WithLabelValues(kind).Inc()
}

func (o *Observer) ScopeError(scope string) {
	o.scopeErrors.WithLabelValues(scope).Inc()
}
