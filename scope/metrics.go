package scope

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts engine activity. A nil *Metrics records nothing.
type Metrics struct {
	Queries      *prometheus.CounterVec
	ScopeLookups *prometheus.CounterVec
	OracleCalls  prometheus.Counter
	Declarations prometheus.Counter
}

// NewMetrics creates the engine counters and registers them with reg.
// A nil reg leaves the counters unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "typescope",
			Subsystem: "scope",
			Name:      "queries_total",
			Help:      "Visibility queries answered, by resulting state.",
		}, []string{"state"}),
		ScopeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "typescope",
			Subsystem: "scope",
			Name:      "visible_types_lookups_total",
			Help:      "Visible-type cache lookups, by result.",
		}, []string{"result"}),
		OracleCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typescope",
			Subsystem: "scope",
			Name:      "oracle_calls_total",
			Help:      "Calls made to the type oracle.",
		}),
		Declarations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typescope",
			Subsystem: "scope",
			Name:      "generated_types_total",
			Help:      "Generated types declared.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Queries, m.ScopeLookups, m.OracleCalls, m.Declarations} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register scope metrics")
		}
	}
	return m, nil
}

func (m *Metrics) query(s State) {
	if m != nil {
		m.Queries.WithLabelValues(s.String()).Inc()
	}
}

func (m *Metrics) scopeLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ScopeLookups.WithLabelValues("hit").Inc()
	} else {
		m.ScopeLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) oracleCall() {
	if m != nil {
		m.OracleCalls.Inc()
	}
}

func (m *Metrics) declaration() {
	if m != nil {
		m.Declarations.Inc()
	}
}
