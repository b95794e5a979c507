package notify

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/quadstore/internal/rdf"
)

// Metrics counts store notifications by kind.
type Metrics struct {
	events *prometheus.CounterVec
}

// NewMetrics registers the event counter with reg.
//
// Metric: <namespace>_events_total{kind="added"|"deleted"|"error"}
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Quad store notifications by kind.",
	}, []string{"kind"})
	if err := reg.Register(events); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	// Pre-create the series so they export as zero before the first event.
	for _, kind := range []string{kindAdded, kindDeleted, kindError} {
		events.WithLabelValues(kind)
	}
	return &Metrics{events: events}, nil
}

func (m *Metrics) QuadAdded(rdf.Quad)   { m.events.WithLabelValues(kindAdded).Inc() }
func (m *Metrics) QuadDeleted(rdf.Quad) { m.events.WithLabelValues(kindDeleted).Inc() }
func (m *Metrics) StoreError(error)     { m.events.WithLabelValues(kindError).Inc() }

// WriteTextfile writes everything g gathers to path in the Prometheus text
// format, for collection by a node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
