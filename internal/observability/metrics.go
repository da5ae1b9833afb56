package observability

import (
	"context"

	"hazard-admin/internal/services"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the zone store and HTTP API.
type Metrics struct {
	Zones     prometheus.Gauge
	Mutations *prometheus.CounterVec // labels: op
	Imports   *prometheus.CounterVec // labels: outcome={success,rejected}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.Zones, m.Mutations, m.Imports)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as many
// as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Zones: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_admin",
			Name:      "zones",
			Help:      "Number of hazard zones currently stored.",
		}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_admin",
			Name:      "zone_mutations_total",
			Help:      "Committed zone list mutations by operation.",
		}, []string{"op"}),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_admin",
			Name:      "imports_total",
			Help:      "Import attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// ZonesChanged keeps the gauge in step with the store.
func (m *Metrics) ZonesChanged(_ context.Context, c services.ZoneChange) {
	m.Zones.Set(float64(c.Count))
	m.Mutations.WithLabelValues(string(c.Op)).Inc()
}

// SetZones seeds the gauge after the initial load.
func (m *Metrics) SetZones(n int) {
	m.Zones.Set(float64(n))
}

func (m *Metrics) ImportAccepted() {
	m.Imports.WithLabelValues("success").Inc()
}

func (m *Metrics) ImportRejected() {
	m.Imports.WithLabelValues("rejected").Inc()
}
