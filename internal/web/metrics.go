// ABOUTME: Prometheus metrics for store mutations and record counts.
// ABOUTME: Uses a private registry so several servers can coexist in one process.
package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mutation operations and results used as label values.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"

	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the dashboard's collectors.
type Metrics struct {
	registry  *prometheus.Registry
	mutations *prometheus.CounterVec
	records   prometheus.Gauge
}

// NewMetrics creates collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthlog_mutations_total",
			Help: "Store mutations by operation and result.",
		}, []string{"op", "result"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "healthlog_records",
			Help: "Records in the store at the last load.",
		}),
	}
	m.registry.MustRegister(
		m.mutations,
		m.records,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveMutation counts one mutation attempt.
func (m *Metrics) ObserveMutation(op string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.mutations.WithLabelValues(op, result).Inc()
}

// SetRecords records the current record count.
func (m *Metrics) SetRecords(n int) {
	m.records.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
