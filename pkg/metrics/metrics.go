// Package metrics expone contadores Prometheus del ledger de stock.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
)

// Metrics agrupa el registro y los contadores de movimientos.
type Metrics struct {
	registry *prometheus.Registry

	MovementsApplied  *prometheus.CounterVec
	MovementsRejected *prometheus.CounterVec
	LockRetries       prometheus.Counter
}

// New crea un registro propio con los colectores de Go y de proceso.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.MovementsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_applied_total",
			Help:      "Movimientos de inventario aplicados",
		},
		[]string{"type"},
	)
	m.MovementsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_rejected_total",
			Help:      "Movimientos rechazados por tipo de error",
		},
		[]string{"type", "kind"},
	)
	m.LockRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_timeout_retries_total",
			Help:      "Reintentos del borde HTTP tras LOCK_TIMEOUT",
		},
	)

	registry.MustRegister(m.MovementsApplied, m.MovementsRejected, m.LockRetries)
	return m
}

// MovementApplied implementa inventory.MovementObserver.
func (m *Metrics) MovementApplied(t entity.MovementType) {
	m.MovementsApplied.WithLabelValues(string(t)).Inc()
}

// MovementRejected implementa inventory.MovementObserver.
func (m *Metrics) MovementRejected(t entity.MovementType, kind domain.Kind) {
	m.MovementsRejected.WithLabelValues(string(t), string(kind)).Inc()
}

// LockRetried cuenta un reintento tras LOCK_TIMEOUT.
func (m *Metrics) LockRetried() {
	m.LockRetries.Inc()
}

// Handler devuelve el handler HTTP de /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry expone el registro (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
