package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brewlinehq/brewline-backend/pkg/enums"
)

// OrderMetrics tracks order lifecycle activity.
type OrderMetrics struct {
	transitions *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	checkouts   prometheus.Counter
}

// NewOrderMetrics registers the order lifecycle metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Successful order status transitions by from/to pair.",
	}, []string{"from", "to"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transition_conflicts_total",
		Help: "Order transitions that hit a storage conflict, by outcome.",
	}, []string{"outcome"})
	checkouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Successful checkouts.",
	})
	reg.MustRegister(transitions, conflicts, checkouts)
	return &OrderMetrics{
		transitions: transitions,
		conflicts:   conflicts,
		checkouts:   checkouts,
	}
}

// IncTransition records a committed status transition.
func (m *OrderMetrics) IncTransition(from, to enums.OrderStatus) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// IncConflictRetried records a serialization conflict the service retried.
func (m *OrderMetrics) IncConflictRetried() {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues("retried").Inc()
}

// IncConflictExhausted records a conflict that exhausted its retries.
func (m *OrderMetrics) IncConflictExhausted() {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues("exhausted").Inc()
}

// IncCheckout records a committed checkout.
func (m *OrderMetrics) IncCheckout() {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.Inc()
}
