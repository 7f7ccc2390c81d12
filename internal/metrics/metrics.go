package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fruitstore"

// Metrics records HTTP and order workflow activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	httpDuration       *prometheus.HistogramVec
	ordersCreated      prometheus.Counter
	orderFailures      *prometheus.CounterVec
	ordersCancelled    prometheus.Counter
	paymentTransitions *prometheus.CounterVec
	txRetries          prometheus.Counter
}

// New registers the collectors on reg. A nil registerer yields a no-op recorder.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders committed successfully.",
		}),
		orderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_failures_total",
			Help:      "Order creation attempts that did not commit, by reason.",
		}, []string{"reason"}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled with stock restored.",
		}),
		paymentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_transitions_total",
			Help:      "Payment status changes, by target status.",
		}, []string{"status"}),
		txRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_retries_total",
			Help:      "Transactions retried after a serialization failure or deadlock.",
		}),
	}

	reg.MustRegister(
		m.httpDuration,
		m.ordersCreated,
		m.orderFailures,
		m.ordersCancelled,
		m.paymentTransitions,
		m.txRetries,
	)

	return m
}

// ObserveHTTP records the duration of a handled request.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(duration.Seconds())
}

// OrderCreated counts a committed order.
func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// OrderFailed counts an order that was rolled back.
func (m *Metrics) OrderFailed(reason string) {
	if m == nil {
		return
	}
	m.orderFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// OrderCancelled counts a committed cancellation.
func (m *Metrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

// PaymentTransition counts a payment moving to status.
func (m *Metrics) PaymentTransition(status string) {
	if m == nil {
		return
	}
	m.paymentTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// TxRetry counts one retried transaction attempt.
func (m *Metrics) TxRetry() {
	if m == nil {
		return
	}
	m.txRetries.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
