package stream

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what the streaming adapter and publisher do with each record.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	mu         sync.Mutex
	registerer prometheus.Registerer
	registered bool

	received        *prometheus.CounterVec
	parseFailures   *prometheus.CounterVec
	forwarded       *prometheus.CounterVec
	dropped         *prometheus.CounterVec
	forwardFailures *prometheus.CounterVec
	published       *prometheus.CounterVec
}

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *Metrics
)

// DefaultMetrics returns collectors registered on the Prometheus default
// registerer. Registration errors leave the collectors usable but unexported.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
		_ = defaultMetrics.Register()
	})
	return defaultMetrics
}

func newStreamCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "busflow",
			Subsystem: "stream",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewMetrics creates unregistered collectors; call Register to expose them.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Metrics{
		registerer:      registerer,
		received:        newStreamCounterVec("records_received_total", "Records delivered by the broker, redeliveries included", "topic"),
		parseFailures:   newStreamCounterVec("parse_failures_total", "Failed parse attempts", "topic"),
		forwarded:       newStreamCounterVec("records_forwarded_total", "Records handed to the downstream queue and acknowledged", "topic"),
		dropped:         newStreamCounterVec("records_dropped_total", "Records acknowledged without forwarding after parse retries ran out", "topic"),
		forwardFailures: newStreamCounterVec("forward_failures_total", "Records left unacknowledged because the downstream queue refused them", "topic", "reason"),
		published:       newStreamCounterVec("records_published_total", "Publish attempts by outcome", "topic", "status"),
	}
}

// Register registers the collectors. Safe to call multiple times; collectors
// already registered elsewhere under the same name are reused.
func (m *Metrics) Register() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	for _, vec := range []**prometheus.CounterVec{
		&m.received,
		&m.parseFailures,
		&m.forwarded,
		&m.dropped,
		&m.forwardFailures,
		&m.published,
	} {
		if err := m.registerer.Register(*vec); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				*vec = existing
			}
		}
	}

	m.registered = true
	return nil
}

func (m *Metrics) recordReceived(topic string) {
	if m != nil {
		m.received.WithLabelValues(topic).Inc()
	}
}

func (m *Metrics) recordParseFailure(topic string) {
	if m != nil {
		m.parseFailures.WithLabelValues(topic).Inc()
	}
}

func (m *Metrics) recordForwarded(topic string) {
	if m != nil {
		m.forwarded.WithLabelValues(topic).Inc()
	}
}

func (m *Metrics) recordDropped(topic string) {
	if m != nil {
		m.dropped.WithLabelValues(topic).Inc()
	}
}

func (m *Metrics) recordForwardFailure(topic, reason string) {
	if m != nil {
		m.forwardFailures.WithLabelValues(topic, reason).Inc()
	}
}

func (m *Metrics) recordPublished(topic, status string) {
	if m != nil {
		m.published.WithLabelValues(topic, status).Inc()
	}
}
