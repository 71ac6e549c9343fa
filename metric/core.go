package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SimMetrics contains the core simulation metrics (not scenario-specific)
type SimMetrics struct {
	// Broker metrics
	MessagesPublished *prometheus.CounterVec
	MessagesDelivered *prometheus.CounterVec
	MessagesDropped   prometheus.Counter
	DeliveryErrors    *prometheus.CounterVec
	QueueDepth        prometheus.Gauge
	Subscribers       *prometheus.GaugeVec

	// Agent metrics
	AgentCycles *prometheus.CounterVec
	AgentErrors *prometheus.CounterVec

	// Passenger movement metrics
	Boardings         prometheus.Counter
	Alightings        prometheus.Counter
	BusAdvances       prometheus.Counter
	PassengersByState *prometheus.GaugeVec
}

// NewSimMetrics creates a new SimMetrics instance with all core metrics
func NewSimMetrics() *SimMetrics {
	return &SimMetrics{
		MessagesPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transitsim",
				Subsystem: "broker",
				Name:      "published_total",
				Help:      "Total number of messages published to the broker",
			},
			[]string{"kind"},
		),

		MessagesDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transitsim",
				Subsystem: "broker",
				Name:      "delivered_total",
				Help:      "Total number of per-subscriber deliveries",
			},
			[]string{"kind"},
		),

		MessagesDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "transitsim",
				Subsystem: "broker",
				Name:      "dropped_total",
				Help:      "Messages discarded undelivered at shutdown",
			},
		),

		DeliveryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transitsim",
				Subsystem: "broker",
				Name:      "delivery_errors_total",
				Help:      "Subscriber handler failures during delivery",
			},
			[]string{"kind"},
		),

		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "transitsim",
				Subsystem: "broker",
				Name:      "queue_depth",
				Help:      "Messages waiting in the broker queue",
			},
		),

		Subscribers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "transitsim",
				Subsystem: "broker",
				Name:      "subscribers",
				Help:      "Current subscriber count per message kind",
			},
			[]string{"kind"},
		),

		AgentCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transitsim",
				Subsystem: "agent",
				Name:      "cycles_total",
				Help:      "Completed agent loop iterations",
			},
			[]string{"agent"},
		),

		AgentErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transitsim",
				Subsystem: "agent",
				Name:      "errors_total",
				Help:      "Recovered agent cycle errors",
			},
			[]string{"agent"},
		),

		Boardings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "transitsim",
				Subsystem: "passenger",
				Name:      "boardings_total",
				Help:      "Passengers boarded onto buses",
			},
		),

		Alightings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "transitsim",
				Subsystem: "passenger",
				Name:      "alightings_total",
				Help:      "Passengers alighted from buses",
			},
		),

		BusAdvances: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "transitsim",
				Subsystem: "bus",
				Name:      "advances_total",
				Help:      "Bus movements between stops",
			},
		),

		PassengersByState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "transitsim",
				Subsystem: "passenger",
				Name:      "by_state",
				Help:      "Passenger count per state",
			},
			[]string{"state"},
		),
	}
}

// collectors returns every collector in the set for bulk registration
func (m *SimMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesPublished,
		m.MessagesDelivered,
		m.MessagesDropped,
		m.DeliveryErrors,
		m.QueueDepth,
		m.Subscribers,
		m.AgentCycles,
		m.AgentErrors,
		m.Boardings,
		m.Alightings,
		m.BusAdvances,
		m.PassengersByState,
	}
}

// RecordPublished increments the publish counter for a message kind
func (m *SimMetrics) RecordPublished(kind string) {
	if m == nil {
		return
	}
	m.MessagesPublished.WithLabelValues(kind).Inc()
}

// RecordDelivered increments the delivery counter for a message kind
func (m *SimMetrics) RecordDelivered(kind string) {
	if m == nil {
		return
	}
	m.MessagesDelivered.WithLabelValues(kind).Inc()
}

// RecordDropped counts messages discarded undelivered at shutdown
func (m *SimMetrics) RecordDropped(n int) {
	if m == nil {
		return
	}
	m.MessagesDropped.Add(float64(n))
}

// RecordDeliveryError counts a subscriber handler failure
func (m *SimMetrics) RecordDeliveryError(kind string) {
	if m == nil {
		return
	}
	m.DeliveryErrors.WithLabelValues(kind).Inc()
}

// SetQueueDepth records the current broker queue depth
func (m *SimMetrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(depth))
}

// SetSubscribers records the subscriber count for a kind
func (m *SimMetrics) SetSubscribers(kind string, count int) {
	if m == nil {
		return
	}
	m.Subscribers.WithLabelValues(kind).Set(float64(count))
}

// RecordAgentCycle counts a completed agent loop iteration
func (m *SimMetrics) RecordAgentCycle(agent string) {
	if m == nil {
		return
	}
	m.AgentCycles.WithLabelValues(agent).Inc()
}

// RecordAgentError counts a recovered agent cycle error
func (m *SimMetrics) RecordAgentError(agent string) {
	if m == nil {
		return
	}
	m.AgentErrors.WithLabelValues(agent).Inc()
}

// RecordBoarding counts a passenger boarding a bus
func (m *SimMetrics) RecordBoarding() {
	if m == nil {
		return
	}
	m.Boardings.Inc()
}

// RecordAlighting counts a passenger leaving a bus
func (m *SimMetrics) RecordAlighting() {
	if m == nil {
		return
	}
	m.Alightings.Inc()
}

// RecordBusAdvance counts a bus moving between stops
func (m *SimMetrics) RecordBusAdvance() {
	if m == nil {
		return
	}
	m.BusAdvances.Inc()
}

// SetPassengerState records the passenger count for a state
func (m *SimMetrics) SetPassengerState(state string, count int) {
	if m == nil {
		return
	}
	m.PassengersByState.WithLabelValues(state).Set(float64(count))
}
