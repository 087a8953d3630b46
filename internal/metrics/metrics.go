// Package metrics provides Prometheus metrics for the fee reminder
// service: request handling, classification and dispatch outcomes.
// They are exposed on the dedicated metrics port.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	// Request handling
	RequestsTotal      prometheus.Counter // Reminder requests received
	ValidationFailures prometheus.Counter // Requests rejected for missing/invalid fields

	// Classification
	Predictions       prometheus.Counter   // Successful classifications
	InferenceFailures prometheus.Counter   // Scale/predict/decode failures
	InferenceLatency  prometheus.Histogram // Classification latency in seconds
	ModelAge          prometheus.Gauge     // Age of the loaded artifact bundle in seconds

	// Gate and dispatch
	GateDeclines     prometheus.Counter   // Requests where no reminder was warranted
	RemindersSent    prometheus.Counter   // Messages accepted by the provider
	DispatchFailures prometheus.Counter   // Provider rejections and transport failures
	DispatchLatency  prometheus.Histogram // Provider round-trip latency in seconds
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics against a custom registry, which keeps
// test collectors isolated from the global state.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		RequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "reminder_requests_total",
			Help: "Total number of reminder requests received",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of requests rejected during validation",
		}),
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful payment classifications",
		}),
		InferenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "inference_failures_total",
			Help: "Total number of classification failures",
		}),
		InferenceLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "inference_latency_seconds",
			Help:    "Classification latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_bundle_age_seconds",
			Help: "Age of the loaded model artifact bundle in seconds",
		}),
		GateDeclines: factory.NewCounter(prometheus.CounterOpts{
			Name: "gate_declines_total",
			Help: "Total number of requests where the gate declined to notify",
		}),
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Total number of reminders accepted by the messaging provider",
		}),
		DispatchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_failures_total",
			Help: "Total number of failed reminder dispatch attempts",
		}),
		DispatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_latency_seconds",
			Help:    "Messaging provider round-trip latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// PredictionsInc implements ml.MetricsInterface.
func (m *Metrics) PredictionsInc() { m.Predictions.Inc() }

// InferenceFailuresInc implements ml.MetricsInterface.
func (m *Metrics) InferenceFailuresInc() { m.InferenceFailures.Inc() }

// InferenceLatencyObserve implements ml.MetricsInterface.
func (m *Metrics) InferenceLatencyObserve(seconds float64) { m.InferenceLatency.Observe(seconds) }

// ModelAgeSet implements ml.MetricsInterface.
func (m *Metrics) ModelAgeSet(seconds float64) { m.ModelAge.Set(seconds) }

// RemindersSentInc implements notify.MetricsInterface.
func (m *Metrics) RemindersSentInc() { m.RemindersSent.Inc() }

// DispatchFailuresInc implements notify.MetricsInterface.
func (m *Metrics) DispatchFailuresInc() { m.DispatchFailures.Inc() }

// DispatchLatencyObserve implements notify.MetricsInterface.
func (m *Metrics) DispatchLatencyObserve(seconds float64) { m.DispatchLatency.Observe(seconds) }
