package metrics

import (
	"OmniTrade/internal/domain/models"
	drepo "OmniTrade/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewRegistry returns a registry carrying the Go and process collectors.
// Everything in the process registers here instead of the global default so
// tests can build as many recorders as they like.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticks         *prometheus.CounterVec
	health        prometheus.Gauge
	mode          *prometheus.GaugeVec
	advice        *prometheus.HistogramVec
	toggles       *prometheus.CounterVec
	streamClients prometheus.Gauge
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

var _ drepo.Metrics = (*Recorder)(nil)

// New registers the dashboard collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		ticks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "omnitrade",
				Name:      "ticks_total",
				Help:      "Timer ticks processed by kind",
			},
			[]string{"kind"},
		),
		health: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "omnitrade",
			Subsystem: "governance",
			Name:      "health_score",
			Help:      "Latest system health score (0-100)",
		}),
		mode: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "omnitrade",
				Subsystem: "governance",
				Name:      "mode",
				Help:      "1 for the current governance mode, 0 otherwise",
			},
			[]string{"mode"},
		),
		advice: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "omnitrade",
				Subsystem: "advice",
				Name:      "request_duration_seconds",
				Help:      "Advice request latency by outcome",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"result"},
		),
		toggles: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "omnitrade",
				Subsystem: "fleet",
				Name:      "toggles_total",
				Help:      "Bot activation changes",
			},
			[]string{"bot", "active"},
		),
		streamClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "omnitrade",
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Connected telemetry stream clients",
		}),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "omnitrade",
				Name:      "errors_total",
				Help:      "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "omnitrade",
				Name:      "operation_duration_seconds",
				Help:      "Duration of operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordTick(kind string) {
	r.ticks.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordHealth(score int, mode models.GovernanceMode) {
	r.health.Set(float64(score))
	for _, m := range []models.GovernanceMode{models.ModeFull, models.ModeReduced, models.ModeDefensive, models.ModeStop} {
		v := 0.0
		if m == mode {
			v = 1
		}
		r.mode.WithLabelValues(string(m)).Set(v)
	}
}

func (r *Recorder) RecordAdvice(result string, seconds float64) {
	r.advice.WithLabelValues(result).Observe(seconds)
}

func (r *Recorder) RecordToggle(botID string, active bool) {
	state := "false"
	if active {
		state = "true"
	}
	r.toggles.WithLabelValues(botID, state).Inc()
}

func (r *Recorder) RecordStreamClients(n int) {
	r.streamClients.Set(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every observation.
type Nop struct{}

var _ drepo.Metrics = Nop{}

func (Nop) RecordTick(string) {}
func (Nop) RecordHealth(int, models.GovernanceMode) {}
func (Nop) RecordAdvice(string, float64) {}
func (Nop) RecordToggle(string, bool) {}
func (Nop) RecordStreamClients(int) {}
func (Nop) RecordError(string) {}
func (Nop) RecordLatency(string, float64) {}
