package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/capture"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/outcome"
)

const namespace = "lsd"

// DurationBuckets covers sub-millisecond stubs up to slow upstreams.
var DurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds the collectors for one capture pipeline.
type Metrics struct {
	registry *prometheus.Registry
	started  time.Time

	ExchangesTotal       *prometheus.CounterVec
	ExchangeDuration     *prometheus.HistogramVec
	CaptureFailuresTotal *prometheus.CounterVec
}

var _ capture.Observer = (*Metrics)(nil)

// Option configures Metrics.
type Option func(*Metrics)

// WithRuntime adds the Go runtime and process collectors.
func WithRuntime() Option {
	return func(m *Metrics) {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// New creates Metrics backed by a fresh registry.
func New(opts ...Option) *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		started:  time.Now(),
		ExchangesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_total",
			Help:      "Total exchanges captured by outcome",
		}, []string{"outcome"}),
		ExchangeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "exchange_duration_seconds",
			Help:      "Duration of captured exchanges in seconds",
			Buckets:   DurationBuckets,
		}, []string{"outcome"}),
		CaptureFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_failures_total",
			Help:      "Total instrumentation failures by stage",
		}, []string{"stage"}),
	}
	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Seconds since the capture pipeline started",
	}, func() float64 { return time.Since(m.started).Seconds() })

	r.MustRegister(m.ExchangesTotal, m.ExchangeDuration, m.CaptureFailuresTotal, uptime)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TrackStored exposes count as lsd_stored_messages. It may be called once.
func (m *Metrics) TrackStored(count func() int) error {
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stored_messages",
		Help:      "Messages currently held in memory",
	}, func() float64 { return float64(count()) }))
}

// ExchangeCaptured implements capture.Observer.
func (m *Metrics) ExchangeCaptured(class outcome.Class, d time.Duration) {
	m.ExchangesTotal.WithLabelValues(string(class)).Inc()
	m.ExchangeDuration.WithLabelValues(string(class)).Observe(d.Seconds())
}

// CaptureFailed implements capture.Observer.
func (m *Metrics) CaptureFailed(stage capture.Stage) {
	m.CaptureFailuresTotal.WithLabelValues(string(stage)).Inc()
}
