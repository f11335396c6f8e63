// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all service-level collectors.
type Metrics struct {
	AnalysesTotal      *prometheus.CounterVec
	AnalysisDuration   prometheus.Histogram
	LiveSessionsActive prometheus.Gauge
	LiveSessionErrors  *prometheus.CounterVec
	AudioScheduled     prometheus.Counter
	AudioInterrupts    prometheus.Counter
}

// New registers and returns the service collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scamshield_analyses_total",
			Help: "Completed content analyses by outcome.",
		}, []string{"type", "outcome"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scamshield_analysis_duration_seconds",
			Help:    "Latency of content analysis calls.",
			Buckets: prometheus.DefBuckets,
		}),
		LiveSessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scamshield_live_sessions_active",
			Help: "Currently open live scanning sessions.",
		}),
		LiveSessionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scamshield_live_session_errors_total",
			Help: "Live session failures by classified cause.",
		}, []string{"kind"}),
		AudioScheduled: factory.NewCounter(prometheus.CounterOpts{
			Name: "scamshield_audio_buffers_scheduled_total",
			Help: "Audio buffers handed to the playback scheduler.",
		}),
		AudioInterrupts: factory.NewCounter(prometheus.CounterOpts{
			Name: "scamshield_audio_interrupts_total",
			Help: "Interruption signals that cleared the playback queue.",
		}),
	}
}
