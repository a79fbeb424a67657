// Package metrics exposes Prometheus instruments for analysis runs and
// speech engine calls. Every Recorder owns a private registry so tests and
// concurrent pipelines never share state.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// DefaultPath is where the HTTP handler is mounted
const DefaultPath = "/metrics"

// Recorder holds the registered instruments. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	AnalysesTotal    *prometheus.CounterVec
	ThreatScore      prometheus.Histogram
	AnalysisDuration prometheus.Histogram
	NotFoundTotal    prometheus.Counter

	SpeechRequestsTotal *prometheus.CounterVec
	SpeechLatency       *prometheus.HistogramVec
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vigil_analyses_total",
				Help: "Total number of completed session analyses",
			},
			[]string{"severity"},
		),

		ThreatScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vigil_threat_score",
				Help:    "Distribution of session threat scores",
				Buckets: []float64{0, 2, 5, 8, 12, 20, 40},
			},
		),

		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vigil_analysis_duration_seconds",
				Help:    "Time taken to analyze one session",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
		),

		NotFoundTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vigil_analysis_not_found_total",
				Help: "Analyses requested for sessions without transcript segments",
			},
		),

		SpeechRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vigil_speech_requests_total",
				Help: "Total number of speech engine requests",
			},
			[]string{"engine", "operation", "status"},
		),

		SpeechLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vigil_speech_latency_seconds",
				Help:    "Latency of speech engine requests",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"engine", "operation"},
		),
	}

	r.registry.MustRegister(
		r.AnalysesTotal,
		r.ThreatScore,
		r.AnalysisDuration,
		r.NotFoundTotal,
		r.SpeechRequestsTotal,
		r.SpeechLatency,
	)

	return r
}

// Registry returns the recorder's registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordAnalysis records a completed analysis
func (r *Recorder) RecordAnalysis(severity string, score int, duration time.Duration) {
	if r == nil {
		return
	}
	r.AnalysesTotal.WithLabelValues(severity).Inc()
	r.ThreatScore.Observe(float64(score))
	r.AnalysisDuration.Observe(duration.Seconds())
}

// RecordNotFound records an analysis of a session with no transcript
func (r *Recorder) RecordNotFound() {
	if r == nil {
		return
	}
	r.NotFoundTotal.Inc()
}

// ObserveSpeech starts timing a speech request; call the returned function
// with the request's error when it finishes
func (r *Recorder) ObserveSpeech(engine, operation string) func(err error) {
	if r == nil {
		return func(error) {}
	}

	start := time.Now()
	return func(err error) {
		status := "ok"
		if err != nil {
			status = "error"
		}
		r.SpeechRequestsTotal.WithLabelValues(engine, operation, status).Inc()
		r.SpeechLatency.WithLabelValues(engine, operation).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the recorder's registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          r.registry,
	})
}

// Serve exposes the handler on addr until ctx is cancelled
func (r *Recorder) Serve(ctx context.Context, addr string, logger *logrus.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(DefaultPath, r.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.WithFields(logrus.Fields{
		"addr": addr,
		"path": DefaultPath,
	}).Info("Metrics endpoint listening")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
