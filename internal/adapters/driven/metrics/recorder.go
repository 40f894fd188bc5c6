// Package metrics exposes pipeline measurements in the Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/logger"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// Path is where Serve exposes the metrics.
const Path = "/metrics"

// Recorder keeps its own registry so several recorders can coexist in tests.
type Recorder struct {
	registry      *prometheus.Registry
	stageDuration *prometheus.HistogramVec
	answersTotal  *prometheus.CounterVec
}

// NewRecorder creates a recorder with the thorr collectors and the Go
// runtime collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "thorr_stage_duration_seconds",
				Help:    "Time spent in each question pipeline stage.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"stage"},
		),
		answersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thorr_answers_total",
				Help: "Total number of answered questions by intent and answer kind.",
			},
			[]string{"intent", "kind"},
		),
	}
	r.registry.MustRegister(
		r.stageDuration,
		r.answersTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveStage records the duration of one pipeline stage.
func (r *Recorder) ObserveStage(stage string, elapsed time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveAnswer counts one answered question.
func (r *Recorder) ObserveAnswer(intent domain.Intent, kind domain.AnswerKind) {
	if intent == "" {
		intent = domain.IntentUnknown
	}
	r.answersTotal.WithLabelValues(string(intent), string(kind)).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes Handler on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("GET "+Path, r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Debug("Serving metrics on %s%s", addr, Path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
