// Package metrics exposes Prometheus counters for source compilation and
// watcher activity.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hornkb/internal/kb"
)

var (
	// compileSources counts compiled sources.
	// Labels: status (ok, error)
	compileSources = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hornkb",
		Subsystem: "compile",
		Name:      "sources_total",
		Help:      "Total sources compiled, by outcome",
	}, []string{"status"})

	compileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hornkb",
		Subsystem: "compile",
		Name:      "duration_seconds",
		Help:      "Time to parse and assemble one source",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	// entities tracks the size of the last compiled knowledge base.
	// Labels: kind (facts, rules, queries)
	entities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hornkb",
		Subsystem: "kb",
		Name:      "entities",
		Help:      "Facts, rules and queries in the last compiled knowledge base",
	}, []string{"kind"})

	// watchEvents counts file events the watcher acted on.
	// Labels: op (create, write, remove, rename)
	watchEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hornkb",
		Subsystem: "watch",
		Name:      "events_total",
		Help:      "File events handled by the source watcher",
	}, []string{"op"})
)

// ObserveCompile records one compilation that started at start.
func ObserveCompile(start time.Time, err error) {
	compileDuration.Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	compileSources.WithLabelValues(status).Inc()
}

// RecordKnowledgeBase sets the entity gauges from base.
func RecordKnowledgeBase(base *kb.KnowledgeBase) {
	if base == nil {
		return
	}
	s := base.Stats()
	entities.WithLabelValues("facts").Set(float64(s.Facts))
	entities.WithLabelValues("rules").Set(float64(s.Rules))
	entities.WithLabelValues("queries").Set(float64(s.Queries))
}

// WatchEvent counts one handled watcher event.
func WatchEvent(op string) {
	watchEvents.WithLabelValues(op).Inc()
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes the metrics at path on addr until ctx is cancelled.
func Serve(ctx context.Context, addr, path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("serving metrics", zap.String("addr", addr), zap.String("path", path))

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
