// Package metrics exposes navigation activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atomicstack/navstate/internal/nav"
)

// Metrics is a nav.Observer recording every store operation.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	depth      prometheus.Gauge
	containers prometheus.Gauge
	reloads    *prometheus.CounterVec
}

var _ nav.Observer = (*Metrics)(nil)

// New registers the navstate collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "navstate_operations_total",
			Help: "Navigation operations by operation and outcome",
		}, []string{"op", "outcome"}),
		depth: f.NewGauge(prometheus.GaugeOpts{
			Name: "navstate_tree_depth",
			Help: "Depth of the current navigation tree",
		}),
		containers: f.NewGauge(prometheus.GaugeOpts{
			Name: "navstate_containers",
			Help: "Tab and pane nodes in the current navigation tree",
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "navstate_graph_reloads_total",
			Help: "Graph file reloads by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) OnNavigate(ev nav.Event) {
	m.operations.WithLabelValues(ev.Op, ev.Outcome).Inc()
	m.Observe(ev.After)
}

// Observe records the shape of root.
func (m *Metrics) Observe(root nav.Node) {
	m.depth.Set(float64(nav.Depth(root)))
	m.containers.Set(float64(len(nav.Containers(root))))
}

// GraphReloaded counts a graph reload attempt.
func (m *Metrics) GraphReloaded(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
