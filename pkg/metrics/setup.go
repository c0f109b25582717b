package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns an isolated Prometheus registry, the HTTP server exposing it
// and the collectors fed by database operations.
type Metrics struct {
	// Server serves the registry on /metrics. Nil when no address is configured.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	Registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	rowsTotal         *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewMetrics creates the registry, registers the operation collectors (and the
// runtime collectors when enabled) and prepares the /metrics server.
// Every metric carries a constant service label.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	m := &Metrics{
		Registry: registry,
	}

	m.operationsTotal = createCounterVec(cfg.Namespace, "db_operations_total",
		"Total number of database operations by outcome", []string{"component", "operation", "status"})
	m.rowsTotal = createCounterVec(cfg.Namespace, "db_rows_total",
		"Total number of rows read, written or copied", []string{"component", "operation"})
	m.operationDuration = createHistogramVec(cfg.Namespace, "db_operation_duration_seconds",
		"Duration of database operations in seconds", []string{"component", "operation"}, prometheus.DefBuckets)

	wrappedRegistry.MustRegister(
		m.operationsTotal,
		m.rowsTotal,
		m.operationDuration,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	if cfg.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		m.Server = &http.Server{
			Addr:    cfg.Address,
			Handler: mux,
		}
	}

	return m
}
