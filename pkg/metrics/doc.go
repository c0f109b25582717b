// Package metrics exposes database operation metrics to Prometheus.
//
// *Metrics implements observability.Observer, so it can be attached to the
// postgres facade with WithObserver or through FXModule:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "interactpsql"})
//	pg.WithObserver(m)
//	go m.Server.ListenAndServe()
//
// Collected series:
//   - db_operations_total{component, operation, status}
//   - db_rows_total{component, operation}
//   - db_operation_duration_seconds{component, operation}
package metrics
