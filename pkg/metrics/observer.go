package metrics

import "github.com/Aleph-Alpha/interactpsql/pkg/observability"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// ObserveOperation records one completed operation: the outcome counter, the
// affected row count and the latency histogram.
func (m *Metrics) ObserveOperation(ctx observability.OperationContext) {
	status := statusSuccess
	if ctx.Error != nil {
		status = statusError
	}

	m.operationsTotal.WithLabelValues(ctx.Component, ctx.Operation, status).Inc()
	if ctx.Rows > 0 {
		m.rowsTotal.WithLabelValues(ctx.Component, ctx.Operation).Add(float64(ctx.Rows))
	}
	m.operationDuration.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())
}
