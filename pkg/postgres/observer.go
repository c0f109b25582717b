package postgres

import (
	"context"
	"time"

	"github.com/Aleph-Alpha/interactpsql/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const component = "postgres"

// operation tracks one facade call: a span named postgres.<name> plus the
// observer notification sent when it finishes.
type operation struct {
	p           *Postgres
	name        string
	resource    string
	subResource string
	start       time.Time
	span        trace.Span
}

// startOperation opens the span for name and returns the derived context.
func (p *Postgres) startOperation(ctx context.Context, name, resource, subResource string) (context.Context, *operation) {
	ctx, span := p.tracer.Start(ctx, component+"."+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.sql.table", resource),
		))

	return ctx, &operation{
		p:           p,
		name:        name,
		resource:    resource,
		subResource: subResource,
		start:       time.Now(),
		span:        span,
	}
}

// finish ends the span and notifies the observer.
func (o *operation) finish(rows int64, err error) {
	o.span.SetAttributes(attribute.Int64("db.rows", rows))
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
	}
	o.span.End()

	o.p.observeOperation(o.name, o.resource, o.subResource, time.Since(o.start), err, rows, nil)
}

// observeOperation notifies the observer about an operation if one is configured.
func (p *Postgres) observeOperation(op, resource, subResource string, duration time.Duration, err error, rows int64, metadata map[string]interface{}) {
	if p == nil || p.observer == nil {
		return
	}

	p.observer.ObserveOperation(observability.OperationContext{
		Component:   component,
		Operation:   op,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Rows:        rows,
		Metadata:    metadata,
	})
}
