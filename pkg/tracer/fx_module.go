package tracer

import (
	"context"

	"github.com/Aleph-Alpha/interactpsql/pkg/logger"
	"go.uber.org/fx"
)

// FXModule provides *Tracer and flushes it when the application stops.
// A tracer.Config and a *logger.Logger must be available in the container.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewTracerWithDI,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// NewTracerWithDI adapts the concrete application logger to NewClient.
func NewTracerWithDI(cfg Config, log *logger.Logger) *Tracer {
	return NewClient(cfg, log)
}

func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tracer.Shutdown(ctx)
		},
	})
}
