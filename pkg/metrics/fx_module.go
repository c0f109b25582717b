package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/Aleph-Alpha/interactpsql/pkg/logger"
	"github.com/Aleph-Alpha/interactpsql/pkg/observability"
	"go.uber.org/fx"
)

// FXModule provides *Metrics, exposes it as the observability.Observer for
// database clients and runs the /metrics server for the application's lifetime.
//
// A metrics.Config and a *logger.Logger must be available in the container.
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		fx.Annotate(
			func(m *Metrics) *Metrics { return m },
			fx.As(new(observability.Observer)),
		),
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// RegisterMetricsLifecycle starts the Prometheus HTTP server in the background
// and shuts it down gracefully on stop. Nothing is started when no address is configured.
func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics, log *logger.Logger) {
	if m.Server == nil {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("Starting Prometheus metrics server", nil, map[string]interface{}{
					"address": m.Server.Addr,
				})

				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Error starting Prometheus metrics server", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Prometheus metrics server", nil, nil)
			return m.Server.Shutdown(ctx)
		},
	})
}
