package minio

import (
	"context"

	"github.com/Aleph-Alpha/interactpsql/pkg/logger"
	"github.com/Aleph-Alpha/interactpsql/pkg/postgres"
	"go.uber.org/fx"
)

// FXModule provides *Minio and exposes it as the postgres.ObjectSource used
// by ImportCsvObject. A minio.Config and a *logger.Logger must be available
// in the container.
var FXModule = fx.Module("minio",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(m *Minio) *Minio { return m },
			fx.As(new(postgres.ObjectSource)),
		),
	),
)

// NewClientWithDI creates the client on application start-up.
func NewClientWithDI(lc fx.Lifecycle, cfg Config, log *logger.Logger) (*Minio, error) {
	client, err := NewClient(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing minio client...", nil, nil)
			return nil
		},
	})
	return client, nil
}
