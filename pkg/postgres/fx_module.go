package postgres

import (
	"context"

	"github.com/Aleph-Alpha/interactpsql/pkg/observability"
	"go.uber.org/fx"
)

// FXModule is an fx module that provides the Postgres facade.
// A postgres.Config and a Logger must be available in the container; an
// observability.Observer is attached when one is provided.
var FXModule = fx.Module("postgres",
	fx.Provide(
		NewPostgresClientWithDI,
	),
	fx.Invoke(RegisterPostgresLifecycle),
)

// PostgresParams groups the dependencies needed to create a Postgres facade via dependency injection.
type PostgresParams struct {
	fx.In

	Config   Config
	Logger   Logger
	Observer observability.Observer `optional:"true"`
}

// NewPostgresClientWithDI creates the facade from injected dependencies.
// Connection errors abort application start-up.
func NewPostgresClientWithDI(params PostgresParams) (*Postgres, error) {
	client, err := NewPostgres(context.Background(), params.Config, params.Logger)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		client.WithObserver(params.Observer)
	}
	return client, nil
}

// PostgresLifeCycleParams groups the dependencies needed for Postgres lifecycle management.
type PostgresLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Postgres  *Postgres
}

// RegisterPostgresLifecycle closes the session when the application stops.
func RegisterPostgresLifecycle(params PostgresLifeCycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return params.Postgres.Close()
		},
	})
}
