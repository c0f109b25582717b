package config

import (
	"github.com/Aleph-Alpha/interactpsql/pkg/logger"
	"github.com/Aleph-Alpha/interactpsql/pkg/metrics"
	"github.com/Aleph-Alpha/interactpsql/pkg/minio"
	"github.com/Aleph-Alpha/interactpsql/pkg/postgres"
	"github.com/Aleph-Alpha/interactpsql/pkg/tracer"
	"go.uber.org/fx"
)

// Sections splits a Config into the per-package configs the other FX
// modules depend on.
type Sections struct {
	fx.Out

	Postgres postgres.Config
	Logger   logger.Config
	Metrics  metrics.Config
	Tracer   tracer.Config
	Minio    minio.Config
}

// Split returns the per-package sections of cfg.
func Split(cfg Config) Sections {
	return Sections{
		Postgres: cfg.Postgres,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
		Tracer:   cfg.Tracer,
		Minio:    cfg.Minio,
	}
}

// FXModule provides the sections of an already loaded Config.
//
//	cfg, err := config.Load()
//	...
//	fx.New(fx.Supply(cfg), config.FXModule, logger.FXModule, postgres.FXModule)
var FXModule = fx.Module("config",
	fx.Provide(Split),
)
