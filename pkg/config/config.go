// Package config loads the process configuration from the environment.
//
// Values are read from optional .env files first (godotenv never overrides
// variables that are already set), then decoded with envconfig into one
// struct per package. Nothing is kept in package state: the returned Config
// is handed to constructors explicitly, or through FXModule.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/Aleph-Alpha/interactpsql/pkg/logger"
	"github.com/Aleph-Alpha/interactpsql/pkg/metrics"
	"github.com/Aleph-Alpha/interactpsql/pkg/minio"
	"github.com/Aleph-Alpha/interactpsql/pkg/postgres"
	"github.com/Aleph-Alpha/interactpsql/pkg/tracer"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultEnvFile is loaded when Load is called without explicit files.
const DefaultEnvFile = ".env"

// Config is the complete process configuration.
type Config struct {
	Postgres postgres.Config
	Logger   logger.Config
	Metrics  metrics.Config
	Tracer   tracer.Config
	Minio    minio.Config

	// Filename is the default input file for the csv and xlsx commands.
	Filename string `envconfig:"FILENAME"`
}

// Load reads envFiles (or DefaultEnvFile when none are given) into the
// process environment and decodes the environment into a Config.
//
// A missing DefaultEnvFile is not an error; a missing explicit file is.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("failed to load env files: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process configuration: %w", err)
	}
	return cfg, nil
}
