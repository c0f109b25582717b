// Command interactpsql runs one facade operation against a PostgreSQL
// database configured through DB_* environment variables (or a .env file).
//
//	interactpsql read    -table users
//	interactpsql columns -table users
//	interactpsql exec    -query "UPDATE users SET active = true RETURNING id" -returning
//	interactpsql csv     -file users.csv -table users -columns id,name -sep ';'
//	interactpsql csv     -file exports/users.csv -object -table users
//	interactpsql xlsx    -file users.xlsx -table users -columns id,name -sheet 0 -header
//
// -file defaults to FILENAME.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Aleph-Alpha/interactpsql/pkg/config"
	"github.com/Aleph-Alpha/interactpsql/pkg/logger"
	"github.com/Aleph-Alpha/interactpsql/pkg/metrics"
	"github.com/Aleph-Alpha/interactpsql/pkg/minio"
	"github.com/Aleph-Alpha/interactpsql/pkg/postgres"
	"github.com/Aleph-Alpha/interactpsql/pkg/tracer"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.file == "" {
		opts.file = cfg.Filename
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, cfg, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// dependencies are the components a command needs from the fx container.
type dependencies struct {
	fx.In

	Postgres *postgres.Postgres
	Tracer   *tracer.Tracer
	Logger   *logger.Logger
	Source   postgres.ObjectSource `optional:"true"`
}

// execute starts the application, runs the command and stops the
// application again, closing the database session.
func execute(ctx context.Context, cfg config.Config, opts options) (err error) {
	var deps dependencies

	modules := []fx.Option{
		fx.Supply(cfg),
		config.FXModule,
		logger.FXModule,
		tracer.FXModule,
		metrics.FXModule,
		postgres.FXModule,
		fx.Provide(func(log *logger.Logger) postgres.Logger { return log }),
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Zap}
		}),
		fx.Invoke(func(d dependencies) { deps = d }),
	}
	if cfg.Minio.Enabled() {
		modules = append(modules, minio.FXModule)
	}

	app := fx.New(modules...)
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := app.Stop(context.Background()); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	ctx = deps.Tracer.SetCarrierOnContext(ctx, map[string]string{
		"traceparent": os.Getenv("TRACEPARENT"),
		"tracestate":  os.Getenv("TRACESTATE"),
	})
	ctx, span := deps.Tracer.StartSpan(ctx, "interactpsql."+opts.command)
	defer span.End()
	deps.Tracer.SetAttributes(span, map[string]interface{}{
		"table": opts.table,
		"file":  opts.file,
	})

	if err = run(ctx, deps.Postgres, deps.Source, opts, os.Stdout); err != nil {
		deps.Tracer.RecordErrorOnSpan(span, err)
		deps.Logger.ErrorWithContext(ctx, "Command failed", err, map[string]interface{}{
			"command": opts.command,
		})
	}
	return err
}
