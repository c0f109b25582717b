package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Aleph-Alpha/interactpsql/pkg/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const tracerName = "github.com/Aleph-Alpha/interactpsql/pkg/postgres"

// Logger defines the interface for logging operations within the postgres package.
// Shape-mismatch reports and RETURNING outputs are written through it.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=postgres
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Postgres holds exactly one database session and one cursor bound to it.
//
// It is not safe for concurrent use: statements are issued sequentially on the
// pinned session and every write commits on completion. Only the closed flag is
// atomic, so Close followed by any other call reliably yields ErrClosed.
type Postgres struct {
	cfg      Config
	logger   Logger
	observer observability.Observer
	tracer   trace.Tracer

	pool   *sql.DB
	conn   *sql.Conn
	client *gorm.DB
	cursor Cursor

	closed atomic.Bool
}

// NewPostgres opens the session described by cfg and the cursor bound to it.
//
// The returned error wraps ErrConnectionFailed and the driver error when the
// server is unreachable or the credentials are rejected. Nothing is retried.
func NewPostgres(ctx context.Context, cfg Config, logger Logger) (*Postgres, error) {
	pool, conn, client, err := connectToPostgres(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to PostgresSQL database", nil, map[string]interface{}{
		"host":     cfg.Connection.Host,
		"port":     cfg.Connection.Port,
		"database": cfg.Connection.DbName,
	})

	p := newWithCursor(cfg, logger, nil)
	p.cursor = &pgCursor{client: client, conn: conn, closed: &p.closed}
	p.pool = pool
	p.conn = conn
	p.client = client
	return p, nil
}

// newWithCursor assembles a Postgres around an already opened cursor.
func newWithCursor(cfg Config, logger Logger, cursor Cursor) *Postgres {
	return &Postgres{
		cfg:    cfg,
		logger: logger,
		tracer: otel.Tracer(tracerName),
		cursor: cursor,
	}
}

// WithObserver attaches an observer notified after every operation.
// It returns the same instance for chaining.
func (p *Postgres) WithObserver(observer observability.Observer) *Postgres {
	p.observer = observer
	return p
}

// connectToPostgres opens a database/sql handle over the pgx driver limited to a
// single connection, pins that connection and binds a GORM session to it.
func connectToPostgres(ctx context.Context, postgresConfig Config) (*sql.DB, *sql.Conn, *gorm.DB, error) {
	connConfig, err := parseConnConfig(postgresConfig.Connection)
	if err != nil {
		return nil, nil, nil, err
	}

	pool := stdlib.OpenDB(*connConfig)
	pool.SetMaxOpenConns(1)
	pool.SetMaxIdleConns(1)
	pool.SetConnMaxLifetime(0)

	conn, err := pool.Conn(ctx)
	if err != nil {
		_ = pool.Close()
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = pool.Close()
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	client, err := gorm.Open(
		postgres.New(postgres.Config{Conn: conn}),
		&gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 gormlogger.Discard,
		})
	if err != nil {
		_ = conn.Close()
		_ = pool.Close()
		return nil, nil, nil, fmt.Errorf("failed to bind PostgresSQL session: %w", err)
	}

	return pool, conn, client, nil
}

// parseConnConfig builds the pgx settings for the session. Statements are
// sent with the simple protocol: nothing is prepared or cached server-side,
// so multi-statement text works and schema changes never invalidate a read.
func parseConnConfig(c Connection) (*pgx.ConnConfig, error) {
	connConfig, err := pgx.ParseConfig(connectionString(c))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid connection settings: %w", ErrConnectionFailed, err)
	}
	connConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	return connConfig, nil
}

// connectionString renders the libpq keyword/value form understood by pgx.
func connectionString(c Connection) string {
	pairs := []struct{ key, value string }{
		{"host", c.Host},
		{"port", c.Port},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.DbName},
		{"sslmode", c.SSLMode},
	}

	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		if kv.value == "" {
			continue
		}
		parts = append(parts, kv.key+"="+quoteConnValue(kv.value))
	}
	return strings.Join(parts, " ")
}

// quoteConnValue quotes a keyword/value connection parameter when it contains
// characters that would otherwise end the value.
func quoteConnValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Close closes the cursor, then the session, then the underlying handle.
// It is idempotent; every other method returns ErrClosed afterwards.
func (p *Postgres) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if p.cursor != nil {
		errs = append(errs, p.cursor.Close())
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
	}
	if p.pool != nil {
		errs = append(errs, p.pool.Close())
	}

	if err := errors.Join(errs...); err != nil {
		p.logger.Error("Failed to close PostgresSQL session", err)
		return err
	}

	p.logger.Info("Closed PostgresSQL session", nil)
	return nil
}

// ensureOpen returns ErrClosed once Close has been called.
func (p *Postgres) ensureOpen() error {
	if p.closed.Load() {
		return ErrClosed
	}
	return nil
}
