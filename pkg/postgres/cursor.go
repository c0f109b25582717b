package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/gorm"
)

// Row is one result row in column order, holding the values produced by the driver.
type Row []any

// Cursor executes statements on the facade's single session.
// Calls must not overlap; the session is not safe for concurrent use.
type Cursor interface {
	// Query runs query verbatim and fetches every resulting row.
	Query(ctx context.Context, query string) ([]Row, error)

	// Exec runs query verbatim and returns the number of affected rows.
	Exec(ctx context.Context, query string) (int64, error)

	// CopyFrom streams r into the server using a COPY ... FROM STDIN statement.
	CopyFrom(ctx context.Context, r io.Reader, copyStatement string) (int64, error)

	Close() error
}

// pgCursor is the Cursor bound to the pinned *sql.Conn. Statements go through
// GORM; COPY goes through the raw pgx connection underneath. It shares the
// facade's closed flag, so calls after Postgres.Close fail with ErrClosed.
type pgCursor struct {
	client *gorm.DB
	conn   *sql.Conn
	closed *atomic.Bool
}

func (c *pgCursor) ensureOpen() error {
	if c.closed != nil && c.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (c *pgCursor) Query(ctx context.Context, query string) ([]Row, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	rows, err := c.client.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

func (c *pgCursor) Exec(ctx context.Context, query string) (int64, error) {
	if err := c.ensureOpen(); err != nil {
		return 0, err
	}
	result := c.client.WithContext(ctx).Exec(query)
	return result.RowsAffected, result.Error
}

func (c *pgCursor) CopyFrom(ctx context.Context, r io.Reader, copyStatement string) (int64, error) {
	if err := c.ensureOpen(); err != nil {
		return 0, err
	}
	var copied int64
	err := c.conn.Raw(func(driverConn any) error {
		stdConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection type %T", driverConn)
		}

		tag, err := stdConn.Conn().PgConn().CopyFrom(ctx, r, copyStatement)
		if err != nil {
			return err
		}
		copied = tag.RowsAffected()
		return nil
	})
	return copied, err
}

// Close releases nothing on its own: the session is owned by Postgres and
// closed right after the cursor.
func (c *pgCursor) Close() error {
	return nil
}

// RowsScanner is the subset of *sql.Rows used to materialize results.
type RowsScanner interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanRows reads every remaining row into memory.
func scanRows(rows RowsScanner) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make(Row, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, values)
	}

	return result, rows.Err()
}
