package postgres

import (
	"context"
	"fmt"
)

const (
	readQuery        = "SELECT * FROM %s"
	columnsInfoQuery = "SELECT * FROM information_schema.columns WHERE table_name = %s"
)

// ExecuteRead runs query verbatim and fetches all resulting rows.
// The caller is responsible for the correctness and safety of the SQL text.
func (p *Postgres) ExecuteRead(ctx context.Context, query string) (rows []Row, err error) {
	if err := p.ensureOpen(); err != nil {
		return nil, err
	}

	ctx, op := p.startOperation(ctx, "execute_read", "", "")
	defer func() { op.finish(int64(len(rows)), err) }()

	return p.cursor.Query(ctx, query)
}

// ExecuteWrite runs query verbatim. The statement commits when it completes.
func (p *Postgres) ExecuteWrite(ctx context.Context, query string) (err error) {
	if err := p.ensureOpen(); err != nil {
		return err
	}

	var affected int64
	ctx, op := p.startOperation(ctx, "execute_write", "", "")
	defer func() { op.finish(affected, err) }()

	affected, err = p.cursor.Exec(ctx, query)
	return err
}

// ExecuteWriteReturning runs query verbatim, commits it and returns the rows it
// produced, typically through a RETURNING clause.
func (p *Postgres) ExecuteWriteReturning(ctx context.Context, query string) (rows []Row, err error) {
	if err := p.ensureOpen(); err != nil {
		return nil, err
	}

	ctx, op := p.startOperation(ctx, "execute_write_returning", "", "")
	defer func() { op.finish(int64(len(rows)), err) }()

	return p.cursor.Query(ctx, query)
}

// GetColumnsInfo returns the raw information_schema.columns rows of table.
func (p *Postgres) GetColumnsInfo(ctx context.Context, table string) (rows []Row, err error) {
	if err := p.ensureOpen(); err != nil {
		return nil, err
	}

	ctx, op := p.startOperation(ctx, "get_columns_info", table, "")
	defer func() { op.finish(int64(len(rows)), err) }()

	return p.cursor.Query(ctx, fmt.Sprintf(columnsInfoQuery, QuoteLiteral(table)))
}

// ReadAll returns every row of table. The result is not paginated.
func (p *Postgres) ReadAll(ctx context.Context, table string) (rows []Row, err error) {
	if err := p.ensureOpen(); err != nil {
		return nil, err
	}

	ctx, op := p.startOperation(ctx, "read_all", table, "")
	defer func() { op.finish(int64(len(rows)), err) }()

	return p.cursor.Query(ctx, fmt.Sprintf(readQuery, table))
}
