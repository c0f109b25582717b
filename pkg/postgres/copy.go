package postgres

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// CopyOptions controls how a delimited file is streamed into a table.
type CopyOptions struct {
	// Columns selects the target columns in file order. When empty, every
	// table column is assumed to line up positionally with the file.
	Columns []string

	// Separator is the single-byte field delimiter. Zero means DefaultSeparator.
	Separator rune

	// Null overrides the string that represents NULL. Empty keeps the server
	// default (\N in text format, an unquoted empty field in CSV format).
	Null string

	// Header switches to CSV format with a header line, for files whose fields
	// are quoted. The default is PostgreSQL's text format.
	Header bool
}

// statement renders the COPY ... FROM STDIN statement for table.
func (o CopyOptions) statement(table string) (string, error) {
	sep := o.Separator
	if sep == 0 {
		sep = DefaultSeparator
	}
	if sep > 0x7f || sep == '\n' || sep == '\r' {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeparator, sep)
	}

	var b strings.Builder
	b.WriteString("COPY ")
	b.WriteString(table)
	if len(o.Columns) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(o.Columns, ", "))
		b.WriteString(")")
	}

	b.WriteString(" FROM STDIN WITH (FORMAT ")
	if o.Header {
		b.WriteString("csv, HEADER true")
	} else {
		b.WriteString("text")
	}
	b.WriteString(", DELIMITER ")
	b.WriteString(QuoteLiteral(string(sep)))
	if o.Null != "" {
		b.WriteString(", NULL ")
		b.WriteString(QuoteLiteral(o.Null))
	}
	b.WriteString(")")

	return b.String(), nil
}

// ObjectSource opens objects held in external storage, such as a bucket.
type ObjectSource interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ImportCsv streams the file at path into table through the server's bulk
// copy facility and returns the number of rows copied. No INSERT statements
// are issued; the copy commits as a single statement.
func (p *Postgres) ImportCsv(ctx context.Context, path, table string, opts CopyOptions) (copied int64, err error) {
	if err := p.ensureOpen(); err != nil {
		return 0, err
	}

	ctx, op := p.startOperation(ctx, "import_csv", table, path)
	defer func() { op.finish(copied, err) }()

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return p.copyFrom(ctx, f, table, opts)
}

// ImportCsvReader is ImportCsv for an arbitrary stream.
func (p *Postgres) ImportCsvReader(ctx context.Context, r io.Reader, table string, opts CopyOptions) (copied int64, err error) {
	if err := p.ensureOpen(); err != nil {
		return 0, err
	}

	ctx, op := p.startOperation(ctx, "import_csv_reader", table, "")
	defer func() { op.finish(copied, err) }()

	return p.copyFrom(ctx, r, table, opts)
}

// ImportCsvObject is ImportCsv for an object opened from source.
func (p *Postgres) ImportCsvObject(ctx context.Context, source ObjectSource, key, table string, opts CopyOptions) (copied int64, err error) {
	if err := p.ensureOpen(); err != nil {
		return 0, err
	}

	ctx, op := p.startOperation(ctx, "import_csv_object", table, key)
	defer func() { op.finish(copied, err) }()

	obj, err := source.Open(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	defer obj.Close()

	return p.copyFrom(ctx, obj, table, opts)
}

func (p *Postgres) copyFrom(ctx context.Context, r io.Reader, table string, opts CopyOptions) (int64, error) {
	stmt, err := opts.statement(table)
	if err != nil {
		return 0, err
	}

	copied, err := p.cursor.CopyFrom(ctx, r, stmt)
	if err != nil {
		return copied, err
	}

	p.logger.InfoWithContext(ctx, "Copied rows into table", nil, map[string]interface{}{
		"table": table,
		"rows":  copied,
	})
	return copied, nil
}
