package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Aleph-Alpha/interactpsql/pkg/postgres"
)

const usage = `usage: interactpsql <command> [flags]

commands:
  read     -table T                      print every row of a table
  columns  -table T                      print information_schema.columns for a table
  exec     -query Q [-returning]         run a statement, printing RETURNING rows
  csv      -file F -table T [-columns a,b] [-sep ,] [-null S] [-header] [-object]
                                         bulk load a delimited file with COPY
  xlsx     -file F -table T -columns a,b [-sheet 0] [-header]
                                         insert the rows of one worksheet
`

var errMissingFlag = errors.New("missing required flag")

// errObjectStorageDisabled is returned by csv -object without MINIO_ENDPOINT.
var errObjectStorageDisabled = errors.New("object storage is not configured, set MINIO_ENDPOINT")

type options struct {
	command   string
	table     string
	query     string
	returning bool
	file      string
	columns   []string
	separator rune
	null      string
	header    bool
	object    bool
	sheet     int
}

// parseArgs parses the command name and its flags. -file may be left empty
// and filled from the configuration afterwards.
func parseArgs(args []string) (options, error) {
	if len(args) == 0 {
		return options{}, errors.New("no command given")
	}

	opts := options{command: args[0]}
	fs := flag.NewFlagSet(opts.command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var columns, sep string
	switch opts.command {
	case "read", "columns":
		fs.StringVar(&opts.table, "table", "", "table name")
	case "exec":
		fs.StringVar(&opts.query, "query", "", "statement to run")
		fs.BoolVar(&opts.returning, "returning", false, "print the rows produced by the statement")
	case "csv":
		fs.StringVar(&opts.file, "file", "", "file path, or object key with -object")
		fs.StringVar(&opts.table, "table", "", "target table")
		fs.StringVar(&columns, "columns", "", "comma separated target columns")
		fs.StringVar(&sep, "sep", string(postgres.DefaultSeparator), "single character field separator")
		fs.StringVar(&opts.null, "null", "", "NULL marker")
		fs.BoolVar(&opts.header, "header", false, "file is CSV with a header line")
		fs.BoolVar(&opts.object, "object", false, "read -file from object storage")
	case "xlsx":
		fs.StringVar(&opts.file, "file", "", "workbook path")
		fs.StringVar(&opts.table, "table", "", "target table")
		fs.StringVar(&columns, "columns", "", "comma separated target columns")
		fs.IntVar(&opts.sheet, "sheet", 0, "zero-based sheet index")
		fs.BoolVar(&opts.header, "header", false, "skip the first row")
	default:
		return options{}, fmt.Errorf("unknown command %q", opts.command)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return options{}, fmt.Errorf("%s: %w", opts.command, err)
	}

	opts.columns = splitColumns(columns)
	if opts.command == "csv" {
		r, size := utf8.DecodeRuneInString(sep)
		if size == 0 || size != len(sep) {
			return options{}, fmt.Errorf("%w: %q", postgres.ErrInvalidSeparator, sep)
		}
		opts.separator = r
	}

	return opts, opts.validate()
}

func (o options) validate() error {
	switch o.command {
	case "exec":
		if o.query == "" {
			return fmt.Errorf("%w: -query", errMissingFlag)
		}
	case "xlsx":
		if len(o.columns) == 0 {
			return fmt.Errorf("%w: -columns", errMissingFlag)
		}
		fallthrough
	default:
		if o.table == "" {
			return fmt.Errorf("%w: -table", errMissingFlag)
		}
	}
	return nil
}

func splitColumns(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	columns := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			columns = append(columns, p)
		}
	}
	return columns
}

// run executes one parsed command and writes its result to out.
func run(ctx context.Context, pg *postgres.Postgres, source postgres.ObjectSource, opts options, out io.Writer) error {
	switch opts.command {
	case "read":
		rows, err := pg.ReadAll(ctx, opts.table)
		if err != nil {
			return err
		}
		return printRows(out, rows)

	case "columns":
		rows, err := pg.GetColumnsInfo(ctx, opts.table)
		if err != nil {
			return err
		}
		return printRows(out, rows)

	case "exec":
		if !opts.returning {
			return pg.ExecuteWrite(ctx, opts.query)
		}
		rows, err := pg.ExecuteWriteReturning(ctx, opts.query)
		if err != nil {
			return err
		}
		return printRows(out, rows)

	case "csv":
		if opts.file == "" {
			return fmt.Errorf("%w: -file (or FILENAME)", errMissingFlag)
		}
		copyOpts := postgres.CopyOptions{
			Columns:   opts.columns,
			Separator: opts.separator,
			Null:      opts.null,
			Header:    opts.header,
		}

		var copied int64
		var err error
		if opts.object {
			if source == nil {
				return errObjectStorageDisabled
			}
			copied, err = pg.ImportCsvObject(ctx, source, opts.file, opts.table, copyOpts)
		} else {
			copied, err = pg.ImportCsv(ctx, opts.file, opts.table, copyOpts)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "copied %d rows into %s\n", copied, opts.table)
		return err

	case "xlsx":
		if opts.file == "" {
			return fmt.Errorf("%w: -file (or FILENAME)", errMissingFlag)
		}
		report, err := pg.ImportSpreadsheet(ctx, opts.file, opts.sheet, opts.table, opts.columns, opts.header)
		if err != nil {
			return err
		}
		if err := printReport(out, opts.table, report); err != nil {
			return err
		}
		return report.Err()
	}

	return fmt.Errorf("unknown command %q", opts.command)
}

// printRows writes one tab separated line per row; NULL values print as NULL.
func printRows(out io.Writer, rows []postgres.Row) error {
	for _, row := range rows {
		fields := make([]string, len(row))
		for i, v := range row {
			switch val := v.(type) {
			case nil:
				fields[i] = "NULL"
			case []byte:
				fields[i] = string(val)
			default:
				fields[i] = fmt.Sprint(val)
			}
		}
		if _, err := fmt.Fprintln(out, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func printReport(out io.Writer, table string, report postgres.InsertReport) error {
	if _, err := fmt.Fprintf(out, "inserted %d rows into %s\n", len(report.Inserted), table); err != nil {
		return err
	}
	for _, m := range report.Mismatches {
		if _, err := fmt.Fprintf(out, "skipped: %s\n", m.Error()); err != nil {
			return err
		}
	}
	return nil
}
