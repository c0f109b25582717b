package postgres

import (
	"context"
	"fmt"
	"strings"
)

const insertQuery = "INSERT INTO %s (%s) VALUES (%s) RETURNING *"

// RowBatch is the set of rows handed to the insert operations: either many
// rows or one flat row. Build it with Rows or SingleRow.
//
// Values are SQL text fragments placed verbatim into the statement, so text
// must already be quoted ("'Alice'"); QuoteLiteral does that safely. Values
// that come from untrusted input and are not quoted are an injection risk.
type RowBatch struct {
	rows   [][]string
	single bool
}

// Rows builds a batch of several rows.
func Rows(rows [][]string) RowBatch {
	return RowBatch{rows: rows}
}

// SingleRow builds a batch holding one flat row.
func SingleRow(values ...string) RowBatch {
	return RowBatch{rows: [][]string{values}, single: true}
}

// Len returns the number of rows in the batch.
func (b RowBatch) Len() int {
	return len(b.rows)
}

// IsSingle reports whether the batch was built with SingleRow.
func (b RowBatch) IsSingle() bool {
	return b.single
}

// Mismatch describes a row whose length differs from the column list.
type Mismatch struct {
	// Index is the position of the row in the batch, or the data row number
	// for spreadsheet imports. It is -1 when the whole sheet was rejected.
	Index    int
	Expected int
	Actual   int
}

func (m Mismatch) Error() string {
	if m.Index < 0 {
		return fmt.Sprintf("sheet has %d columns, expected %d", m.Actual, m.Expected)
	}
	return fmt.Sprintf("row %d has %d values, expected %d", m.Index, m.Actual, m.Expected)
}

func (m Mismatch) Unwrap() error {
	return ErrShapeMismatch
}

// InsertReport is the outcome of an insert operation.
type InsertReport struct {
	// Inserted holds the RETURNING rows of every executed INSERT, in order.
	Inserted []Row

	// Mismatches lists the rows that were refused because of their length.
	Mismatches []Mismatch

	// Aborted is set when the whole batch was refused and nothing was inserted.
	Aborted bool
}

// Err returns nil when every row was accepted, otherwise an error matching
// ErrShapeMismatch that lists the refused rows.
func (r InsertReport) Err() error {
	if len(r.Mismatches) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(r.Mismatches))
	for _, m := range r.Mismatches {
		msgs = append(msgs, m.Error())
	}
	return fmt.Errorf("%w: %s", ErrShapeMismatch, strings.Join(msgs, "; "))
}

// merge appends other, renumbering its mismatches to index.
func (r *InsertReport) merge(other InsertReport, index int) {
	r.Inserted = append(r.Inserted, other.Inserted...)
	for _, m := range other.Mismatches {
		m.Index = index
		r.Mismatches = append(r.Mismatches, m)
	}
}

// InsertMatching inserts every row of batch into table, provided that all rows
// have exactly len(columns) values. If any row does not, nothing is inserted:
// the mismatch is logged and reported with Aborted set, and the error is nil.
//
// Otherwise each row is sent as its own INSERT ... RETURNING * statement,
// committed immediately; its returned rows are logged and collected in the
// report. A statement error stops the loop and is returned together with the
// rows inserted so far.
func (p *Postgres) InsertMatching(ctx context.Context, table string, columns []string, batch RowBatch) (report InsertReport, err error) {
	if err := p.ensureOpen(); err != nil {
		return InsertReport{}, err
	}

	ctx, op := p.startOperation(ctx, "insert_matching", table, "")
	defer func() { op.finish(int64(len(report.Inserted)), err) }()

	for i, row := range batch.rows {
		if len(row) != len(columns) {
			report.Mismatches = append(report.Mismatches, Mismatch{Index: i, Expected: len(columns), Actual: len(row)})
		}
	}

	if len(report.Mismatches) > 0 {
		report.Aborted = true
		p.logger.WarnWithContext(ctx, "The length of columns and values don't match at least for one element", nil, map[string]interface{}{
			"table":      table,
			"columns":    len(columns),
			"mismatches": len(report.Mismatches),
		})
		return report, nil
	}

	columnList := strings.Join(columns, ", ")
	for i, row := range batch.rows {
		records, err := p.insertRow(ctx, table, columnList, row)
		if err != nil {
			return report, err
		}
		report.Inserted = append(report.Inserted, records...)
		p.logOutput(ctx, table, i, records)
	}

	return report, nil
}

// InsertSkipping inserts the rows of batch that have exactly len(columns)
// values, one statement per row, each committed immediately. Rows of any other
// length are skipped, logged and listed in the report's Mismatches. Rows
// already inserted stay committed if a later statement fails.
func (p *Postgres) InsertSkipping(ctx context.Context, table string, columns []string, batch RowBatch) (report InsertReport, err error) {
	if err := p.ensureOpen(); err != nil {
		return InsertReport{}, err
	}

	ctx, op := p.startOperation(ctx, "insert_skipping", table, "")
	defer func() { op.finish(int64(len(report.Inserted)), err) }()

	columnList := strings.Join(columns, ", ")
	for i, row := range batch.rows {
		if len(row) != len(columns) {
			m := Mismatch{Index: i, Expected: len(columns), Actual: len(row)}
			report.Mismatches = append(report.Mismatches, m)
			p.logger.WarnWithContext(ctx, "Fail - the length of columns and values tuples doesn't match", nil, map[string]interface{}{
				"table":    table,
				"row":      i,
				"expected": m.Expected,
				"actual":   m.Actual,
			})
			continue
		}

		records, err := p.insertRow(ctx, table, columnList, row)
		if err != nil {
			return report, err
		}
		report.Inserted = append(report.Inserted, records...)
		p.logOutput(ctx, table, i, records)
	}

	return report, nil
}

func (p *Postgres) insertRow(ctx context.Context, table, columnList string, values []string) ([]Row, error) {
	return p.cursor.Query(ctx, buildInsert(table, columnList, values))
}

// buildInsert renders the INSERT ... RETURNING * statement for one row.
func buildInsert(table, columnList string, values []string) string {
	return fmt.Sprintf(insertQuery, table, columnList, strings.Join(values, ", "))
}

func (p *Postgres) logOutput(ctx context.Context, table string, row int, records []Row) {
	p.logger.InfoWithContext(ctx, "Output", nil, map[string]interface{}{
		"table":   table,
		"row":     row,
		"records": records,
	})
}
