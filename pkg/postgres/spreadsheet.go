package postgres

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ImportSpreadsheet imports one sheet of the workbook at path into table.
//
// The sheet is chosen by zero-based index. Its column count (the widest row)
// must equal len(columns); otherwise nothing is imported and the report is
// Aborted with a single Mismatch whose Index is -1. When hasHeaderRow is set
// the first row is skipped.
//
// Each remaining row is converted positionally: text cells become quoted SQL
// literals, booleans TRUE/FALSE, empty cells NULL, and numbers are used as
// written. Date-formatted numeric cells are numbers too and arrive as Excel
// serial values; only ISO date cells (t="d") are quoted. Every row is then passed on its own to InsertMatching.
func (p *Postgres) ImportSpreadsheet(ctx context.Context, path string, sheetIndex int, table string, columns []string, hasHeaderRow bool) (report InsertReport, err error) {
	if err := p.ensureOpen(); err != nil {
		return InsertReport{}, err
	}

	ctx, op := p.startOperation(ctx, "import_spreadsheet", table, path)
	defer func() { op.finish(int64(len(report.Inserted)), err) }()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return InsertReport{}, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheetIndex < 0 || sheetIndex >= len(sheets) {
		return InsertReport{}, fmt.Errorf("%w: index %d, workbook has %d sheets", ErrSheetNotFound, sheetIndex, len(sheets))
	}
	sheet := sheets[sheetIndex]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return InsertReport{}, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	ncols := sheetWidth(rows)
	if ncols != len(columns) {
		report.Aborted = true
		report.Mismatches = []Mismatch{{Index: -1, Expected: len(columns), Actual: ncols}}
		p.logger.WarnWithContext(ctx, "The number of sheet columns doesn't match the number of columns", nil, map[string]interface{}{
			"table":         table,
			"sheet":         sheet,
			"sheet_columns": ncols,
			"columns":       len(columns),
		})
		return report, nil
	}

	first := 0
	if hasHeaderRow {
		first = 1
	}

	for r := first; r < len(rows); r++ {
		values, err := sheetRowValues(f, sheet, r, rows[r], ncols)
		if err != nil {
			return report, err
		}

		rowReport, err := p.InsertMatching(ctx, table, columns, SingleRow(values...))
		report.merge(rowReport, r)
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

// sheetWidth returns the length of the widest row.
func sheetWidth(rows [][]string) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// sheetRowValues renders row r of sheet as SQL value fragments, padded to ncols.
func sheetRowValues(f *excelize.File, sheet string, r int, row []string, ncols int) ([]string, error) {
	values := make([]string, ncols)
	for c := 0; c < ncols; c++ {
		var raw string
		if c < len(row) {
			raw = row[c]
		}

		cell, err := excelize.CoordinatesToCellName(c+1, r+1)
		if err != nil {
			return nil, err
		}
		cellType, err := f.GetCellType(sheet, cell)
		if err != nil {
			return nil, fmt.Errorf("failed to read type of cell %s: %w", cell, err)
		}

		values[c] = cellLiteral(cellType, raw)
	}
	return values, nil
}

// cellLiteral converts a raw cell value into the fragment placed in the INSERT.
func cellLiteral(cellType excelize.CellType, raw string) string {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeDate, excelize.CellTypeError:
		return QuoteLiteral(raw)
	case excelize.CellTypeBool:
		if raw == "1" || raw == "TRUE" || raw == "true" {
			return "TRUE"
		}
		return "FALSE"
	}

	if raw == "" {
		return "NULL"
	}
	return raw
}
