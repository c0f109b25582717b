// Package postgres provides a thin convenience facade over a single PostgreSQL
// session.
//
// A Postgres value owns one connection and one Cursor bound to it. It runs raw
// SQL, reads whole tables, inserts rows after checking that every row has as
// many values as there are columns, bulk-loads delimited files through COPY and
// imports spreadsheet sheets row by row. Statements are built as strings and
// run sequentially; each write commits on completion. There is no pooling,
// retry or transaction control.
//
// Basic Usage:
//
//	db, err := postgres.NewPostgres(ctx, postgres.Config{
//		Connection: postgres.Connection{
//			Host:     "localhost",
//			Port:     "5432",
//			User:     "postgres",
//			Password: "secret",
//			DbName:   "shop",
//			SSLMode:  "disable",
//		},
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	rows, err := db.ReadAll(ctx, "customers")
//
// Inserting:
//
// Values are SQL fragments placed verbatim in the statement. Quote text
// yourself, or with QuoteLiteral:
//
//	report, err := db.InsertMatching(ctx, "customers", []string{"id", "name"},
//		postgres.Rows([][]string{{"1", postgres.QuoteLiteral("Alice")}}))
//
// InsertMatching refuses the whole batch when any row has the wrong length;
// InsertSkipping only skips the offending rows. Both report refused rows in
// InsertReport.Mismatches and log a warning; neither returns an error for them.
//
// Bulk load:
//
//	n, err := db.ImportCsv(ctx, "customers.csv", "customers", postgres.CopyOptions{
//		Columns:   []string{"id", "name"},
//		Separator: ';',
//	})
//
//	report, err := db.ImportSpreadsheet(ctx, "customers.xlsx", 0, "customers",
//		[]string{"id", "name"}, true)
//
// Errors:
//
// Driver errors are returned unmodified. TranslateError maps them onto the
// package sentinels and GetErrorCategory classifies them. Any call after Close
// returns ErrClosed.
package postgres
