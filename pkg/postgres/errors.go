package postgres

import (
	"database/sql"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common errors that can be used by consumers of this package.
// Operations return driver errors unmodified; use TranslateError to map them
// onto these sentinels.
var (
	// ErrClosed is returned by every operation invoked after Close.
	ErrClosed = errors.New("handle closed")

	// ErrConnectionFailed wraps failures to establish the session.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrShapeMismatch marks rows whose length differs from the column list,
	// or sheets whose column count differs from it.
	ErrShapeMismatch = errors.New("the length of columns and values don't match")

	// ErrSheetNotFound is returned when a spreadsheet has no sheet at the requested index.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrInvalidSeparator is returned when a COPY separator is not a single-byte character.
	ErrInvalidSeparator = errors.New("separator must be a single-byte character")

	// ErrDuplicateKey is returned when an insert or update violates a unique constraint
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrForeignKey is returned when an operation violates a foreign key constraint
	ErrForeignKey = errors.New("foreign key violation")

	// ErrInvalidData is returned when a value is rejected by its column type or a check constraint
	ErrInvalidData = errors.New("invalid data")

	// ErrUndefinedTable is returned when a statement references a missing table
	ErrUndefinedTable = errors.New("undefined table")
)

// SQLSTATE codes mapped by TranslateError.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
	codeStringTooLong       = "22001"
	codeUndefinedTable      = "42P01"
	classConnection         = "08"
)

// TranslateError converts driver errors into the package sentinels.
// If an error doesn't match any known type, it's returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrConnDone) {
		return ErrClosed
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return ErrDuplicateKey
	case codeForeignKeyViolation:
		return ErrForeignKey
	case codeNotNullViolation, codeCheckViolation, codeInvalidText, codeStringTooLong:
		return ErrInvalidData
	case codeUndefinedTable:
		return ErrUndefinedTable
	}

	return err
}

// ErrorCategory groups errors by how the caller should react to them.
type ErrorCategory int

const (
	CategoryUnknown ErrorCategory = iota
	// CategoryConnection covers failures to establish or keep the session.
	CategoryConnection
	// CategoryStatement covers errors the server raised for a statement.
	CategoryStatement
	// CategoryShapeMismatch covers column/value length mismatches.
	CategoryShapeMismatch
	// CategoryClosed covers use after Close.
	CategoryClosed
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryConnection:
		return "connection"
	case CategoryStatement:
		return "statement"
	case CategoryShapeMismatch:
		return "shape_mismatch"
	case CategoryClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// GetErrorCategory returns the category of the given error.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	switch {
	case errors.Is(err, ErrClosed), errors.Is(err, sql.ErrConnDone):
		return CategoryClosed
	case errors.Is(err, ErrShapeMismatch):
		return CategoryShapeMismatch
	case errors.Is(err, ErrConnectionFailed):
		return CategoryConnection
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, classConnection) {
			return CategoryConnection
		}
		return CategoryStatement
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return CategoryConnection
	}

	return CategoryUnknown
}
