package postgres

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DB returns the GORM handle bound to the facade's session.
// This is for cases where direct access to GORM is needed. It is nil for
// facades built around a custom Cursor.
func (p *Postgres) DB() *gorm.DB {
	return p.client
}

// Cursor returns the statement executor bound to the facade's session.
// After Close its methods return ErrClosed.
func (p *Postgres) Cursor() Cursor {
	return p.cursor
}

// QuoteLiteral renders s as a SQL string literal, doubling embedded quotes and
// switching to the E'' form when s contains backslashes.
func QuoteLiteral(s string) string {
	return pq.QuoteLiteral(s)
}
