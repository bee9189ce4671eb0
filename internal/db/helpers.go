package db

import (
	"context"
	"database/sql"
	"strings"
)

const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite"
)

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// HasTable reports whether table exists in the current schema. Lookup errors
// count as "missing".
func HasTable(ctx context.Context, q QueryRower, dialect, table string) bool {
	var query string
	switch NormalizeDialect(dialect) {
	case DialectSQLite:
		query = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? LIMIT 1`
	default:
		query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1`
	}

	var name sql.NullString
	if err := q.QueryRowContext(ctx, query, table).Scan(&name); err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// NormalizeDialect maps driver names onto the supported SQL dialects.
func NormalizeDialect(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DialectSQLite
	default:
		return DialectMySQL
	}
}
