package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// inPlaceholders renders an Oracle positional bind list, e.g.
// inPlaceholders(1, 3) -> ":1, :2, :3". start is the first bind ordinal.
func inPlaceholders(start, count int) string {
	parts := make([]string, count)
	for i := 0; i < count; i++ {
		parts[i] = fmt.Sprintf(":%d", start+i)
	}
	return strings.Join(parts, ", ")
}
