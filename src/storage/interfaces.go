package storage

import (
	"context"
	"database/sql"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// Execer runs statements that return no rows. *sql.DB and *sql.Tx satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ExecQuerier is needed by operations that both read and write, such as the
// upserts that return the stored row.
type ExecQuerier interface {
	Execer
	sqlscan.Querier
}
