package warehouse

import (
	"fmt"
	"strings"

	"github.com/elee1766/naochat/src/config"
)

type dialect interface {
	driverName() string
	dsn(raw string) string
	schemasQuery() string
	tablesQuery(schema string) (string, []any)
	columnsQuery(schema, table string) (string, []any)
	previewQuery(schema, table string, n int) string
}

var dialects = map[string]dialect{
	config.DriverSQLite:    sqliteDialect{},
	config.DriverSQLServer: sqlserverDialect{},
}

type sqliteDialect struct{}

func (sqliteDialect) driverName() string { return "sqlite" }

// dsn opens plain paths read-only and forces query_only on every connection.
func (sqliteDialect) dsn(raw string) string {
	if !strings.HasPrefix(raw, "file:") {
		raw = "file:" + raw + "?mode=ro"
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "_pragma=query_only(1)&_pragma=busy_timeout(5000)"
}

func (sqliteDialect) schemasQuery() string {
	return `SELECT name FROM pragma_database_list ORDER BY seq`
}

func (sqliteDialect) tablesQuery(schema string) (string, []any) {
	return fmt.Sprintf(`SELECT name FROM %s.sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%%'
		ORDER BY name`, quoteSQLite(schema)), nil
}

func (sqliteDialect) columnsQuery(schema, table string) (string, []any) {
	return `SELECT name, type, "notnull" AS not_null, pk FROM pragma_table_info(?, ?) ORDER BY cid`, []any{table, schema}
}

func (sqliteDialect) previewQuery(schema, table string, n int) string {
	return fmt.Sprintf(`SELECT * FROM %s.%s LIMIT %d`, quoteSQLite(schema), quoteSQLite(table), n)
}

func quoteSQLite(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

type sqlserverDialect struct{}

func (sqlserverDialect) driverName() string { return "sqlserver" }

func (sqlserverDialect) dsn(raw string) string { return raw }

func (sqlserverDialect) schemasQuery() string {
	return `SELECT DISTINCT TABLE_SCHEMA FROM INFORMATION_SCHEMA.TABLES ORDER BY TABLE_SCHEMA`
}

func (sqlserverDialect) tablesQuery(schema string) (string, []any) {
	return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 ORDER BY TABLE_NAME`, []any{schema}
}

func (sqlserverDialect) columnsQuery(schema, table string) (string, []any) {
	return `SELECT c.COLUMN_NAME AS name,
			c.DATA_TYPE AS type,
			CAST(CASE WHEN c.IS_NULLABLE = 'NO' THEN 1 ELSE 0 END AS bit) AS not_null,
			COALESCE(k.ORDINAL_POSITION, 0) AS pk
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			ON tc.TABLE_SCHEMA = c.TABLE_SCHEMA AND tc.TABLE_NAME = c.TABLE_NAME AND tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		LEFT JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
			ON k.CONSTRAINT_NAME = tc.CONSTRAINT_NAME AND k.TABLE_SCHEMA = c.TABLE_SCHEMA
			AND k.TABLE_NAME = c.TABLE_NAME AND k.COLUMN_NAME = c.COLUMN_NAME
		WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
		ORDER BY c.ORDINAL_POSITION`, []any{schema, table}
}

func (sqlserverDialect) previewQuery(schema, table string, n int) string {
	return fmt.Sprintf(`SELECT TOP (%d) * FROM %s.%s`, n, quoteSQLServer(schema), quoteSQLServer(table))
}

func quoteSQLServer(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}
