// Package warehouse runs read-only queries against the analytics databases
// the agent is allowed to use, and describes their schemas.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/elee1766/naochat/src/config"
	"github.com/georgysavva/scany/v2/sqlscan"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

var (
	ErrNotReadOnly      = errors.New("only read queries are allowed")
	ErrUnknownWarehouse = errors.New("unknown warehouse")
	ErrNoWarehouse      = errors.New("no warehouse is configured")
)

// Column describes one column of a table.
type Column struct {
	Name    string `db:"name"`
	Type    string `db:"type"`
	NotNull bool   `db:"not_null"`
	PK      int    `db:"pk"`
}

// Result is the outcome of a query. Rows are keyed by column name and
// Columns keeps the result order.
type Result struct {
	Columns   []string
	Rows      []map[string]any
	Truncated bool
}

// Warehouse is one configured database.
type Warehouse struct {
	Name    string
	Driver  string
	db      *sql.DB
	dialect dialect
}

// Open connects to a warehouse. The connection is verified lazily, on first
// use.
func Open(cfg config.WarehouseConfig) (*Warehouse, error) {
	d, ok := dialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported warehouse driver %q", cfg.Driver)
	}
	db, err := sql.Open(d.driverName(), d.dsn(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse %s: %w", cfg.Name, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Warehouse{Name: cfg.Name, Driver: cfg.Driver, db: db, dialect: d}, nil
}

// Close closes the connection pool.
func (w *Warehouse) Close() error {
	return w.db.Close()
}

// Ping checks connectivity.
func (w *Warehouse) Ping(ctx context.Context) error {
	return w.db.PingContext(ctx)
}

// Query runs a read-only query and returns at most maxRows rows. A
// non-positive maxRows returns every row.
func (w *Warehouse) Query(ctx context.Context, query string, maxRows int) (*Result, error) {
	if err := CheckReadOnly(query); err != nil {
		return nil, err
	}
	return w.query(ctx, maxRows, query)
}

func (w *Warehouse) query(ctx context.Context, maxRows int, query string, args ...any) (*Result, error) {
	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: columns, Rows: []map[string]any{}}
	scanner := sqlscan.NewRowScanner(rows)
	for rows.Next() {
		if maxRows > 0 && len(result.Rows) >= maxRows {
			result.Truncated = true
			break
		}
		row := map[string]any{}
		if err := scanner.Scan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for k, v := range row {
			row[k] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListSchemas returns the schema names of the warehouse.
func (w *Warehouse) ListSchemas(ctx context.Context) ([]string, error) {
	var out []string
	if err := sqlscan.Select(ctx, w.db, &out, w.dialect.schemasQuery()); err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	return out, nil
}

// ListTables returns the tables and views of a schema.
func (w *Warehouse) ListTables(ctx context.Context, schema string) ([]string, error) {
	query, args := w.dialect.tablesQuery(schema)
	var out []string
	if err := sqlscan.Select(ctx, w.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tables of %s: %w", schema, err)
	}
	return out, nil
}

// Columns returns the columns of a table in declaration order.
func (w *Warehouse) Columns(ctx context.Context, schema, table string) ([]Column, error) {
	query, args := w.dialect.columnsQuery(schema, table)
	var out []Column
	if err := sqlscan.Select(ctx, w.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to describe %s.%s: %w", schema, table, err)
	}
	return out, nil
}

// Preview returns the first n rows of a table.
func (w *Warehouse) Preview(ctx context.Context, schema, table string, n int) (*Result, error) {
	return w.query(ctx, n, w.dialect.previewQuery(schema, table, n))
}

// normalizeValue turns driver values into JSON-friendly ones.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		if utf8.Valid(val) {
			return string(val)
		}
		return fmt.Sprintf("%x", val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	}
	return v
}

// CheckReadOnly rejects statements other than a single query. It is a guard
// for the model, not a security boundary; sqlite warehouses are additionally
// opened query-only.
func CheckReadOnly(query string) error {
	q := strings.TrimSpace(stripComments(query))
	q = strings.TrimRight(q, "; \t\n")
	if q == "" {
		return fmt.Errorf("%w: empty query", ErrNotReadOnly)
	}
	if strings.Contains(q, ";") {
		return fmt.Errorf("%w: multiple statements", ErrNotReadOnly)
	}
	words := sqlWords(q)
	if len(words) == 0 {
		return fmt.Errorf("%w: empty query", ErrNotReadOnly)
	}
	switch words[0] {
	case "select", "with", "explain", "values", "show", "describe":
	default:
		return fmt.Errorf("%w: %s statements are not permitted", ErrNotReadOnly, strings.ToUpper(words[0]))
	}
	// CTEs and SELECT INTO can still carry writes past the leading keyword.
	for _, w := range words[1:] {
		if writeKeywords[w] {
			return fmt.Errorf("%w: %s is not permitted", ErrNotReadOnly, strings.ToUpper(w))
		}
	}
	return nil
}

var writeKeywords = map[string]bool{
	"insert": true, "update": true, "delete": true, "merge": true,
	"upsert": true, "into": true, "drop": true, "create": true,
	"alter": true, "truncate": true, "grant": true, "revoke": true,
	"exec": true, "execute": true, "attach": true, "detach": true,
	"pragma": true, "vacuum": true, "reindex": true, "call": true,
}

// sqlWords lowercases the bare words of a comment-free query. Quoted
// identifiers ("x", [x], `x`) and string literals are skipped.
func sqlWords(q string) []string {
	var words []string
	for i := 0; i < len(q); {
		c := q[i]
		switch {
		case c == '\'' || c == '"' || c == '`' || c == '[':
			closer := c
			if c == '[' {
				closer = ']'
			}
			end := strings.IndexByte(q[i+1:], closer)
			if end < 0 {
				return words
			}
			i += end + 2
		case isWordByte(c):
			j := i
			for j < len(q) && isWordByte(q[j]) {
				j++
			}
			words = append(words, strings.ToLower(q[i:j]))
			i = j
		default:
			i++
		}
	}
	return words
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func stripComments(query string) string {
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		switch {
		case strings.HasPrefix(query[i:], "--"):
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end
			b.WriteByte('\n')
		case strings.HasPrefix(query[i:], "/*"):
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
			b.WriteByte(' ')
		case query[i] == '\'':
			// keep string literals intact so a ';' inside one is not a separator
			end := strings.IndexByte(query[i+1:], '\'')
			if end < 0 {
				b.WriteString(query[i:])
				return b.String()
			}
			b.WriteString("''")
			i += end + 1
		default:
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

// Set is the configured warehouses, in configuration order.
type Set struct {
	order  []string
	byName map[string]*Warehouse
}

// OpenAll opens every configured warehouse.
func OpenAll(cfgs []config.WarehouseConfig, logger *slog.Logger) (*Set, error) {
	s := &Set{byName: make(map[string]*Warehouse, len(cfgs))}
	for _, cfg := range cfgs {
		w, err := Open(cfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Add(w)
		logger.Info("warehouse configured", "name", cfg.Name, "driver", cfg.Driver)
	}
	return s, nil
}

// NewSet builds a Set from open warehouses.
func NewSet(ws ...*Warehouse) *Set {
	s := &Set{byName: make(map[string]*Warehouse, len(ws))}
	for _, w := range ws {
		s.Add(w)
	}
	return s
}

// Add registers w, replacing any warehouse of the same name.
func (s *Set) Add(w *Warehouse) {
	if _, ok := s.byName[w.Name]; !ok {
		s.order = append(s.order, w.Name)
	}
	s.byName[w.Name] = w
}

// Get returns the named warehouse, or the first configured one when name is
// empty.
func (s *Set) Get(name string) (*Warehouse, error) {
	if s == nil || len(s.order) == 0 {
		return nil, ErrNoWarehouse
	}
	if name == "" {
		return s.byName[s.order[0]], nil
	}
	w, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownWarehouse, name, strings.Join(s.order, ", "))
	}
	return w, nil
}

// Names returns the warehouse names in configuration order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// All returns the warehouses in configuration order.
func (s *Set) All() []*Warehouse {
	if s == nil {
		return nil
	}
	out := make([]*Warehouse, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// Close closes every warehouse.
func (s *Set) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, w := range s.byName {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
