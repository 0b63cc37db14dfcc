package warehouse

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/elee1766/naochat/src/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestWarehouse seeds a sqlite file and opens it as a warehouse.
func newTestWarehouse(t *testing.T) *Warehouse {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")

	seed, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = seed.Exec(`
		CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			order_date TEXT NOT NULL,
			total_revenue REAL,
			note BLOB
		);
		INSERT INTO orders (order_date, total_revenue, note) VALUES
			('2024-01-01', 10.5, 'first'),
			('2024-01-02', 20, NULL),
			('2024-01-03', 30, NULL);
		CREATE VIEW daily AS SELECT order_date, SUM(total_revenue) AS revenue FROM orders GROUP BY order_date;
	`)
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	w, err := Open(config.WarehouseConfig{Name: "shop", Driver: config.DriverSQLite, DSN: path})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	w := newTestWarehouse(t)

	res, err := w.Query(ctx, "SELECT order_date, total_revenue, note FROM orders ORDER BY id", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"order_date", "total_revenue", "note"}, res.Columns)
	require.Len(t, res.Rows, 3)
	assert.False(t, res.Truncated)
	assert.Equal(t, "2024-01-01", res.Rows[0]["order_date"])
	assert.Equal(t, 10.5, res.Rows[0]["total_revenue"])
	assert.Equal(t, "first", res.Rows[0]["note"])
	assert.Nil(t, res.Rows[1]["note"])

	res, err = w.Query(ctx, "SELECT * FROM orders", 2)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.True(t, res.Truncated)

	res, err = w.Query(ctx, "SELECT * FROM orders WHERE id < 0", 10)
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestQueryIsReadOnly(t *testing.T) {
	ctx := context.Background()
	w := newTestWarehouse(t)

	_, err := w.Query(ctx, "DELETE FROM orders", 0)
	assert.ErrorIs(t, err, ErrNotReadOnly)

	// The guard can be bypassed by a CTE, the connection cannot.
	_, err = w.Query(ctx, "WITH x AS (SELECT 1) INSERT INTO orders (order_date) SELECT '2024-02-01' FROM x", 0)
	assert.Error(t, err)

	res, err := w.Query(ctx, "SELECT COUNT(*) AS n FROM orders", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Rows[0]["n"])
}

func TestCheckReadOnly(t *testing.T) {
	tests := []struct {
		query string
		ok    bool
	}{
		{"SELECT 1", true},
		{"  select * from t;  ", true},
		{"-- top customers\nSELECT * FROM t", true},
		{"/* note */ WITH a AS (SELECT 1) SELECT * FROM a", true},
		{"SELECT ';' AS semi", true},
		{"EXPLAIN SELECT 1", true},
		{"", false},
		{"-- only a comment", false},
		{"DROP TABLE t", false},
		{"SELECT 1; DELETE FROM t", false},
		{"update t set a = 1", false},
		{"WITH x AS (SELECT 1 AS a) DELETE FROM t WHERE 1 = 1", false},
		{"with x as (select 1) insert into t select * from x", false},
		{"SELECT * INTO backup FROM t", false},
		{"SELECT 'drop table t' AS note, [update] FROM t", true},
		{`SELECT "delete" FROM t`, true},
		{"SELECT updated_at, created_by FROM t", true},
	}
	for _, tt := range tests {
		err := CheckReadOnly(tt.query)
		if tt.ok {
			assert.NoError(t, err, tt.query)
		} else {
			assert.ErrorIs(t, err, ErrNotReadOnly, tt.query)
		}
	}
}

func TestDescribe(t *testing.T) {
	ctx := context.Background()
	w := newTestWarehouse(t)

	schemas, err := w.ListSchemas(ctx)
	require.NoError(t, err)
	assert.Contains(t, schemas, "main")

	tables, err := w.ListTables(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"daily", "orders"}, tables)

	cols, err := w.Columns(ctx, "main", "orders")
	require.NoError(t, err)
	require.Len(t, cols, 4)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, 1, cols[0].PK)
	assert.Equal(t, "order_date", cols[1].Name)
	assert.True(t, cols[1].NotNull)
	assert.Equal(t, "REAL", cols[2].Type)

	preview, err := w.Preview(ctx, "main", "orders", 2)
	require.NoError(t, err)
	assert.Len(t, preview.Rows, 2)
}

func TestSet(t *testing.T) {
	var empty *Set
	_, err := empty.Get("")
	assert.ErrorIs(t, err, ErrNoWarehouse)

	w := newTestWarehouse(t)
	s := NewSet(w)

	got, err := s.Get("")
	require.NoError(t, err)
	assert.Equal(t, "shop", got.Name)

	_, err = s.Get("crm")
	assert.ErrorIs(t, err, ErrUnknownWarehouse)
	assert.Equal(t, []string{"shop"}, s.Names())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.WarehouseConfig{Name: "x", Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestDialectQuoting(t *testing.T) {
	assert.Equal(t, `SELECT * FROM "main"."we""ird" LIMIT 5`, sqliteDialect{}.previewQuery("main", `we"ird`, 5))
	assert.Equal(t, `SELECT TOP (5) * FROM [dbo].[odd]]name]`, sqlserverDialect{}.previewQuery("dbo", "odd]name", 5))
	assert.Equal(t, "file:/data/a.db?mode=ro&_pragma=query_only(1)&_pragma=busy_timeout(5000)", sqliteDialect{}.dsn("/data/a.db"))
}
