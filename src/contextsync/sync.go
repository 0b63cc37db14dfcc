// Package contextsync writes warehouse schema documentation into the project
// context folder, where the agent's file tools can find it.
//
// The layout is
//
//	databases/type=<driver>/database=<warehouse>/schema=<schema>/table=<table>/{columns,preview}.md
package contextsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/elee1766/naochat/src/warehouse"
	"github.com/spf13/afero"
)

// DatabasesDir is the folder under the context root holding synced schemas.
const DatabasesDir = "databases"

// PreviewRows is how many rows preview.md shows.
const PreviewRows = 10

// Describer is the part of a warehouse the sync reads.
type Describer interface {
	ListSchemas(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, schema string) ([]string, error)
	Columns(ctx context.Context, schema, table string) ([]warehouse.Column, error)
	Preview(ctx context.Context, schema, table string, n int) (*warehouse.Result, error)
}

// Source is a warehouse to document.
type Source struct {
	Name   string
	Driver string
	DB     Describer
}

// Stats counts what a sync wrote.
type Stats struct {
	Schemas int
	Tables  int
	Failed  []string
}

// Syncer writes schema docs for a set of sources.
type Syncer struct {
	fs     afero.Fs
	root   string
	logger *slog.Logger
}

func New(fs afero.Fs, root string, logger *slog.Logger) *Syncer {
	return &Syncer{fs: fs, root: filepath.Join(root, DatabasesDir), logger: logger.With("component", "contextsync")}
}

// FromWarehouses adapts a warehouse set to sources.
func FromWarehouses(set *warehouse.Set) []Source {
	var out []Source
	for _, w := range set.All() {
		out = append(out, Source{Name: w.Name, Driver: w.Driver, DB: w})
	}
	return out
}

// Sync documents every source and prunes folders of sources that are no
// longer configured. A source that fails is recorded in Stats.Failed and does
// not stop the others.
func (s *Syncer) Sync(ctx context.Context, sources []Source) (Stats, error) {
	var stats Stats
	for _, src := range sources {
		schemas, tables, err := s.syncSource(ctx, src)
		stats.Schemas += schemas
		stats.Tables += tables
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			s.logger.Error("failed to sync warehouse", "warehouse", src.Name, "error", err)
			stats.Failed = append(stats.Failed, src.Name)
		}
	}
	if err := s.RemoveUnused(sources); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Syncer) syncSource(ctx context.Context, src Source) (int, int, error) {
	dbPath := filepath.Join(s.root, "type="+src.Driver, "database="+src.Name)

	schemaNames, err := src.DB.ListSchemas(ctx)
	if err != nil {
		return 0, 0, err
	}

	schemas, tables := 0, 0
	for _, schema := range schemaNames {
		names, err := src.DB.ListTables(ctx, schema)
		if err != nil {
			s.logger.Warn("skipping schema", "warehouse", src.Name, "schema", schema, "error", err)
			continue
		}
		if len(names) == 0 {
			continue
		}
		schemas++

		for _, table := range names {
			if err := ctx.Err(); err != nil {
				return schemas, tables, err
			}
			tablePath := filepath.Join(dbPath, "schema="+schema, "table="+table)
			if err := s.fs.MkdirAll(tablePath, 0755); err != nil {
				return schemas, tables, fmt.Errorf("failed to create %s: %w", tablePath, err)
			}

			cols, err := src.DB.Columns(ctx, schema, table)
			if err != nil {
				return schemas, tables, err
			}
			if err := afero.WriteFile(s.fs, filepath.Join(tablePath, "columns.md"), []byte(ColumnsMarkdown(schema, table, cols)), 0644); err != nil {
				return schemas, tables, err
			}

			preview, err := src.DB.Preview(ctx, schema, table, PreviewRows)
			if err != nil {
				return schemas, tables, err
			}
			if err := afero.WriteFile(s.fs, filepath.Join(tablePath, "preview.md"), []byte(PreviewMarkdown(schema, table, preview)), 0644); err != nil {
				return schemas, tables, err
			}
			tables++
		}
	}
	s.logger.Info("warehouse synced", "warehouse", src.Name, "schemas", schemas, "tables", tables)
	return schemas, tables, nil
}

// RemoveUnused deletes type= and database= folders that no source maps to.
func (s *Syncer) RemoveUnused(sources []Source) error {
	valid := make(map[string]map[string]bool)
	for _, src := range sources {
		typeDir := "type=" + src.Driver
		if valid[typeDir] == nil {
			valid[typeDir] = make(map[string]bool)
		}
		valid[typeDir]["database="+src.Name] = true
	}

	typeDirs, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, typeDir := range typeDirs {
		if !typeDir.IsDir() {
			continue
		}
		typePath := filepath.Join(s.root, typeDir.Name())
		dbs, ok := valid[typeDir.Name()]
		if !ok {
			if err := s.fs.RemoveAll(typePath); err != nil {
				return err
			}
			s.logger.Info("removed unused database type", "path", typePath)
			continue
		}

		dbDirs, err := afero.ReadDir(s.fs, typePath)
		if err != nil {
			return err
		}
		for _, dbDir := range dbDirs {
			if !dbDir.IsDir() || dbs[dbDir.Name()] {
				continue
			}
			dbPath := filepath.Join(typePath, dbDir.Name())
			if err := s.fs.RemoveAll(dbPath); err != nil {
				return err
			}
			s.logger.Info("removed unused database", "path", dbPath)
		}
	}
	return nil
}

// ColumnsMarkdown renders the column listing of a table.
func ColumnsMarkdown(schema, table string, cols []warehouse.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n**Dataset:** `%s`\n\n## Columns (%d)\n\n", table, schema, len(cols))
	b.WriteString("| Column | Type | Nullable | Primary key |\n|---|---|---|---|\n")
	for _, c := range cols {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", c.Name, orDash(c.Type), yesNo(!c.NotNull), yesNo(c.PK > 0))
	}
	return b.String()
}

// PreviewMarkdown renders sample rows of a table, one JSON object per line.
func PreviewMarkdown(schema, table string, res *warehouse.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Preview\n\n**Dataset:** `%s`\n\n", table, schema)
	if res == nil || len(res.Rows) == 0 {
		b.WriteString("No rows.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "## Rows (%d)\n\n", len(res.Rows))
	for _, row := range res.Rows {
		fmt.Fprintf(&b, "- %s\n", orderedJSON(res.Columns, row))
	}
	return b.String()
}

// orderedJSON encodes row with keys in column order.
func orderedJSON(columns []string, row map[string]any) string {
	if len(columns) == 0 {
		for k := range row {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		key, _ := json.Marshal(col)
		val, err := json.Marshal(row[col])
		if err != nil {
			val = []byte(`null`)
		}
		parts = append(parts, string(key)+":"+string(val))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
