package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/elee1766/naochat/src/storage"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" help:"Run pending migrations"`
	Status MigrateStatusCmd `cmd:"" help:"Show migration status"`
}

// MigrateUpCmd runs pending migrations
type MigrateUpCmd struct{}

// Run executes the migrate up command. Opening the database applies pending
// migrations.
func (c *MigrateUpCmd) Run(kctx *kong.Context, cli *CLI) error {
	e, err := openEnv(context.Background(), cli)
	if err != nil {
		return err
	}
	defer e.Close()
	fmt.Fprintf(kctx.Stdout, "Database %s is at version %d\n", e.db.Path(), storage.LatestVersion())
	return nil
}

// MigrateStatusCmd shows migration status
type MigrateStatusCmd struct{}

// Run executes the migrate status command
func (c *MigrateStatusCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	e, err := openEnv(ctx, cli)
	if err != nil {
		return err
	}
	defer e.Close()

	versions, err := e.db.AppliedVersions(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(kctx.Stdout, "Database: %s\nApplied:  %v\nLatest:   %d\n", e.db.Path(), versions, storage.LatestVersion())
	return nil
}
