package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/elee1766/naochat/src/contextsync"
	"github.com/elee1766/naochat/src/warehouse"
	"github.com/spf13/afero"
)

// SyncCmd documents warehouse schemas and mirrors repositories in the context
// folder. Folders of warehouses and repositories that are no longer configured
// are removed.
type SyncCmd struct{}

// Run executes the sync command
func (c *SyncCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e, err := openEnv(ctx, cli)
	if err != nil {
		return err
	}
	defer e.Close()

	if len(e.cfg.Warehouses) == 0 && len(e.cfg.Repositories) == 0 {
		return fmt.Errorf("%w: no warehouses or repositories are configured", errConfig)
	}
	warehouses, err := warehouse.OpenAll(e.cfg.Warehouses, e.logger)
	if err != nil {
		return fmt.Errorf("failed to open warehouses: %w", err)
	}
	defer warehouses.Close()

	dir, err := e.contextDir()
	if err != nil {
		return err
	}
	osFs := afero.NewOsFs()

	stats, err := contextsync.New(osFs, dir, e.logger).Sync(ctx, contextsync.FromWarehouses(warehouses))
	if err != nil {
		return err
	}
	fmt.Fprintf(kctx.Stdout, "Synced %d schemas and %d tables into %s\n", stats.Schemas, stats.Tables, dir)

	repoStats, err := contextsync.NewRepos(osFs, dir, contextsync.GitFetcher{}, e.logger).Sync(ctx, e.cfg.Repositories)
	if err != nil {
		return err
	}
	fmt.Fprintf(kctx.Stdout, "Synced %d repositories, removed %d\n", repoStats.Synced, len(repoStats.Removed))

	failed := append(stats.Failed, repoStats.Failed...)
	if len(failed) > 0 {
		return fmt.Errorf("failed to sync %s", strings.Join(failed, ", "))
	}
	return nil
}
