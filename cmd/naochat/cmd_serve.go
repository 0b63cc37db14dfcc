package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/elee1766/naochat/src/auth"
	"github.com/elee1766/naochat/src/contextsync"
	"github.com/elee1766/naochat/src/httpapi"
	"github.com/elee1766/naochat/src/naoagent"
	"github.com/elee1766/naochat/src/projectconfig"
	"github.com/elee1766/naochat/src/runner"
	"github.com/elee1766/naochat/src/warehouse"
	"github.com/spf13/afero"
)

// ServeCmd runs the HTTP API
type ServeCmd struct {
	Addr string `help:"Listen address, overriding the config"`
	Docs bool   `help:"Serve the swagger UI under /swagger"`
	Sync bool   `help:"Sync warehouse schema docs before serving"`
}

// Run executes the serve command
func (c *ServeCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx, cli)
	if err != nil {
		return err
	}
	defer e.Close()
	cfg := e.cfg
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if c.Docs {
		cfg.Server.EnableDocs = true
	}

	authSvc, err := auth.New(e.db.DB(), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, e.logger)
	if err != nil {
		return fmt.Errorf("%w: set auth.jwt_secret or NAOCHAT_JWT_SECRET", err)
	}

	warehouses, err := warehouse.OpenAll(cfg.Warehouses, e.logger)
	if err != nil {
		return fmt.Errorf("failed to open warehouses: %w", err)
	}
	defer warehouses.Close()

	dir, err := e.contextDir()
	if err != nil {
		return err
	}
	if c.Sync {
		stats, err := contextsync.New(afero.NewOsFs(), dir, e.logger).Sync(ctx, contextsync.FromWarehouses(warehouses))
		if err != nil {
			return fmt.Errorf("failed to sync context: %w", err)
		}
		e.logger.Info("context synced", "schemas", stats.Schemas, "tables", stats.Tables, "failed", stats.Failed)
	}

	configs := projectconfig.New(e.db.DB(), projectconfig.WithLogger(e.logger))
	chats := runner.NewService(runner.ServiceConfig{
		Database:    e.db.DB(),
		Configs:     configs,
		Agent:       cfg.Agent,
		Warehouses:  warehouses,
		ContextFs:   naoagent.ContextFs(dir),
		Providers:   cfg.Providers,
		ToolTimeout: cfg.Agent.QueryTimeout,
		Logger:      e.logger,
	})

	srv := httpapi.New(httpapi.Deps{
		DB:      e.db.DB(),
		Auth:    authSvc,
		Configs: configs,
		Chats:   chats,
		Agent:   cfg.Agent,
		Server:  cfg.Server,
		Logger:  e.logger,
	})
	e.logger.Info("serving", "addr", cfg.Server.Addr, "project", e.project.Name, "warehouses", warehouses.Names())
	return srv.Run(ctx)
}
