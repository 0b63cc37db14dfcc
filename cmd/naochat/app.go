package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/elee1766/naochat/src/config"
	"github.com/elee1766/naochat/src/storage"
)

// env is what every command starts from: the merged configuration, a logger
// and the application database with its default project.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *storage.DB
	project *storage.Project
}

// loadConfig loads the configuration from the specified path or default locations
func loadConfig(path string) (*config.Config, error) {
	precedence := config.GetConfigPaths()
	if path != "" {
		precedence.UserConfig = path
	}
	cfg, err := config.NewLoader(precedence).Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}
	return cfg, nil
}

// overrideConfigFromCLI applies global flags over the loaded configuration
func overrideConfigFromCLI(cfg *config.Config, cli *CLI) {
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Logging.Format = cli.LogFormat
	}
}

// openEnv loads configuration, opens the database and makes sure the default
// project exists and has an admin.
func openEnv(ctx context.Context, cli *CLI) (*env, error) {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return nil, err
	}
	overrideConfigFromCLI(cfg, cli)
	logger := createCLILogger(cfg.Logging.Level, cfg.Logging.Format)

	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	project, err := storage.EnsureDefaultProject(ctx, db.DB(), cfg.Project.Name, cfg.Project.ContextDir)
	if err != nil {
		db.Close()
		return nil, err
	}
	if n, err := storage.AssignAdminToOrphanedProject(ctx, db.DB()); err != nil {
		db.Close()
		return nil, err
	} else if n > 0 {
		logger.Info("assigned admin to orphaned projects", "count", n)
	}

	return &env{cfg: cfg, logger: logger, db: db, project: project}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}

// contextDir is the folder the file tools read, creating it when missing.
func (e *env) contextDir() (string, error) {
	dir := e.project.ContextPath
	if dir == "" {
		dir = e.cfg.Project.ContextDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create context folder: %w", err)
	}
	return dir, nil
}
