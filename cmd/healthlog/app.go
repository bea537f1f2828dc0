// ABOUTME: Shared CLI state: configuration, logger, and the open store.
// ABOUTME: Built once per invocation and passed to every command.
package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harperreed/healthlog/internal/config"
	"github.com/harperreed/healthlog/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds what a command needs. Commands receive it explicitly; nothing
// lives in package state.
type app struct {
	backend string
	dataDir string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
	repo   storage.Repository
}

// loadConfig reads the config file and environment, then applies flags.
func (a *app) loadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.backend != "" {
		cfg.Backend = a.backend
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	a.cfg = cfg
	return nil
}

// initLogger builds the operational logger. It writes to stderr so stdout
// stays clean for command output and the MCP stdio transport.
func (a *app) initLogger() error {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if a.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger
	return nil
}

// openStore opens the configured backend.
func (a *app) openStore(ctx context.Context) error {
	repo, err := a.cfg.OpenStorage(ctx)
	if err != nil {
		return fmt.Errorf("open %s store: %w", a.cfg.GetBackend(), err)
	}
	a.repo = repo
	a.logger.Debug("store opened",
		zap.String("backend", a.cfg.GetBackend()),
		zap.String("data_dir", a.cfg.GetDataDir()))
	return nil
}

// close releases the store and flushes the logger. Safe to call twice.
func (a *app) close() error {
	var err error
	if a.repo != nil {
		err = a.repo.Close()
		a.repo = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	faint     = color.New(color.Faint)
	bold      = color.New(color.Bold)
)

func success(w io.Writer, format string, args ...interface{}) {
	okColor.Fprintf(w, "✓ "+format+"\n", args...)
}
