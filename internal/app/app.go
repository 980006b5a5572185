// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app wires the configuration, compose enumerator, orchestrator,
// event bus, and log engine into the running HTTP server, and owns
// their startup and graceful shutdown order.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fleetops/dockside/internal/api"
	"github.com/fleetops/dockside/internal/compose"
	"github.com/fleetops/dockside/internal/config"
	"github.com/fleetops/dockside/internal/events"
	"github.com/fleetops/dockside/internal/logengine"
	"github.com/fleetops/dockside/internal/orchestrator"
)

// Options holds the command-line overrides applied on top of the
// loaded configuration.
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	Version    string
}

// App is the process container: it owns every long-lived collaborator
// and the single HTTP server built from them.
type App struct {
	version string
	config  *config.Config

	bus          *events.Bus
	enumerator   *compose.Enumerator
	orchestrator *orchestrator.Orchestrator
	engine       *logengine.Engine
	server       *api.Server

	done     chan struct{}
	stopOnce sync.Once
}

// New loads configuration and wires every collaborator. It does not
// start the server; call Run for that.
func New(opts Options) (*App, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadWithDefaults(context.Background(), opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var loc *time.Location
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
	}

	bus := events.NewBus()
	enumerator := compose.NewEnumerator(cfg.Root)
	orch := orchestrator.New(enumerator, bus)
	engine := logengine.New(logengine.Config{
		Resolver:     enumerator,
		Clock:        logengine.NewClock(loc),
		SoftCapBytes: cfg.Logs.SoftCapBytes,
		Cache: logengine.CacheOptions{
			ScanHeadBytes: cfg.Cache.ScanHeadBytes,
			ScanTailBytes: cfg.Cache.ScanTailBytes,
			Monotonicity:  cfg.Logs.Monotonicity,
		},
	})

	server := api.NewServer(
		api.ServerConfig{Host: cfg.Server.Host, Port: cfg.Server.Port},
		api.Dependencies{
			Enumerator:   enumerator,
			Orchestrator: orch,
			Engine:       engine,
			Liveness:     orch.Status,
		},
	)

	return &App{
		version:      opts.Version,
		config:       cfg,
		bus:          bus,
		enumerator:   enumerator,
		orchestrator: orch,
		engine:       engine,
		server:       server,
		done:         make(chan struct{}),
	}, nil
}

// Run starts the server and blocks until a shutdown signal, the
// context is cancelled, or Stop is called.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Printf("received signal %v, shutting down", sig)
	case <-ctx.Done():
		log.Printf("context cancelled, shutting down")
	case <-a.done:
		log.Printf("shutdown requested")
	case err := <-errCh:
		return err
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully tears down the server and every long-lived
// collaborator. Safe to call even if Run was never started.
func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var firstErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("shutdown api server: %w", err)
	}
	a.engine.Shutdown()
	if err := a.bus.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close event bus: %w", err)
	}
	return firstErr
}

// Stop signals Run to shut down. Safe to call multiple times.
func (a *App) Stop() {
	a.stopOnce.Do(func() { close(a.done) })
}
