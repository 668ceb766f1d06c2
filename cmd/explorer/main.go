// Package main provides the entry point for the grid explorer service.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/narvanalabs/grid-explorer/internal/api"
	"github.com/narvanalabs/grid-explorer/internal/capacity"
	"github.com/narvanalabs/grid-explorer/internal/poller"
	"github.com/narvanalabs/grid-explorer/internal/registry"
	"github.com/narvanalabs/grid-explorer/internal/shutdown"
	"github.com/narvanalabs/grid-explorer/pkg/config"
	"github.com/narvanalabs/grid-explorer/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Default().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel), cfg.LogJSON)

	client := registry.NewClient(cfg.Registry.URL, cfg.Registry.Timeout, cfg.Registry.PageSize)

	store := capacity.NewStore(
		capacity.WithFetcher(client),
		capacity.WithLogger(log.WithComponent("capacity").Logger),
		capacity.WithRefreshTimeout(cfg.RefreshTimeout),
	)

	p := poller.New(store, cfg.PollInterval, log.WithComponent("poller").Logger)
	server := api.NewServer(cfg, store, client, log.WithComponent("api").Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Components shut down in reverse order: stop serving, stop polling,
	// then close the store.
	coordinator := shutdown.NewCoordinator(
		shutdown.WithTimeout(cfg.ShutdownTimeout),
		shutdown.WithLogger(log.Logger),
	)
	coordinator.Register(shutdown.NewCloserComponent("capacity-store", store))
	coordinator.Register(p)
	coordinator.Register(shutdown.NewFuncComponent("api-server", server.Shutdown))

	go func() {
		if err := p.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("poller exited", "error", err)
		}
	}()

	log.Info("explorer starting",
		"registry", cfg.Registry.URL,
		"poll_interval", cfg.PollInterval,
		"version", api.Version,
	)
	go func() {
		// Start returns nil once the coordinator has shut the server down.
		if err := server.Start(ctx); err != nil {
			log.Error("server error", "error", err)
			cancel()
		}
	}()

	coordinator.WaitForSignal(ctx)
	if err := coordinator.Err(); err != nil {
		log.WithError(err).Error("shutdown finished with errors")
	}
	log.Info("explorer stopped")
	os.Exit(coordinator.ExitCode())
}
