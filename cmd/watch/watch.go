// Package watch implements the watch command, the long-running daemon
// that polls the feed and serves the HTTP API.
package watch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/poliswatch/cmd/common"
	"github.com/jonesrussell/poliswatch/internal/api"
	"github.com/jonesrussell/poliswatch/internal/config"
	"github.com/jonesrussell/poliswatch/internal/constants"
	"github.com/jonesrussell/poliswatch/internal/coordinate"
	"github.com/jonesrussell/poliswatch/internal/logger"
	"github.com/jonesrussell/poliswatch/internal/metrics"
)

// === Constants ===

const (
	signalChannelBufferSize = 1
	errorChannelBufferSize  = 1
)

// Command returns the watch command for use in the root command
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the polling daemon and HTTP API",
		Long: `Watch polls the polisen.se events feed on the configured interval,
keeps the latest snapshot per watched area in memory, and serves it
over HTTP until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Start(cmd.Context())
		},
	}
}

// Start runs the daemon until interrupted.
// It handles graceful shutdown on SIGINT or SIGTERM signals.
func Start(ctx context.Context) error {
	// Phase 1: Initialize dependencies
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	// Phase 2: Build the watch pipeline
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	feedClient := common.NewFeedClient(deps.Config, m)
	aggregator := common.NewAggregator(deps.Config, feedClient, deps.Logger, m)
	suggester := common.NewSuggester(deps.Config, feedClient, deps.Logger, m)

	coordinator := coordinate.New(
		aggregator,
		common.WatchOptions(deps.Config),
		deps.Config.Watch.UpdateInterval,
		coordinate.WithLogger(deps.Logger),
		coordinate.WithMetrics(m),
	)

	// Phase 3: Start the refresh schedule
	if startErr := coordinator.Start(ctx); startErr != nil {
		return fmt.Errorf("failed to start coordinator: %w", startErr)
	}

	// Phase 4: Start the HTTP server
	router := api.SetupRouter(deps.Logger, coordinator, suggester, registry, deps.Config)
	server, errChan := startHTTPServer(deps, router)

	// Phase 5: Pick up config file edits while running
	watchConfigFile(deps.Logger, coordinator)

	// Phase 6: Run until interrupted
	return runUntilInterrupt(deps.Logger, server, coordinator, errChan)
}

// startHTTPServer creates and starts the HTTP server.
// Returns the server and an error channel for server errors.
func startHTTPServer(deps common.CommandDeps, router *gin.Engine) (*http.Server, chan error) {
	server := api.StartHTTPServer(router, &deps.Config.Server)

	deps.Logger.Info("Starting HTTP server", "address", deps.Config.Server.Address)
	errChan := make(chan error, errorChannelBufferSize)
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	return server, errChan
}

// watchConfigFile applies config file edits without a restart.
// Only the watch options and refresh interval take effect live; other
// sections need a restart. Edits that fail validation are logged and
// ignored, keeping the running settings.
func watchConfigFile(log logger.Interface, coordinator *coordinate.Coordinator) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Warn("Ignoring config change", "file", e.Name, "error", err)
			return
		}

		coordinator.Update(common.WatchOptions(cfg), cfg.Watch.UpdateInterval)
		log.Info("Applied config change",
			"file", e.Name,
			"areas", cfg.Watch.AreaList(),
			"interval", cfg.Watch.UpdateInterval.String(),
		)
	})
	viper.WatchConfig()
}

// runUntilInterrupt runs the server until interrupted by signal or error.
func runUntilInterrupt(
	log logger.Interface,
	server *http.Server,
	coordinator *coordinate.Coordinator,
	errChan chan error,
) error {
	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, signalChannelBufferSize)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for interrupt signal or error
	select {
	case serverErr := <-errChan:
		log.Error("Server error", "error", serverErr)
		coordinator.Stop()
		return fmt.Errorf("server error: %w", serverErr)
	case sig := <-sigChan:
		return shutdownServer(log, server, coordinator, sig)
	}
}

// shutdownServer performs graceful shutdown of the refresh schedule and server.
func shutdownServer(
	log logger.Interface,
	server *http.Server,
	coordinator *coordinate.Coordinator,
	sig os.Signal,
) error {
	log.Info("Shutdown signal received", "signal", sig.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()

	// Stop the refresh schedule first so no new cycle starts mid-shutdown
	log.Info("Stopping refresh coordinator")
	coordinator.Stop()

	// Stop HTTP server
	log.Info("Stopping HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to stop server", "error", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	log.Info("Server stopped successfully")
	return nil
}
