package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dragonsmp/dragonsmp"
	"github.com/dragonsmp/dragonsmp/config"
	"github.com/dragonsmp/dragonsmp/internal/metrics"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the companion backend.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the companion backend",
	Long: `Start the DragonSMP companion backend.

The server will:
  - Load configuration from the optional config file and the environment
  - Poll the Minecraft server status
  - Serve /api/stats, /api/health, /api/status, /api/sse and /metrics

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  dragonsmp serve
  dragonsmp serve -c /etc/dragonsmp/config.yaml
  PORT=8080 dragonsmp serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	logger.Info("starting server",
		"port", cfg.Port,
		"allowed_origin", cfg.AllowedOrigin,
		"server_address", cfg.ServerAddress,
		"poll_interval", cfg.PollInterval.Duration().String(),
	)

	site, err := dragonsmp.NewSite(config.BuildOptions(cfg, logger, metrics.NewRegistry())...)
	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- site.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
