package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dragonsmp/dragonsmp/config"
	"github.com/dragonsmp/dragonsmp/internal/logging"
)

// loadConfig loads the dotenv file and then the config file named by the
// persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return nil, err
		}
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger creates the CLI logger from the config's log section.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.New(cfg.Log.Level, cfg.Log.Format, w)
}
