package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a DragonSMP configuration file without starting the server.

This command parses the YAML or TOML, expands environment variables, applies
environment overrides and validates all fields. It's useful for CI/CD
pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  dragonsmp validate -c config.yaml
  dragonsmp validate --config /etc/dragonsmp/config.toml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("config"); path == "" {
		return fmt.Errorf("required flag \"config\" not set")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:           %d\n", cfg.Port)
	fmt.Fprintf(out, "  Allowed origin: %s\n", cfg.AllowedOrigin)
	fmt.Fprintf(out, "  Server address: %s\n", cfg.ServerAddress)
	fmt.Fprintf(out, "  Poll interval:  %s\n", cfg.PollInterval.Duration())
	fmt.Fprintf(out, "  Rate limit:     %d per %s\n", cfg.RateLimit.Requests, cfg.RateLimit.Window.Duration())

	return nil
}
