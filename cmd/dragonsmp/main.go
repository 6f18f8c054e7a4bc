// Package main is the entry point for the dragonsmp CLI.
//
// Usage:
//
//	dragonsmp serve -c config.yaml    # Start the companion backend
//	dragonsmp tui -c config.yaml      # Start the terminal UI
//	dragonsmp status                  # Print the server status once
//	dragonsmp copy                    # Copy the server address
//	dragonsmp validate -c config.yaml # Validate configuration
//	dragonsmp version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "dragonsmp",
	Short: "DragonSMP community site backend and terminal client",
	Long: `dragonsmp runs the DragonSMP companion backend and a terminal
version of the community site.

The backend serves community stats, a health check and the live Minecraft
server status. The terminal UI shows the server status, copies the server
address and opens the staff application form.

Quick start:
  1. Optionally create a config file (dragonsmp.yaml or dragonsmp.toml)
  2. Run: dragonsmp serve -c dragonsmp.yaml
  3. Open http://localhost:3001/api/stats

Example config:
  port: 3001
  allowed_origin: http://localhost:5173
  server_address: dragonsmp.shock.gg
  poll_interval: 30s`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this dragonsmp binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dragonsmp %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (YAML or TOML)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before the config")
	rootCmd.AddCommand(versionCmd)
}
