package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dragonsmp/dragonsmp/internal/mcstatus"
	"github.com/dragonsmp/dragonsmp/internal/poller"
)

// statusCmd polls the status API once.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the Minecraft server status once",
	Long: `Fetch the status document of the configured server address from the
status API and print it.

Exit codes:
  0 - Status fetched (the server may still be offline)
  1 - The status API could not be reached or answered garbage`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client := poller.NewClient()
	defer client.Close()

	url := mcstatus.URL(cfg.StatusAPI, cfg.ServerAddress)
	resp := client.Fetch(cmd.Context(), url, cfg.RequestTimeout.Duration())
	if resp.Error != nil {
		return fmt.Errorf("status request failed: %w", resp.Error)
	}

	st, err := mcstatus.Decode(resp.Body)
	if err != nil {
		return err
	}

	printStatus(cmd.OutOrStdout(), cfg.ServerAddress, st)
	return nil
}

func printStatus(w io.Writer, address string, st mcstatus.Status) {
	fmt.Fprintf(w, "%s\n", address)
	if !st.Online {
		fmt.Fprintf(w, "  Status:  offline\n")
		return
	}
	fmt.Fprintf(w, "  Status:  online\n")
	fmt.Fprintf(w, "  Players: %d/%d\n", st.Players.Online, st.Players.Max)
	if st.Version != "" {
		fmt.Fprintf(w, "  Version: %s\n", st.Version)
	}
	if len(st.MOTD) > 0 {
		fmt.Fprintf(w, "  MOTD:    %s\n", strings.Join(st.MOTD, " / "))
	}
}
