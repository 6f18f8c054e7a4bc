package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dragonsmp/dragonsmp"
	"github.com/dragonsmp/dragonsmp/internal/desktop"
)

// copyCmd copies the server address without starting the UI.
var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy the server address to the clipboard",
	Long: `Copy the configured server address to the system clipboard, falling
back to the terminal clipboard (OSC 52) where no system clipboard exists.`,
	RunE: runCopy,
}

func init() {
	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := desktop.DefaultClipboard().WriteText(cmd.Context(), cfg.ServerAddress); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", dragonsmp.CopyDesc, cfg.ServerAddress)
	return nil
}
