package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dragonsmp/dragonsmp"
	"github.com/dragonsmp/dragonsmp/config"
	"github.com/dragonsmp/dragonsmp/internal/desktop"
	"github.com/dragonsmp/dragonsmp/internal/tui"
)

// tuiCmd runs the terminal version of the community site.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the terminal UI",
	Long: `Start the terminal version of the DragonSMP site.

Keys:
  ctrl+y  copy the server address
  ctrl+f  open or close the staff application form
  ctrl+o  open the form in the browser (form open)
  esc     close the open panel
  ctrl+c  quit

Logs are discarded unless --log-file is given, since the UI owns the
terminal.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().String("log-file", "", "write logs to this file")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(cfg, logOut)

	ctrl, err := dragonsmp.NewController(config.BuildOptions(cfg, logger, nil)...)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(gctx)
	defer cancelRun()

	g.Go(func() error {
		return ctrl.Run(runCtx)
	})
	g.Go(func() error {
		// quitting the UI stops the controller
		defer cancelRun()
		return tui.Run(gctx, ctrl, desktop.NewBrowserOpener())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
